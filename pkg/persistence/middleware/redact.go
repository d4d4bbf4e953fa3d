package middleware

import (
	"context"
	"regexp"
	"slices"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
)

// Redacted replaces masked memory values.
const Redacted = "***"

type redactMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks memory values whose
// keys match any of the patterns before they reach the store. Loading returns
// the masked values, so redacted variables must not drive conditions after a
// session is reloaded.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, sessionID string, it *domain.Interaction) error {
	masked := it.Clone()
	masked.Memory = m.mask(it.Memory)
	return m.next.Save(ctx, sessionID, masked)
}

func (m *redactMiddleware) Load(ctx context.Context, sessionID string) (*domain.Interaction, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// mask returns a copy of mem with matching keys replaced, descending into
// nested maps whose own key did not match.
func (m *redactMiddleware) mask(mem map[string]any) map[string]any {
	out := make(map[string]any, len(mem))
	for k, v := range mem {
		switch nested, isMap := v.(map[string]any); {
		case m.matches(k):
			out[k] = Redacted
		case isMap:
			out[k] = m.mask(nested)
		default:
			out[k] = v
		}
	}
	return out
}

func (m *redactMiddleware) matches(key string) bool {
	return slices.ContainsFunc(m.patterns, func(p *regexp.Regexp) bool { return p.MatchString(key) })
}
