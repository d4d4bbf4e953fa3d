package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// TimestampLayout is the ISO-8601 form written to project documents:
// UTC with millisecond precision, e.g. 2024-05-01T09:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a project document time. It encodes as an ISO-8601 string and
// decodes either that form or the Unix millisecond numbers of older exports.
type Timestamp struct {
	time.Time
}

// At converts t to a Timestamp, truncated to milliseconds in UTC.
func At(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// UnixMilli returns the Timestamp ms milliseconds after the Unix epoch.
func UnixMilli(ms int64) Timestamp {
	return At(time.UnixMilli(ms))
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Time.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	ts, err := ParseTimestamp(v)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.String(), nil
}

func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!timestamp" {
		v = node.Value
	} else if err := node.Decode(&v); err != nil {
		return err
	}
	ts, err := ParseTimestamp(v)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

// ParseTimestamp reads a loosely typed document value: an ISO-8601 string,
// Unix milliseconds as a number or numeric string, a time.Time, or nil for
// the zero Timestamp.
func ParseTimestamp(v any) (Timestamp, error) {
	switch x := v.(type) {
	case nil:
		return Timestamp{}, nil
	case Timestamp:
		return x, nil
	case time.Time:
		return At(x), nil
	case bool:
		return Timestamp{}, fmt.Errorf("invalid timestamp %v", x)
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			return UnixMilli(ms), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", x, err)
		}
		return UnixMilli(int64(f)), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return Timestamp{}, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return At(t), nil
		}
		ms, err := cast.ToInt64E(s)
		if err != nil {
			return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
		}
		return UnixMilli(ms), nil
	default:
		ms, err := cast.ToInt64E(v)
		if err != nil {
			return Timestamp{}, fmt.Errorf("invalid timestamp %v: %w", v, err)
		}
		return UnixMilli(ms), nil
	}
}
