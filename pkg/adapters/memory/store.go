package memory

import (
	"context"
	"sync"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/tidwall/btree"
)

// Store implements ports.SessionStore in memory, ordered by session ID.
// Interactions are copied on the way in and out, the way a serialising store
// would detach them. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions btree.Map[string, *domain.Interaction]
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Save(_ context.Context, sessionID string, interaction *domain.Interaction) error {
	it := interaction.Clone()
	s.mu.Lock()
	s.sessions.Set(sessionID, it)
	s.mu.Unlock()
	return nil
}

func (s *Store) Load(_ context.Context, sessionID string) (*domain.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return it.Clone(), nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	s.sessions.Delete(sessionID)
	s.mu.Unlock()
	return nil
}

// List returns the session IDs in lexical order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.sessions.Keys()
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
