package middleware_test

import (
	"context"
	"sort"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It keeps pointers as given so tests can inspect exactly what was stored.
type MockStore struct {
	data map[string]*domain.Interaction
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Interaction),
	}
}

func (s *MockStore) Save(ctx context.Context, sessionID string, it *domain.Interaction) error {
	s.data[sessionID] = it
	return nil
}

func (s *MockStore) Load(ctx context.Context, sessionID string) (*domain.Interaction, error) {
	it, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return it, nil
}

func (s *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ ports.SessionStore = (*MockStore)(nil)
