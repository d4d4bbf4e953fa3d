package ports_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
)

// mockStore is the smallest SessionStore that satisfies the contract.
type mockStore struct {
	mu   sync.Mutex
	data map[string]*domain.Interaction
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]*domain.Interaction)}
}

func (m *mockStore) Save(_ context.Context, sessionID string, i *domain.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = i.Clone()
	return nil
}

func (m *mockStore) Load(_ context.Context, sessionID string) (*domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return i.Clone(), nil
}

func (m *mockStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

func (m *mockStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for id := range m.data {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func TestSessionStoreContract_MockStore(t *testing.T) {
	ports.RunSessionStoreContract(t, newMockStore())
}
