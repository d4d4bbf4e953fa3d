package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/aretw0/rcflow/pkg/domain"
)

// Store implements ports.SessionStore with one JSON file per session.
type Store struct {
	dir docDir
}

// New creates a Store in basePath, or in .rcflow/sessions when it is empty.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".rcflow", "sessions")
	}
	return &Store{dir: docDir(basePath)}
}

func (s *Store) Save(_ context.Context, sessionID string, interaction *domain.Interaction) error {
	if err := s.dir.write(sessionID, interaction); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) Load(_ context.Context, sessionID string) (*domain.Interaction, error) {
	var it domain.Interaction
	err := s.dir.read(sessionID, &it)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if it.Memory == nil {
		it.Memory = domain.GameMemory{}
	}
	return &it, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	if err := s.dir.remove(sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	ids, err := s.dir.ids()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}
