package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/rcflow/internal/logging"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Manager serialises every read-modify-write of a session. Within one
// process a per-session mutex orders callers; across replicas the optional
// DistributedLocker does.
type Manager struct {
	store ports.SessionStore
	locks *keyedMutex

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL for distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   newKeyedMutex(),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load retrieves an existing interaction from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Interaction, error) {
	var it *domain.Interaction
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		it, err = m.store.Load(ctx, sessionID)
		return err
	})
	return it, err
}

// LoadOrStart loads a session, or creates it with start and persists the
// result when it does not exist yet. Concurrent callers for the same session
// see a single call to start.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string, start func(context.Context) (*domain.Interaction, error)) (*domain.Interaction, bool, error) {
	var it *domain.Interaction
	created := false
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		it, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("load session %s: %w", sessionID, err)
		}

		it, err = start(ctx)
		if err != nil {
			return err
		}
		created = true
		if it.Status == domain.StatusClosed {
			return nil
		}
		if err := m.store.Save(ctx, sessionID, it); err != nil {
			return fmt.Errorf("save new session %s: %w", sessionID, err)
		}
		return nil
	})
	return it, created, err
}

// Update loads a session, applies fn and persists its result while holding
// the session lock. A closed result deletes the session.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(context.Context, *domain.Interaction) (*domain.Interaction, error)) (*domain.Interaction, error) {
	var next *domain.Interaction
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		next, err = fn(ctx, current)
		if err != nil {
			return err
		}
		if next.Status == domain.StatusClosed {
			return m.store.Delete(ctx, sessionID)
		}
		return m.store.Save(ctx, sessionID, next)
	})
	return next, err
}

// Save persists the interaction.
func (m *Manager) Save(ctx context.Context, sessionID string, it *domain.Interaction) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, it)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock runs fn while holding the session's local lock and, when
// configured, its distributed lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	if m.locker == nil {
		return fn(ctx)
	}

	release, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
	if err != nil {
		return fmt.Errorf("lock session %s: %w", sessionID, err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			m.logger.Warn("distributed lock not released; it will expire",
				"session", sessionID, "ttl", m.lockTTL, "err", err)
		}
	}()
	return fn(ctx)
}
