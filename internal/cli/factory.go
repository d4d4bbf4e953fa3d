// Package cli wires configuration into stores and engines for the rcflow
// command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/loam"
	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/internal/config"
	"github.com/aretw0/rcflow/pkg/adapters/file"
	loamadapter "github.com/aretw0/rcflow/pkg/adapters/loam"
	"github.com/aretw0/rcflow/pkg/adapters/memory"
	"github.com/aretw0/rcflow/pkg/adapters/postgres"
	"github.com/aretw0/rcflow/pkg/adapters/redis"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
)

// Stores holds the persistence selected by configuration.
type Stores struct {
	Projects ports.ProjectStore
	Sessions ports.SessionStore
	Locker   ports.DistributedLocker

	// Source is set for the loam driver, which can also watch for changes.
	Source *loamadapter.Source

	closers []func() error
}

// Close releases every connection the stores opened.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// OpenStores builds the stores for cfg.Store.Driver.
func OpenStores(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Stores, error) {
	s := &Stores{}
	projectsDir := filepath.Join(cfg.Path, "projects")
	sessionsDir := filepath.Join(cfg.Path, "sessions")

	switch cfg.Driver {
	case config.DriverMemory, "":
		s.Projects = memory.NewProjectStore()
		s.Sessions = memory.NewStore()

	case config.DriverFile:
		s.Projects = file.NewProjectStore(projectsDir)
		s.Sessions = file.New(sessionsDir)

	case config.DriverRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.SessionTTL))
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		s.Projects = file.NewProjectStore(projectsDir)
		s.Sessions = store
		s.Locker = redis.NewLocker(store.Client(), "rcflow:")
		s.closers = append(s.closers, store.Close)

	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s.Projects = store
		s.Sessions = memory.NewStore()
		s.closers = append(s.closers, func() error { store.Close(); return nil })

	case config.DriverLoam:
		if err := os.MkdirAll(projectsDir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", projectsDir, err)
		}
		src, err := loamadapter.Open(projectsDir, loam.WithVersioning(false))
		if err != nil {
			return nil, err
		}
		s.Source = src
		s.Projects = &loamStore{src}
		s.Sessions = memory.NewStore()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	logger.Debug("stores opened", "driver", cfg.Driver, "path", cfg.Path)
	return s, nil
}

// NewEngine opens the configured stores and builds an engine on them.
// extra options are applied last. Callers must Close the returned stores.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...rcflow.Option) (*rcflow.Engine, *Stores, error) {
	stores, err := OpenStores(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}

	opts, err := EngineOptions(cfg, stores, logger)
	if err != nil {
		_ = stores.Close()
		return nil, nil, err
	}
	return rcflow.New(append(opts, extra...)...), stores, nil
}

// EngineOptions translates configuration into engine options.
func EngineOptions(cfg *config.Config, stores *Stores, logger *slog.Logger) ([]rcflow.Option, error) {
	opts := []rcflow.Option{
		rcflow.WithLogger(logger),
		rcflow.WithProjectStore(stores.Projects),
		rcflow.WithSessionStore(stores.Sessions),
		rcflow.WithMaxIterations(cfg.Engine.MaxIterations),
		rcflow.WithInitialMemory(domain.GameMemory(cfg.Engine.InitialMemory)),
	}
	if stores.Locker != nil {
		opts = append(opts, rcflow.WithLocker(stores.Locker))
	}

	active, previous, err := cfg.Security.Keys()
	if err != nil {
		return nil, err
	}
	// Redaction has to see plaintext memory, so it wraps encryption.
	if len(cfg.Security.RedactMemory) > 0 {
		opts = append(opts, rcflow.WithSessionRedaction(cfg.Security.RedactMemory...))
	}
	if active != nil {
		opts = append(opts, rcflow.WithSessionEncryption(active, previous...))
	}
	return opts, nil
}

// loamStore serves a Loam repository as a project store. Documents are
// removed through the repository itself, so Delete is refused.
type loamStore struct {
	*loamadapter.Source
}

func (l *loamStore) Delete(_ context.Context, projectID string) error {
	return fmt.Errorf("loam store: delete %s: %w", projectID, errors.ErrUnsupported)
}
