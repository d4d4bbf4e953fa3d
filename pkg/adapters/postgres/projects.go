// Package postgres stores rcflow projects in PostgreSQL as JSONB documents.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvalidProjectID is returned for empty project IDs before touching the database.
var ErrInvalidProjectID = errors.New("invalid project id")

// ProjectStore implements ports.ProjectStore for PostgreSQL.
type ProjectStore struct {
	pool      *pgxpool.Pool
	tableName string
}

// Option configures a ProjectStore.
type Option func(*ProjectStore)

// WithTable overrides the default "rcflow_projects" table name.
func WithTable(name string) Option {
	return func(s *ProjectStore) {
		s.tableName = name
	}
}

// NewProjectStore wraps an existing pool.
func NewProjectStore(pool *pgxpool.Pool, opts ...Option) *ProjectStore {
	s := &ProjectStore{pool: pool, tableName: "rcflow_projects"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a pool for dsn, verifies it and ensures the schema exists.
func Connect(ctx context.Context, dsn string, opts ...Option) (*ProjectStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := NewProjectStore(pool, opts...)
	if err := s.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the projects table if it does not exist.
func (s *ProjectStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			group_name  TEXT NOT NULL,
			node_count  INTEGER NOT NULL DEFAULT 0,
			document    JSONB NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)
	`, s.tableName)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.tableName, err)
	}
	return nil
}

// Save upserts the project document.
func (s *ProjectStore) Save(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return ErrInvalidProjectID
	}

	doc, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, group_name, node_count, document, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			group_name = EXCLUDED.group_name,
			node_count = EXCLUDED.node_count,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		project.ID, project.Name, project.GroupOrDefault(), len(project.Data.Nodes), doc, project.UpdatedAt.Time)
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}
	return nil
}

// Load reads a project document.
func (s *ProjectStore) Load(ctx context.Context, projectID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, ErrInvalidProjectID
	}

	query := fmt.Sprintf(`SELECT document FROM %s WHERE id = $1`, s.tableName)

	var doc []byte
	if err := s.pool.QueryRow(ctx, query, projectID).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}

	var p domain.Project
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to deserialize project %s: %w", projectID, err)
	}
	return &p, nil
}

// Delete removes a project row.
func (s *ProjectStore) Delete(ctx context.Context, projectID string) error {
	if projectID == "" {
		return ErrInvalidProjectID
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", projectID, err)
	}
	return nil
}

// List returns summaries from the indexed columns without decoding documents.
func (s *ProjectStore) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, name, group_name, updated_at, node_count
		FROM %s
		ORDER BY id
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	out := []domain.ProjectSummary{}
	for rows.Next() {
		var sum domain.ProjectSummary
		var updated time.Time
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Group, &updated, &sum.Nodes); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		sum.UpdatedAt = domain.At(updated)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project rows: %w", err)
	}
	return out, nil
}

// Close releases the pool.
func (s *ProjectStore) Close() {
	s.pool.Close()
}
