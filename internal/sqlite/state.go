package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/repository"
)

const projectsKey = "projects"

// StateRepository implements project.Repository for SQLite. The whole
// project list is stored as one JSON document.
type StateRepository struct {
	db *DB
}

var _ project.Repository = (*StateRepository)(nil)

// NewStateRepository creates a new StateRepository
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db}
}

// LoadProjects returns the stored list or repository.ErrNotFound.
func (r *StateRepository) LoadProjects(ctx context.Context) ([]project.Project, error) {
	raw, err := r.get(ctx, projectsKey)
	if err != nil {
		return nil, err
	}
	var projects []project.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}

// SaveProjects replaces the stored list.
func (r *StateRepository) SaveProjects(ctx context.Context, projects []project.Project) error {
	if projects == nil {
		projects = []project.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}
	return r.put(ctx, projectsKey, data)
}

func (r *StateRepository) get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM local_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), nil
}

func (r *StateRepository) put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO local_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
