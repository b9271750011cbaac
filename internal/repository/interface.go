package repository

import (
	"context"
	"voicecounsel/internal/model"

	"github.com/google/uuid"
)

// JobRepository defines data access for job records.
type JobRepository interface {
	// Create inserts a new job record. Returns apperr.ErrConflict when
	// a record with the same id already exists.
	Create(ctx context.Context, job *model.Job) error

	// GetByID retrieves a job. Returns apperr.ErrNotFound when no
	// record matches, apperr.ErrStore on transient failure.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)

	// Update applies a partial update and bumps updated_at. Updates
	// against a terminal record return apperr.ErrConflict.
	Update(ctx context.Context, id uuid.UUID, update model.JobUpdate) error

	// ListByStatus retrieves up to limit jobs in the given status,
	// oldest first.
	ListByStatus(ctx context.Context, status model.JobStatus, limit int) ([]model.Job, error)
}

// SettingRepository defines data access for settings rows.
type SettingRepository interface {
	// GetActive returns the value of an active setting, or ok=false
	// when the row is absent or inactive.
	GetActive(ctx context.Context, scope, key string) (value string, ok bool, err error)

	// List returns all settings in a scope ordered by key.
	List(ctx context.Context, scope string) ([]model.Setting, error)

	// Upsert inserts or replaces a setting row.
	Upsert(ctx context.Context, setting *model.Setting) error
}
