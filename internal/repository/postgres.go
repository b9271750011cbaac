package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"voicecounsel/internal/apperr"
	"voicecounsel/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresJobRepository struct {
	db *sql.DB
}

// NewPostgresJobRepository creates a job repository backed by the jobs
// table.
func NewPostgresJobRepository(db *sql.DB) JobRepository {
	return &postgresJobRepository{db: db}
}

const jobColumns = `
	id, status, file_name, storage_key, transcription,
	service_evaluation, customer_concerns, check_md_key, pain_md_key,
	error_message, created_at, updated_at`

func (r *postgresJobRepository) Create(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			id, status, file_name, storage_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Status, job.FileName, job.StorageKey,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return &apperr.ErrConflict{Message: fmt.Sprintf("job already exists: %s", job.ID)}
		}
		return &apperr.ErrStore{Op: "create job", Err: err}
	}
	return nil
}

func (r *postgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	query := `SELECT` + jobColumns + ` FROM jobs WHERE id = $1`

	var job model.Job
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Status,
		&job.FileName,
		&job.StorageKey,
		&job.Transcription,
		&job.ServiceEvaluation,
		&job.CustomerConcerns,
		&job.CheckMdKey,
		&job.PainMdKey,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("job", id.String())
	}
	if err != nil {
		return nil, &apperr.ErrStore{Op: "get job", Err: err}
	}
	return &job, nil
}

func (r *postgresJobRepository) Update(ctx context.Context, id uuid.UUID, update model.JobUpdate) error {
	// COALESCE keeps unset fields intact; the status guard keeps
	// terminal records immutable.
	query := `
		UPDATE jobs
		SET
			status = COALESCE($1, status),
			transcription = COALESCE($2, transcription),
			service_evaluation = COALESCE($3, service_evaluation),
			customer_concerns = COALESCE($4, customer_concerns),
			check_md_key = COALESCE($5, check_md_key),
			pain_md_key = COALESCE($6, pain_md_key),
			error_message = COALESCE($7, error_message),
			updated_at = $8
		WHERE id = $9 AND status NOT IN ('completed', 'failed')
	`

	res, err := r.db.ExecContext(ctx, query,
		statusArg(update.Status),
		update.Transcription,
		update.ServiceEvaluation,
		update.CustomerConcerns,
		update.CheckMdKey,
		update.PainMdKey,
		update.ErrorMessage,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return &apperr.ErrStore{Op: "update job", Err: err}
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return &apperr.ErrStore{Op: "update job", Err: err}
	}
	if rows == 0 {
		// Either the record is missing or it is terminal.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &apperr.ErrConflict{Message: fmt.Sprintf("job is terminal: %s", id)}
	}
	return nil
}

func (r *postgresJobRepository) ListByStatus(ctx context.Context, status model.JobStatus, limit int) ([]model.Job, error) {
	query := `SELECT` + jobColumns + `
		FROM jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, &apperr.ErrStore{Op: "list jobs", Err: err}
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(
			&job.ID,
			&job.Status,
			&job.FileName,
			&job.StorageKey,
			&job.Transcription,
			&job.ServiceEvaluation,
			&job.CustomerConcerns,
			&job.CheckMdKey,
			&job.PainMdKey,
			&job.ErrorMessage,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, &apperr.ErrStore{Op: "scan job", Err: err}
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.ErrStore{Op: "list jobs", Err: err}
	}
	return jobs, nil
}

// statusArg converts *JobStatus to a nullable SQL argument.
func statusArg(s *model.JobStatus) interface{} {
	if s == nil {
		return nil
	}
	return string(*s)
}

type postgresSettingRepository struct {
	db *sql.DB
}

// NewPostgresSettingRepository creates a settings repository backed by
// the settings table.
func NewPostgresSettingRepository(db *sql.DB) SettingRepository {
	return &postgresSettingRepository{db: db}
}

func (r *postgresSettingRepository) GetActive(ctx context.Context, scope, key string) (string, bool, error) {
	query := `
		SELECT value FROM settings
		WHERE scope = $1 AND key = $2 AND is_active = TRUE
	`

	var value string
	err := r.db.QueryRowContext(ctx, query, scope, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, &apperr.ErrStore{Op: "get setting", Err: err}
	}
	return value, true, nil
}

func (r *postgresSettingRepository) List(ctx context.Context, scope string) ([]model.Setting, error) {
	query := `
		SELECT scope, key, value, is_active, updated_at
		FROM settings
		WHERE scope = $1
		ORDER BY key
	`

	rows, err := r.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, &apperr.ErrStore{Op: "list settings", Err: err}
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Scope, &s.Key, &s.Value, &s.IsActive, &s.UpdatedAt); err != nil {
			return nil, &apperr.ErrStore{Op: "scan setting", Err: err}
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.ErrStore{Op: "list settings", Err: err}
	}
	return settings, nil
}

func (r *postgresSettingRepository) Upsert(ctx context.Context, setting *model.Setting) error {
	query := `
		INSERT INTO settings (scope, key, value, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (scope, key)
		DO UPDATE SET value = $3, is_active = $4, updated_at = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		setting.Scope, setting.Key, setting.Value, setting.IsActive, time.Now().UTC(),
	)
	if err != nil {
		return &apperr.ErrStore{Op: "upsert setting", Err: err}
	}
	return nil
}
