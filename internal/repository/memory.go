package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"voicecounsel/internal/apperr"
	"voicecounsel/internal/model"

	"github.com/google/uuid"
)

// memoryJobRepository keeps job records in a mutex-guarded map. Used
// when DATABASE_URL is not set and throughout the tests.
type memoryJobRepository struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*model.Job
}

// NewMemoryJobRepository creates an in-memory job repository.
func NewMemoryJobRepository() JobRepository {
	return &memoryJobRepository{jobs: make(map[uuid.UUID]*model.Job)}
}

func (r *memoryJobRepository) Create(_ context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return &apperr.ErrConflict{Message: fmt.Sprintf("job already exists: %s", job.ID)}
	}
	jobCopy := *job
	r.jobs[job.ID] = &jobCopy
	return nil
}

func (r *memoryJobRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, apperr.NotFound("job", id.String())
	}
	// Return a copy to avoid race conditions
	jobCopy := *job
	return &jobCopy, nil
}

func (r *memoryJobRepository) Update(_ context.Context, id uuid.UUID, update model.JobUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return apperr.NotFound("job", id.String())
	}
	if job.Status.Terminal() {
		return &apperr.ErrConflict{Message: fmt.Sprintf("job is terminal: %s", id)}
	}

	if update.Status != nil {
		job.Status = *update.Status
	}
	if update.Transcription != nil {
		job.Transcription = update.Transcription
	}
	if update.ServiceEvaluation != nil {
		job.ServiceEvaluation = update.ServiceEvaluation
	}
	if update.CustomerConcerns != nil {
		job.CustomerConcerns = update.CustomerConcerns
	}
	if update.CheckMdKey != nil {
		job.CheckMdKey = update.CheckMdKey
	}
	if update.PainMdKey != nil {
		job.PainMdKey = update.PainMdKey
	}
	if update.ErrorMessage != nil {
		job.ErrorMessage = update.ErrorMessage
	}
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryJobRepository) ListByStatus(_ context.Context, status model.JobStatus, limit int) ([]model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var jobs []model.Job
	for _, job := range r.jobs {
		if job.Status == status {
			jobs = append(jobs, *job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

type settingKey struct {
	scope, key string
}

// memorySettingRepository keeps settings rows in a mutex-guarded map.
type memorySettingRepository struct {
	mu       sync.Mutex
	settings map[settingKey]*model.Setting
}

// NewMemorySettingRepository creates an in-memory settings repository.
func NewMemorySettingRepository() SettingRepository {
	return &memorySettingRepository{settings: make(map[settingKey]*model.Setting)}
}

func (r *memorySettingRepository) GetActive(_ context.Context, scope, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[settingKey{scope, key}]
	if !ok || !s.IsActive {
		return "", false, nil
	}
	return s.Value, true, nil
}

func (r *memorySettingRepository) List(_ context.Context, scope string) ([]model.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var settings []model.Setting
	for k, s := range r.settings {
		if k.scope == scope {
			settings = append(settings, *s)
		}
	}
	sort.Slice(settings, func(i, j int) bool {
		return settings[i].Key < settings[j].Key
	})
	return settings, nil
}

func (r *memorySettingRepository) Upsert(_ context.Context, setting *model.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *setting
	s.UpdatedAt = time.Now().UTC()
	r.settings[settingKey{s.Scope, s.Key}] = &s
	return nil
}
