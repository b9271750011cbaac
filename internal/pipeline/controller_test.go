package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"voicecounsel/internal/analysis"
	"voicecounsel/internal/apperr"
	"voicecounsel/internal/model"
	"voicecounsel/internal/objectstore"
	"voicecounsel/internal/repository"
	"voicecounsel/internal/stt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is a map-backed object store.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) IssueUploadURL(_ context.Context, key string, _ time.Duration) (*objectstore.SignedUpload, error) {
	return &objectstore.SignedUpload{URL: "https://store.test/upload/" + key, Path: key}, nil
}

func (s *fakeStore) IssueDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.test/download/" + key, nil
}

func (s *fakeStore) FetchBytes(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (s *fakeStore) PutBytes(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStore) Name() string { return "fake" }

func (s *fakeStore) object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// fakeSTT returns a canned transcript, or a fixed error.
type fakeSTT struct {
	transcript string
	err        error
}

func (f *fakeSTT) Transcribe(_ context.Context, audio []byte, language string) (*stt.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stt.Result{Transcript: f.transcript, Confidence: 0.9, Provider: "fake"}, nil
}

func (f *fakeSTT) Name() string { return "fake" }

// fakeAnalyzer echoes a marker derived from the prompt and transcript so
// tests can tell the two documents apart.
type fakeAnalyzer struct {
	mu      sync.Mutex
	err     error
	prompts []string
}

func (f *fakeAnalyzer) Complete(_ context.Context, systemPrompt, userText string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, systemPrompt)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "report for: " + userText, nil
}

func (f *fakeAnalyzer) Name() string { return "fake" }

func (f *fakeAnalyzer) seenPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// recordingJobs wraps a repository and captures every status written to
// a job, in order.
type recordingJobs struct {
	repository.JobRepository
	mu       sync.Mutex
	statuses map[uuid.UUID][]model.JobStatus
}

func newRecordingJobs() *recordingJobs {
	return &recordingJobs{
		JobRepository: repository.NewMemoryJobRepository(),
		statuses:      make(map[uuid.UUID][]model.JobStatus),
	}
}

func (r *recordingJobs) Update(ctx context.Context, id uuid.UUID, update model.JobUpdate) error {
	err := r.JobRepository.Update(ctx, id, update)
	if err == nil && update.Status != nil {
		r.mu.Lock()
		r.statuses[id] = append(r.statuses[id], *update.Status)
		r.mu.Unlock()
	}
	return err
}

func (r *recordingJobs) observed(id uuid.UUID) []model.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.JobStatus(nil), r.statuses[id]...)
}

type fixture struct {
	jobs     *recordingJobs
	settings repository.SettingRepository
	store    *fakeStore
	stt      *fakeSTT
	analyzer *fakeAnalyzer
	ctrl     *Controller
}

func newFixture() *fixture {
	f := &fixture{
		jobs:     newRecordingJobs(),
		settings: repository.NewMemorySettingRepository(),
		store:    newFakeStore(),
		stt:      &fakeSTT{transcript: "カラーの持ちが悪くて困っています"},
		analyzer: &fakeAnalyzer{},
	}
	f.ctrl = New(f.jobs, f.settings, f.store, f.stt, f.analyzer)
	return f
}

func (f *fixture) createPendingJob(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	key := id.String() + "/session_1700000000000.mp3"
	require.NoError(t, f.jobs.Create(context.Background(), &model.Job{
		ID:         id,
		Status:     model.StatusPending,
		FileName:   "session.mp3",
		StorageKey: key,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}))
	f.store.objects[key] = []byte("fake audio bytes")
	return id
}

func (f *fixture) waitTerminal(t *testing.T, id uuid.UUID) *model.Job {
	t.Helper()
	var job *model.Job
	require.Eventually(t, func() bool {
		got, err := f.jobs.GetByID(context.Background(), id)
		if err != nil {
			return false
		}
		job = got
		return got.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestStartCompletesJob(t *testing.T) {
	f := newFixture()
	id := f.createPendingJob(t)

	require.NoError(t, f.ctrl.Start(context.Background(), id))

	job := f.waitTerminal(t, id)
	assert.Equal(t, model.StatusCompleted, job.Status)
	require.NotNil(t, job.Transcription)
	assert.Equal(t, "カラーの持ちが悪くて困っています", *job.Transcription)
	require.NotNil(t, job.ServiceEvaluation)
	require.NotNil(t, job.CustomerConcerns)
	assert.NotEmpty(t, *job.ServiceEvaluation)
	assert.NotEmpty(t, *job.CustomerConcerns)
	assert.Nil(t, job.ErrorMessage)

	require.NotNil(t, job.CheckMdKey)
	require.NotNil(t, job.PainMdKey)
	assert.Equal(t, id.String()+"/service_evaluation.md", *job.CheckMdKey)
	assert.Equal(t, id.String()+"/customer_concerns.md", *job.PainMdKey)

	// The documents themselves landed in the store.
	check, ok := f.store.object(*job.CheckMdKey)
	require.True(t, ok)
	assert.Equal(t, "report for: カラーの持ちが悪くて困っています", string(check))
	_, ok = f.store.object(*job.PainMdKey)
	require.True(t, ok)
}

func TestStatusSequenceIsMonotonic(t *testing.T) {
	f := newFixture()
	id := f.createPendingJob(t)

	require.NoError(t, f.ctrl.Start(context.Background(), id))
	f.waitTerminal(t, id)

	want := []model.JobStatus{
		model.StatusProcessing,
		model.StatusTranscribing,
		model.StatusAnalyzing,
		model.StatusCompleted,
	}
	assert.Equal(t, want, f.jobs.observed(id))
}

func TestTranscriptionFailureMarksJobFailed(t *testing.T) {
	f := newFixture()
	f.stt.err = errors.New("quota exceeded")
	id := f.createPendingJob(t)

	require.NoError(t, f.ctrl.Start(context.Background(), id))

	job := f.waitTerminal(t, id)
	assert.Equal(t, model.StatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "quota exceeded", *job.ErrorMessage)
	assert.Nil(t, job.Transcription)
	assert.Nil(t, job.ServiceEvaluation)

	// The job never reached the analyzing stage.
	assert.NotContains(t, f.jobs.observed(id), model.StatusAnalyzing)
}

func TestAnalysisFailureKeepsTranscription(t *testing.T) {
	f := newFixture()
	f.analyzer.err = errors.New("model overloaded")
	id := f.createPendingJob(t)

	require.NoError(t, f.ctrl.Start(context.Background(), id))

	job := f.waitTerminal(t, id)
	assert.Equal(t, model.StatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "model overloaded", *job.ErrorMessage)
	// The transcription was persisted before the analysis step ran.
	require.NotNil(t, job.Transcription)
	assert.Nil(t, job.ServiceEvaluation)
	assert.Nil(t, job.CheckMdKey)
}

func TestMissingAudioMarksJobFailed(t *testing.T) {
	f := newFixture()
	id := f.createPendingJob(t)
	f.store.getErr = errors.New("object not found")

	require.NoError(t, f.ctrl.Start(context.Background(), id))

	job := f.waitTerminal(t, id)
	assert.Equal(t, model.StatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "object not found", *job.ErrorMessage)
}

func TestStartUnknownJob(t *testing.T) {
	f := newFixture()
	err := f.ctrl.Start(context.Background(), uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

func TestStartRejectsNonPendingJob(t *testing.T) {
	f := newFixture()
	id := f.createPendingJob(t)

	require.NoError(t, f.ctrl.Start(context.Background(), id))

	// A second start must not double-run the pipeline.
	err := f.ctrl.Start(context.Background(), id)
	var conflict *apperr.ErrConflict
	assert.ErrorAs(t, err, &conflict)

	f.waitTerminal(t, id)
	err = f.ctrl.Start(context.Background(), id)
	assert.ErrorAs(t, err, &conflict)
}

func TestPromptTemplateOverride(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.settings.Upsert(context.Background(), &model.Setting{
		Scope:    model.ScopePrompt,
		Key:      model.PromptServiceEvaluation,
		Value:    "custom evaluation template",
		IsActive: true,
	}))
	id := f.createPendingJob(t)

	require.NoError(t, f.ctrl.Start(context.Background(), id))
	f.waitTerminal(t, id)

	prompts := f.analyzer.seenPrompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, "custom evaluation template", prompts[0])
	// The concerns template was not overridden, so the default is used.
	assert.Equal(t, analysis.DefaultCustomerConcernsPrompt, prompts[1])
}

func TestPromptTemplateDefaults(t *testing.T) {
	f := newFixture()
	id := f.createPendingJob(t)

	require.NoError(t, f.ctrl.Start(context.Background(), id))
	f.waitTerminal(t, id)

	prompts := f.analyzer.seenPrompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, analysis.DefaultServiceEvaluationPrompt, prompts[0])
	assert.Equal(t, analysis.DefaultCustomerConcernsPrompt, prompts[1])
}

func TestConcurrentJobsAreIsolated(t *testing.T) {
	f := newFixture()

	const n = 5
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = f.createPendingJob(t)
	}
	for _, id := range ids {
		require.NoError(t, f.ctrl.Start(context.Background(), id))
	}

	for _, id := range ids {
		job := f.waitTerminal(t, id)
		assert.Equal(t, model.StatusCompleted, job.Status)
		require.NotNil(t, job.CheckMdKey)
		// Document keys are namespaced by job id.
		assert.True(t, strings.HasPrefix(*job.CheckMdKey, id.String()+"/"))
		assert.True(t, strings.HasPrefix(*job.PainMdKey, id.String()+"/"))
	}
}

func TestProcessPendingDrainsOldestFirst(t *testing.T) {
	f := newFixture()

	first := f.createPendingJob(t)
	time.Sleep(2 * time.Millisecond)
	second := f.createPendingJob(t)
	time.Sleep(2 * time.Millisecond)
	third := f.createPendingJob(t)

	processed, err := f.ctrl.ProcessPending(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, processed, 2)
	assert.Equal(t, first, processed[0])
	assert.Equal(t, second, processed[1])

	// ProcessPending runs synchronously, so the drained jobs are done.
	for _, id := range processed {
		job, err := f.jobs.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, job.Status)
	}

	job, err := f.jobs.GetByID(context.Background(), third)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, job.Status)
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	f := newFixture()
	f.stt.err = errors.New("quota exceeded")

	a := f.createPendingJob(t)
	time.Sleep(2 * time.Millisecond)
	b := f.createPendingJob(t)

	processed, err := f.ctrl.ProcessPending(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, processed, 2)

	for _, id := range []uuid.UUID{a, b} {
		job, err := f.jobs.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusFailed, job.Status)
	}
}
