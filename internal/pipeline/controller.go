// Package pipeline owns every transition of a job record from creation
// to a terminal state.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"voicecounsel/internal/analysis"
	"voicecounsel/internal/apperr"
	"voicecounsel/internal/model"
	"voicecounsel/internal/objectstore"
	"voicecounsel/internal/repository"
	"voicecounsel/internal/stt"

	"github.com/google/uuid"
)

// Counseling sessions are Japanese; the hint is fixed rather than
// client-supplied.
const languageHint = "ja"

const markdownContentType = "text/markdown; charset=utf-8"

// Controller advances a job through pending -> processing ->
// transcribing -> analyzing -> completed, or to failed from any
// non-terminal state. Each persisted status update is acknowledged by
// the store before the next step begins, so a polling client never
// observes a state out of order.
type Controller struct {
	jobs     repository.JobRepository
	settings repository.SettingRepository
	store    objectstore.Store
	stt      stt.Provider
	analyzer analysis.Analyzer
}

// New creates a lifecycle controller.
func New(
	jobs repository.JobRepository,
	settings repository.SettingRepository,
	store objectstore.Store,
	sttProvider stt.Provider,
	analyzer analysis.Analyzer,
) *Controller {
	return &Controller{
		jobs:     jobs,
		settings: settings,
		store:    store,
		stt:      sttProvider,
		analyzer: analyzer,
	}
}

// Start begins processing a pending job. It acknowledges as soon as the
// processing status is persisted; the pipeline continues in a detached
// goroutine that writes only to the job record, never to the caller.
//
// Returns apperr.ErrNotFound when no record exists and
// apperr.ErrConflict when the job is not pending (a second start on the
// same id is rejected rather than double-running the pipeline).
func (c *Controller) Start(ctx context.Context, jobID uuid.UUID) error {
	job, err := c.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != model.StatusPending {
		return &apperr.ErrConflict{
			Message: fmt.Sprintf("job %s is %s, expected pending", jobID, job.Status),
		}
	}

	if err := c.setStatus(ctx, jobID, model.StatusProcessing); err != nil {
		return err
	}

	// Detached from the request context on purpose: the pipeline must
	// outlive the HTTP request that started it.
	go func() {
		if err := c.run(context.Background(), jobID, job.StorageKey); err != nil {
			log.Printf("[Pipeline] Job %s failed: %v", jobID, err)
		}
	}()

	return nil
}

// ProcessPending drains up to limit pending jobs synchronously. Used by
// the sweeper endpoint to recover jobs whose start call never arrived.
func (c *Controller) ProcessPending(ctx context.Context, limit int) ([]uuid.UUID, error) {
	jobs, err := c.jobs.ListByStatus(ctx, model.StatusPending, limit)
	if err != nil {
		return nil, err
	}

	var processed []uuid.UUID
	for _, job := range jobs {
		if err := c.setStatus(ctx, job.ID, model.StatusProcessing); err != nil {
			log.Printf("[Pipeline] Skipping job %s: %v", job.ID, err)
			continue
		}
		if err := c.run(ctx, job.ID, job.StorageKey); err != nil {
			log.Printf("[Pipeline] Job %s failed: %v", job.ID, err)
		}
		processed = append(processed, job.ID)
	}
	return processed, nil
}

// run executes the two pipeline steps in order. Adapter failures are
// converted into a terminal failed record with the adapter's message;
// they are never re-thrown to any caller because the pipeline runs
// detached from the original request.
func (c *Controller) run(ctx context.Context, jobID uuid.UUID, storageKey string) error {
	// Step 1: transcription.
	if err := c.setStatus(ctx, jobID, model.StatusTranscribing); err != nil {
		return err
	}

	audio, err := c.store.FetchBytes(ctx, storageKey)
	if err != nil {
		return c.fail(ctx, jobID, err)
	}

	log.Printf("[Pipeline] Transcribing job %s (%d bytes, provider: %s)",
		jobID, len(audio), c.stt.Name())
	result, err := c.stt.Transcribe(ctx, audio, languageHint)
	if err != nil {
		return c.fail(ctx, jobID, err)
	}

	// Step 2: analysis. The transcription is persisted together with
	// the analyzing status so it is set before the state is observable.
	analyzing := model.StatusAnalyzing
	if err := c.jobs.Update(ctx, jobID, model.JobUpdate{
		Status:        &analyzing,
		Transcription: &result.Transcript,
	}); err != nil {
		return err
	}

	evaluationPrompt := c.promptTemplate(ctx, model.PromptServiceEvaluation, analysis.DefaultServiceEvaluationPrompt)
	concernsPrompt := c.promptTemplate(ctx, model.PromptCustomerConcerns, analysis.DefaultCustomerConcernsPrompt)

	log.Printf("[Pipeline] Analyzing job %s (provider: %s)", jobID, c.analyzer.Name())
	evaluation, err := c.analyzer.Complete(ctx, evaluationPrompt, result.Transcript)
	if err != nil {
		return c.fail(ctx, jobID, err)
	}

	concerns, err := c.analyzer.Complete(ctx, concernsPrompt, result.Transcript)
	if err != nil {
		return c.fail(ctx, jobID, err)
	}

	checkKey := fmt.Sprintf("%s/service_evaluation.md", jobID)
	painKey := fmt.Sprintf("%s/customer_concerns.md", jobID)
	if err := c.store.PutBytes(ctx, checkKey, []byte(evaluation), markdownContentType); err != nil {
		return c.fail(ctx, jobID, err)
	}
	if err := c.store.PutBytes(ctx, painKey, []byte(concerns), markdownContentType); err != nil {
		return c.fail(ctx, jobID, err)
	}

	// Both results land in one update so the poller never sees a
	// completed job with half its documents.
	completed := model.StatusCompleted
	if err := c.jobs.Update(ctx, jobID, model.JobUpdate{
		Status:            &completed,
		ServiceEvaluation: &evaluation,
		CustomerConcerns:  &concerns,
		CheckMdKey:        &checkKey,
		PainMdKey:         &painKey,
	}); err != nil {
		return err
	}

	log.Printf("[Pipeline] Job %s completed", jobID)
	return nil
}

// promptTemplate loads the active template for key, falling back to the
// built-in default. A missing template is a designed fallback, not a
// failure.
func (c *Controller) promptTemplate(ctx context.Context, key, fallback string) string {
	value, ok, err := c.settings.GetActive(ctx, model.ScopePrompt, key)
	if err != nil {
		log.Printf("[Pipeline] Failed to load prompt template %s, using default: %v", key, err)
		return fallback
	}
	if !ok || value == "" {
		return fallback
	}
	return value
}

func (c *Controller) setStatus(ctx context.Context, jobID uuid.UUID, status model.JobStatus) error {
	return c.jobs.Update(ctx, jobID, model.JobUpdate{Status: &status})
}

// fail moves the job to its terminal failed state, recording the
// adapter's message. Fields past the failing step stay absent.
func (c *Controller) fail(ctx context.Context, jobID uuid.UUID, cause error) error {
	failed := model.StatusFailed
	message := cause.Error()
	if err := c.jobs.Update(ctx, jobID, model.JobUpdate{
		Status:       &failed,
		ErrorMessage: &message,
	}); err != nil {
		log.Printf("[Pipeline] Failed to mark job %s as failed: %v", jobID, err)
	}
	return cause
}
