package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

const (
	StatusPending      JobStatus = "pending"
	StatusProcessing   JobStatus = "processing"
	StatusTranscribing JobStatus = "transcribing"
	StatusAnalyzing    JobStatus = "analyzing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// statusOrder ranks the forward path. failed is reachable from any
// non-terminal state and completed only from analyzing, so ordering
// checks only apply to the happy path.
var statusOrder = map[JobStatus]int{
	StatusPending:      0,
	StatusProcessing:   1,
	StatusTranscribing: 2,
	StatusAnalyzing:    3,
	StatusCompleted:    4,
	StatusFailed:       4,
}

// CanTransition reports whether moving from s to next respects the
// monotonic forward path of the lifecycle.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	from, ok := statusOrder[s]
	to, ok2 := statusOrder[next]
	if !ok || !ok2 {
		return false
	}
	return to == from+1
}

// Job represents one end-to-end request to analyze an uploaded
// counseling recording.
type Job struct {
	ID                uuid.UUID `json:"id"`
	Status            JobStatus `json:"status"`
	FileName          string    `json:"file_name"`
	StorageKey        string    `json:"storage_key"`
	Transcription     *string   `json:"transcription,omitempty"`
	ServiceEvaluation *string   `json:"service_evaluation,omitempty"`
	CustomerConcerns  *string   `json:"customer_concerns,omitempty"`
	CheckMdKey        *string   `json:"check_md_key,omitempty"`
	PainMdKey         *string   `json:"pain_md_key,omitempty"`
	ErrorMessage      *string   `json:"error,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// JobUpdate carries the fields of a partial job update. Nil fields are
// left untouched by the repository.
type JobUpdate struct {
	Status            *JobStatus
	Transcription     *string
	ServiceEvaluation *string
	CustomerConcerns  *string
	CheckMdKey        *string
	PainMdKey         *string
	ErrorMessage      *string
}
