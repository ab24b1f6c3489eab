package model

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline run statuses.
const (
	RunPending    = "pending"
	RunInProgress = "in_progress"
	RunCompleted  = "completed"
	RunFailed     = "failed"
)

// PipelineRun tracks one stage invocation (fetch, classify, aggregate,
// export) for resumability and operator visibility.
type PipelineRun struct {
	ID           uuid.UUID  `json:"id"`
	TaskType     string     `json:"task_type"`
	TargetID     *string    `json:"target_id,omitempty"`
	Status       string     `json:"status"`
	PageToken    *string    `json:"page_token,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
