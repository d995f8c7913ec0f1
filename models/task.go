package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the status of an async task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// CompareTask represents an async price comparison
type CompareTask struct {
	mu sync.RWMutex

	ID          string      `json:"id"`
	Query       string      `json:"query"`
	Status      TaskStatus  `json:"status"`
	Message     string      `json:"message"`
	Result      *Comparison `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// NewCompareTask creates a queued task for a query
func NewCompareTask(query string) *CompareTask {
	return &CompareTask{
		ID:        "task_" + uuid.NewString(),
		Query:     query,
		Status:    TaskStatusQueued,
		Message:   "Task queued for processing",
		CreatedAt: time.Now(),
	}
}

// Start marks the task as processing
func (t *CompareTask) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusProcessing
	t.Message = "Comparing prices..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with result
func (t *CompareTask) Complete(result *Comparison) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusCompleted
	t.Message = "Price comparison completed"
	t.Result = result
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with error
func (t *CompareTask) Fail(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusFailed
	t.Message = "Price comparison failed"
	t.Error = reason
	now := time.Now()
	t.CompletedAt = &now
}

// Snapshot returns a copy safe to serialize while workers update the task
func (t *CompareTask) Snapshot() *CompareTask {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &CompareTask{
		ID:          t.ID,
		Query:       t.Query,
		Status:      t.Status,
		Message:     t.Message,
		Result:      t.Result,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
}

// State returns the current status
func (t *CompareTask) State() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status
}

// IsCompleted returns true if the task is in a final state
func (t *CompareTask) IsCompleted() bool {
	s := t.State()
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// IsActive returns true if the task is still running
func (t *CompareTask) IsActive() bool {
	s := t.State()
	return s == TaskStatusQueued || s == TaskStatusProcessing
}

// Duration returns the duration of the task
func (t *CompareTask) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.StartedAt == nil {
		return 0
	}

	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}

	return endTime.Sub(*t.StartedAt)
}
