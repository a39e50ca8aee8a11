package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeGenerate carries one generation job through the queue.
	TaskTypeGenerate = "generation:generate"
	// TaskTypeCleanup is the periodic file-reclaim task.
	TaskTypeCleanup = "maintenance:cleanup"

	QueueGeneration  = "generation"
	QueueMaintenance = "maintenance"
)

// GeneratePayload is the minimal data a worker needs to execute a job. The
// full row stays in the database; if the row is deleted before the task runs,
// the worker's claim becomes a no-op and the task is dropped.
type GeneratePayload struct {
	JobID        string `json:"job_id"`
	DataType     string `json:"data_type"`
	RecordCount  int    `json:"record_count"`
	OutputFormat string `json:"output_format"`
	TemplateID   string `json:"template_id,omitempty"`
	Seed         uint64 `json:"seed,omitempty"`
	Attempt      int    `json:"attempt"`
}

// NewGenerateTask serializes the payload into an asynq task. Retries are
// driven by the lifecycle manager, never by asynq's own retry machinery, so
// queue state and job-row state cannot drift apart.
func NewGenerateTask(p *GeneratePayload) (*asynq.Task, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode task payload: %w", err)
	}
	return asynq.NewTask(TaskTypeGenerate, body, asynq.Queue(QueueGeneration), asynq.MaxRetry(0)), nil
}

// NewCleanupTask builds the maintenance task the scheduler fires.
func NewCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCleanup, nil, asynq.Queue(QueueMaintenance), asynq.MaxRetry(0))
}
