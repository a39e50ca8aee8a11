package domain

import "context"

// JobRepository defines persistence for job entities. Lifecycle mutations are
// conditional: they apply only when the row's current status makes the
// transition legal and report whether anything changed, so duplicate or late
// deliveries collapse into no-ops instead of corrupting state.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	List(ctx context.Context, filter JobFilter, page, pageSize int) ([]Job, int, error)
	Delete(ctx context.Context, jobID string) error
	Stats(ctx context.Context, userID string) (*JobStats, error)

	// MarkProcessing claims the job for a worker. Idempotent against
	// duplicate claims: started_at is set on first entry only.
	MarkProcessing(ctx context.Context, jobID string) (bool, error)

	// UpdateProgress applies a progress value while the job is processing.
	// Late updates against terminal rows are silently dropped.
	UpdateProgress(ctx context.Context, jobID string, progress float64) (bool, error)

	// MarkCompleted records the terminal success transition. Only the first
	// completion report for a job wins.
	MarkCompleted(ctx context.Context, jobID, filePath string, fileSize int64, metadata map[string]any) (bool, error)

	// MarkFailed records a failed attempt and increments retry_count,
	// returning the updated counters so the caller can decide on a retry.
	MarkFailed(ctx context.Context, jobID, errMsg string) (retryCount, maxRetries int, applied bool, err error)

	// Cancel transitions a pending or processing job to cancelled. Returns
	// ErrAlreadyTerminal when the row is already terminal.
	Cancel(ctx context.Context, jobID string) error
}

// TemplateRepository defines persistence for custom templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *Template) error
	GetByID(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, activeOnly bool) ([]Template, error)
	Delete(ctx context.Context, id string) error
}
