package domain

import "time"

// DataType enumerates supported synthetic data categories.
type DataType string

const (
	DataTypeUser      DataType = "user"
	DataTypeEcommerce DataType = "ecommerce"
	DataTypeCompany   DataType = "company"
	DataTypeCustom    DataType = "custom"
)

// OutputFormat enumerates supported output file formats.
type OutputFormat string

const (
	FormatCSV  OutputFormat = "csv"
	FormatJSON OutputFormat = "json"
)

// Valid reports whether the format is one of the supported values.
func (f OutputFormat) Valid() bool {
	return f == FormatCSV || f == FormatJSON
}

// ContentType returns the MIME type served on download.
func (f OutputFormat) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further worker-driven transition applies to a
// row in this state. A failed row may still be re-enqueued by the lifecycle
// manager while retries remain, but workers never mutate it directly.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// Job is one tracked unit of asynchronous generation work. Instances handed
// to callers are snapshots; every mutation goes through the repository's
// conditional updates, never through a cached reference.
type Job struct {
	ID     string
	UserID string

	// Configuration, immutable after creation.
	DataType     DataType
	RecordCount  int
	OutputFormat OutputFormat
	TemplateID   string

	Status       JobStatus
	Progress     float64
	ErrorMessage string
	RetryCount   int
	MaxRetries   int

	FilePath string
	FileSize int64
	Metadata map[string]any

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// CanRetry reports whether the lifecycle manager may re-enqueue this job
// after a failure.
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// JobFilter narrows List queries. Zero values mean "no filter".
type JobFilter struct {
	UserID   string
	Status   JobStatus
	DataType DataType
}

// JobStats aggregates row counts for the stats endpoint.
type JobStats struct {
	Total    int            `json:"total_jobs"`
	ByStatus map[string]int `json:"by_status"`
	ByType   map[string]int `json:"by_type"`
}
