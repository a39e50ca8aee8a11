package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL. Lifecycle
// transitions are expressed as conditional UPDATEs whose WHERE clause encodes
// the legal source states, so concurrent writers and redelivered tasks race
// safely: the losing writer simply affects zero rows.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

const jobColumns = `id, user_id, data_type, record_count, output_format, template_id,
status, progress, error_message, retry_count, max_retries,
file_path, file_size, metadata, created_at, started_at, completed_at, updated_at`

// Create inserts a new job row.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	metadata, err := marshalMetadata(job.Metadata)
	if err != nil {
		return err
	}
	query := `
INSERT INTO jobs (id, user_id, data_type, record_count, output_format, template_id, status, progress, retry_count, max_retries, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		nullableStr(job.UserID),
		job.DataType,
		job.RecordCount,
		job.OutputFormat,
		nullableStr(job.TemplateID),
		job.Status,
		job.Progress,
		job.RetryCount,
		job.MaxRetries,
		metadata,
	)
	return err
}

// GetByID fetches a job snapshot by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1;`, jobID)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// List returns a page of jobs matching the filter, newest first, plus the
// total number of matching rows.
func (r *JobRepositoryPG) List(ctx context.Context, filter domain.JobFilter, page, pageSize int) ([]domain.Job, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	where, args := buildFilter(filter)

	var total int
	countQuery := `SELECT count(*) FROM jobs` + where + `;`
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	pageQuery := fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		jobColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, pageQuery, append(args, pageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, rows.Err()
}

// Delete removes a job row. The caller handles best-effort file removal.
func (r *JobRepositoryPG) Delete(ctx context.Context, jobID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1;`, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats aggregates job counts by status and data type.
func (r *JobRepositoryPG) Stats(ctx context.Context, userID string) (*domain.JobStats, error) {
	where := ""
	args := []any{}
	if userID != "" {
		where = ` WHERE user_id = $1`
		args = append(args, userID)
	}

	rows, err := r.pool.Query(ctx, `SELECT status, data_type, count(*) FROM jobs`+where+` GROUP BY status, data_type;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.JobStats{
		ByStatus: make(map[string]int),
		ByType:   make(map[string]int),
	}
	for rows.Next() {
		var status, dataType string
		var count int
		if err := rows.Scan(&status, &dataType, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByType[dataType] += count
	}
	return stats, rows.Err()
}

// MarkProcessing claims the job for a worker. started_at is only set on the
// first claim, so duplicate deliveries do not move the clock. A failed row is
// only claimable while retries remain; retries-exhausted failed is terminal
// and a stale redelivered task must not resurrect it.
func (r *JobRepositoryPG) MarkProcessing(ctx context.Context, jobID string) (bool, error) {
	query := `
UPDATE jobs
SET status = 'processing',
    started_at = COALESCE(started_at, now()),
    updated_at = now()
WHERE id = $1
  AND (status = 'pending' OR (status = 'failed' AND retry_count < max_retries));
`
	tag, err := r.pool.Exec(ctx, query, jobID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateProgress applies a clamped progress value while the job is still
// processing. Progress is monotone within an attempt; stale or late values
// affect zero rows.
func (r *JobRepositoryPG) UpdateProgress(ctx context.Context, jobID string, progress float64) (bool, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	query := `
UPDATE jobs
SET progress = $2, updated_at = now()
WHERE id = $1 AND status = 'processing' AND progress <= $2;
`
	tag, err := r.pool.Exec(ctx, query, jobID, progress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompleted records the success transition. Only a processing row can
// complete, so the first completion report wins and duplicates are no-ops.
func (r *JobRepositoryPG) MarkCompleted(ctx context.Context, jobID, filePath string, fileSize int64, metadata map[string]any) (bool, error) {
	meta, err := marshalMetadata(metadata)
	if err != nil {
		return false, err
	}
	query := `
UPDATE jobs
SET status = 'completed',
    progress = 100,
    file_path = $2,
    file_size = $3,
    metadata = COALESCE(metadata, '{}'::jsonb) || COALESCE($4::jsonb, '{}'::jsonb),
    completed_at = now(),
    updated_at = now()
WHERE id = $1 AND status = 'processing';
`
	tag, err := r.pool.Exec(ctx, query, jobID, filePath, fileSize, meta)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailed records a failed attempt, increments retry_count and returns the
// updated counters so the lifecycle manager can decide whether to re-enqueue.
func (r *JobRepositoryPG) MarkFailed(ctx context.Context, jobID, errMsg string) (int, int, bool, error) {
	query := `
UPDATE jobs
SET status = 'failed',
    error_message = $2,
    retry_count = retry_count + 1,
    completed_at = now(),
    updated_at = now()
WHERE id = $1 AND status = 'processing'
RETURNING retry_count, max_retries;
`
	var retryCount, maxRetries int
	err := r.pool.QueryRow(ctx, query, jobID, errMsg).Scan(&retryCount, &maxRetries)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	return retryCount, maxRetries, true, nil
}

// Cancel transitions a pending or processing job to cancelled.
func (r *JobRepositoryPG) Cancel(ctx context.Context, jobID string) error {
	query := `
UPDATE jobs
SET status = 'cancelled', completed_at = now(), updated_at = now()
WHERE id = $1 AND status IN ('pending', 'processing');
`
	tag, err := r.pool.Exec(ctx, query, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Distinguish a missing row from an already terminal one.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1);`, jobID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyTerminal
}

func buildFilter(filter domain.JobFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DataType != "" {
		args = append(args, filter.DataType)
		conds = append(conds, fmt.Sprintf("data_type = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	var userID, templateID, errMsg, filePath *string
	var fileSize *int64
	var metadata []byte

	if err := row.Scan(
		&job.ID,
		&userID,
		&job.DataType,
		&job.RecordCount,
		&job.OutputFormat,
		&templateID,
		&job.Status,
		&job.Progress,
		&errMsg,
		&job.RetryCount,
		&job.MaxRetries,
		&filePath,
		&fileSize,
		&metadata,
		&job.CreatedAt,
		&job.StartedAt,
		&job.CompletedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	job.UserID = deref(userID)
	job.TemplateID = deref(templateID)
	job.ErrorMessage = deref(errMsg)
	job.FilePath = deref(filePath)
	if fileSize != nil {
		job.FileSize = *fileSize
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &job.Metadata); err != nil {
			return nil, fmt.Errorf("decode job metadata: %w", err)
		}
	}
	return &job, nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return b, nil
}

func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
