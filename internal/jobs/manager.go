// Package jobs owns the job lifecycle: the state machine, queue handoff, and
// the producer/consumer protocol between the API and the worker pool.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/infra"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/sink"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/storage"
)

// retryBaseDelay is the first re-enqueue delay; it doubles per attempt.
const retryBaseDelay = 30 * time.Second

// Enqueuer is the slice of *asynq.Client the manager needs, kept narrow so
// tests can inject a fake queue.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Manager orchestrates the job state machine. All row mutations flow through
// the repository's conditional updates; the manager adds validation, queue
// handoff and the retry decision on top.
type Manager struct {
	cfg       *infra.Config
	jobs      domain.JobRepository
	templates domain.TemplateRepository
	registry  *generator.Registry
	store     *storage.FileStore
	client    Enqueuer
	logger    infra.Logger
}

// NewManager wires the lifecycle manager.
func NewManager(cfg *infra.Config, jobsRepo domain.JobRepository, templates domain.TemplateRepository, registry *generator.Registry, store *storage.FileStore, client Enqueuer, logger infra.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		jobs:      jobsRepo,
		templates: templates,
		registry:  registry,
		store:     store,
		client:    client,
		logger:    logger,
	}
}

// CreateRequest is a validated-at-the-boundary job submission.
type CreateRequest struct {
	DataType     string
	RecordCount  int
	OutputFormat string
	TemplateID   string
	Seed         uint64
}

// CreateJob validates the request, creates the pending row and enqueues the
// generation task. Validation failures happen before any row exists.
func (m *Manager) CreateJob(ctx context.Context, req CreateRequest, userID string) (*domain.Job, error) {
	if err := m.validate(ctx, &req); err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:           uuid.NewString(),
		UserID:       userID,
		DataType:     domain.DataType(req.DataType),
		RecordCount:  req.RecordCount,
		OutputFormat: domain.OutputFormat(req.OutputFormat),
		TemplateID:   req.TemplateID,
		Status:       domain.JobStatusPending,
		Progress:     0,
		RetryCount:   0,
		MaxRetries:   m.cfg.MaxRetries,
		Metadata: map[string]any{
			"requested_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := m.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job row: %w", err)
	}

	payload := &GeneratePayload{
		JobID:        job.ID,
		DataType:     req.DataType,
		RecordCount:  req.RecordCount,
		OutputFormat: req.OutputFormat,
		TemplateID:   req.TemplateID,
		Seed:         req.Seed,
		Attempt:      0,
	}
	if err := m.enqueue(ctx, payload, 0); err != nil {
		// Roll the orphaned row back so a failed enqueue is not a stuck
		// pending job.
		if delErr := m.jobs.Delete(ctx, job.ID); delErr != nil {
			m.logger.Error().Err(delErr).Str("job_id", job.ID).Msg("manager: rollback after enqueue failure")
		}
		return nil, fmt.Errorf("enqueue generation task: %w", err)
	}

	m.logger.Info().
		Str("job_id", job.ID).
		Str("data_type", req.DataType).
		Int("record_count", req.RecordCount).
		Msg("manager: job created")
	return job, nil
}

func (m *Manager) validate(ctx context.Context, req *CreateRequest) error {
	if !domain.OutputFormat(req.OutputFormat).Valid() {
		return &domain.ValidationError{Field: "output_format", Reason: fmt.Sprintf("unsupported format %q, use csv or json", req.OutputFormat)}
	}
	if req.RecordCount < m.cfg.MinRecords || req.RecordCount > m.cfg.MaxRecords {
		return &domain.ValidationError{
			Field:  "record_count",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", m.cfg.MinRecords, m.cfg.MaxRecords, req.RecordCount),
		}
	}

	if req.DataType == string(domain.DataTypeCustom) {
		if req.TemplateID == "" {
			return &domain.ValidationError{Field: "template_id", Reason: "custom data type requires a template_id"}
		}
		tpl, err := m.templates.GetByID(ctx, req.TemplateID)
		if err != nil {
			if err == domain.ErrNotFound {
				return &domain.ValidationError{Field: "template_id", Reason: fmt.Sprintf("template %s not found", req.TemplateID)}
			}
			return err
		}
		if !tpl.IsActive {
			return &domain.ValidationError{Field: "template_id", Reason: fmt.Sprintf("template %q is inactive", tpl.Name)}
		}
		return nil
	}

	if !m.registry.Has(req.DataType) {
		return &domain.ValidationError{
			Field:  "data_type",
			Reason: fmt.Sprintf("unknown data type %q, supported: %v or custom", req.DataType, m.registry.Names()),
		}
	}
	return nil
}

func (m *Manager) enqueue(ctx context.Context, payload *GeneratePayload, delay time.Duration) error {
	task, err := NewGenerateTask(payload)
	if err != nil {
		return err
	}
	opts := []asynq.Option{}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	_, err = m.client.EnqueueContext(ctx, task, opts...)
	return err
}

// GetJob returns a snapshot of the job row.
func (m *Manager) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	return m.jobs.GetByID(ctx, jobID)
}

// ListJobs returns a filtered page of jobs and the total match count.
func (m *Manager) ListJobs(ctx context.Context, filter domain.JobFilter, page, pageSize int) ([]domain.Job, int, error) {
	return m.jobs.List(ctx, filter, page, pageSize)
}

// Stats aggregates job counts.
func (m *Manager) Stats(ctx context.Context, userID string) (*domain.JobStats, error) {
	return m.jobs.Stats(ctx, userID)
}

// Cancel moves a pending or processing job to cancelled. The task already in
// the queue is not withdrawn; the worker's claim will find a terminal row and
// drop it.
func (m *Manager) Cancel(ctx context.Context, jobID string) error {
	if err := m.jobs.Cancel(ctx, jobID); err != nil {
		return err
	}
	m.logger.Info().Str("job_id", jobID).Msg("manager: job cancelled")
	return nil
}

// Delete removes the job row and best-effort removes its generated file. An
// in-flight worker is not interrupted; its next update finds no row.
func (m *Manager) Delete(ctx context.Context, jobID string) error {
	job, err := m.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.FilePath != "" {
		if _, err := m.store.Remove(job.FilePath); err != nil {
			m.logger.Warn().Err(err).Str("job_id", jobID).Msg("manager: delete file")
		}
	}
	return m.jobs.Delete(ctx, jobID)
}

// MarkProcessing claims the job on behalf of a worker. A false return means
// the row is gone or terminal and the task should be dropped.
func (m *Manager) MarkProcessing(ctx context.Context, jobID string) (bool, error) {
	return m.jobs.MarkProcessing(ctx, jobID)
}

// UpdateProgress records mid-stream progress. No-ops (terminal or deleted
// rows) are expected under at-least-once delivery and only logged at debug.
func (m *Manager) UpdateProgress(ctx context.Context, jobID string, pct float64) {
	applied, err := m.jobs.UpdateProgress(ctx, jobID, pct)
	if err != nil {
		m.logger.Warn().Err(err).Str("job_id", jobID).Msg("manager: update progress")
		return
	}
	if !applied {
		m.logger.Debug().Str("job_id", jobID).Float64("pct", pct).Msg("manager: progress dropped, job no longer processing")
	}
}

// Complete applies the terminal success transition. When the completion loses
// the race (row cancelled or deleted first), the freshly written file is
// reclaimed immediately instead of waiting for the cleanup task.
func (m *Manager) Complete(ctx context.Context, jobID, fileName string, res *sink.Result) {
	metadata := map[string]any{
		"generation_time_seconds": res.Elapsed.Seconds(),
		"record_count":            res.RecordCount,
		"generated_at":            time.Now().UTC().Format(time.RFC3339),
	}
	applied, err := m.jobs.MarkCompleted(ctx, jobID, fileName, res.FileSize, metadata)
	if err != nil {
		m.logger.Error().Err(err).Str("job_id", jobID).Msg("manager: mark completed")
		return
	}
	if !applied {
		m.logger.Info().Str("job_id", jobID).Msg("manager: completion dropped, job no longer processing")
		if _, err := m.store.Remove(fileName); err != nil {
			m.logger.Warn().Err(err).Str("file", fileName).Msg("manager: reclaim orphaned file")
		}
		return
	}
	m.logger.Info().
		Str("job_id", jobID).
		Int("records", res.RecordCount).
		Int64("bytes", res.FileSize).
		Dur("elapsed", res.Elapsed).
		Msg("manager: job completed")
}

// Fail records a failed attempt and decides on a retry: while retry_count is
// below max_retries the same payload is re-enqueued with exponential backoff,
// otherwise the job stays failed terminally.
func (m *Manager) Fail(ctx context.Context, payload *GeneratePayload, genErr error) {
	retryCount, maxRetries, applied, err := m.jobs.MarkFailed(ctx, payload.JobID, genErr.Error())
	if err != nil {
		m.logger.Error().Err(err).Str("job_id", payload.JobID).Msg("manager: mark failed")
		return
	}
	if !applied {
		m.logger.Info().Str("job_id", payload.JobID).Msg("manager: failure dropped, job no longer processing")
		return
	}

	if retryCount >= maxRetries {
		m.logger.Error().
			Str("job_id", payload.JobID).
			Int("retry_count", retryCount).
			Err(genErr).
			Msg("manager: retries exhausted, job failed terminally")
		return
	}

	delay := retryBaseDelay << (retryCount - 1)
	next := *payload
	next.Attempt = retryCount
	if err := m.enqueue(ctx, &next, delay); err != nil {
		m.logger.Error().Err(err).Str("job_id", payload.JobID).Msg("manager: re-enqueue after failure")
		return
	}
	m.logger.Warn().
		Str("job_id", payload.JobID).
		Int("retry_count", retryCount).
		Dur("backoff", delay).
		Err(genErr).
		Msg("manager: job failed, retry scheduled")
}

// NewGenerator resolves the generator a job or preview needs, loading the
// template for the custom data type.
func (m *Manager) NewGenerator(ctx context.Context, dataType, templateID string, seed uint64) (generator.Generator, error) {
	if dataType == string(domain.DataTypeCustom) {
		tpl, err := m.templates.GetByID(ctx, templateID)
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", templateID, err)
		}
		return generator.FromTemplate(tpl, seed), nil
	}
	return m.registry.New(dataType, seed)
}

// PreviewLimit exposes the configured synchronous preview cap.
func (m *Manager) PreviewLimit() int {
	return m.cfg.PreviewLimit
}
