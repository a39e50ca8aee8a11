package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/infra"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/sink"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/storage"
)

// progressDeltaPct throttles row writes: the sink reports every batch, but
// the store is only touched when progress moved at least this much.
const progressDeltaPct = 5.0

// Worker executes generation tasks pulled from the queue. Every job-row
// mutation goes through the manager's entry points; a generation failure is
// converted into an explicit failure report, never an error bubbled into the
// queue framework's retry path.
type Worker struct {
	manager *Manager
	store   *storage.FileStore
	logger  infra.Logger
}

// NewWorker wires a worker around the lifecycle manager.
func NewWorker(manager *Manager, store *storage.FileStore, logger infra.Logger) *Worker {
	return &Worker{manager: manager, store: store, logger: logger}
}

// Register attaches the worker's handlers to the asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeGenerate, w.HandleGenerate)
	mux.HandleFunc(TaskTypeCleanup, w.HandleCleanup)
}

// HandleGenerate runs one generation attempt end to end.
func (w *Worker) HandleGenerate(ctx context.Context, task *asynq.Task) error {
	var payload GeneratePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// A malformed payload can never succeed; drop it.
		w.logger.Error().Err(err).Msg("worker: undecodable task payload")
		return nil
	}
	if payload.JobID == "" {
		w.logger.Error().Msg("worker: task payload missing job id")
		return nil
	}

	claimed, err := w.manager.MarkProcessing(ctx, payload.JobID)
	if err != nil {
		// Store unavailable: let the queue redeliver the claim later.
		return fmt.Errorf("claim job %s: %w", payload.JobID, err)
	}
	if !claimed {
		// Row deleted, cancelled or already terminal. The task is stale.
		w.logger.Info().Str("job_id", payload.JobID).Msg("worker: dropping task, job not claimable")
		return nil
	}

	w.logger.Info().
		Str("job_id", payload.JobID).
		Str("data_type", payload.DataType).
		Int("record_count", payload.RecordCount).
		Int("attempt", payload.Attempt).
		Msg("worker: picked job")

	gen, err := w.manager.NewGenerator(ctx, payload.DataType, payload.TemplateID, payload.Seed)
	if err != nil {
		w.manager.Fail(ctx, &payload, err)
		return nil
	}

	fileName := storage.Filename(payload.DataType, payload.OutputFormat, payload.JobID)
	f, err := w.store.Create(fileName)
	if err != nil {
		w.manager.Fail(ctx, &payload, err)
		return nil
	}

	lastReported := 0.0
	progress := func(pct float64) {
		if pct-lastReported < progressDeltaPct {
			return
		}
		lastReported = pct
		w.manager.UpdateProgress(ctx, payload.JobID, pct)
	}

	res, err := sink.Write(ctx, domain.OutputFormat(payload.OutputFormat), f, gen, payload.RecordCount, progress)
	if err != nil {
		if _, rmErr := w.store.Remove(fileName); rmErr != nil {
			w.logger.Warn().Err(rmErr).Str("file", fileName).Msg("worker: reclaim partial file")
		}
		if ctx.Err() != nil {
			// Shutdown, not a generation failure: hand the task back to the
			// queue so another worker finishes the attempt.
			return ctx.Err()
		}
		w.manager.Fail(ctx, &payload, err)
		return nil
	}

	w.manager.Complete(ctx, payload.JobID, fileName, res)
	return nil
}

// HandleCleanup reclaims generated files past the configured age. Jobs whose
// files were reclaimed keep their rows; downloads simply report the file gone.
func (w *Worker) HandleCleanup(ctx context.Context, _ *asynq.Task) error {
	removed, err := w.store.RemoveOlderThan(w.manager.cfg.MaxFileAge)
	if err != nil {
		return fmt.Errorf("cleanup old files: %w", err)
	}
	w.logger.Info().Int("files_deleted", removed).Msg("worker: file cleanup complete")
	return nil
}
