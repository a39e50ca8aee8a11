package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
)

func generateTask(t *testing.T, payload *GeneratePayload) *asynq.Task {
	t.Helper()
	task, err := NewGenerateTask(payload)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestHandleGenerateSuccess(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()
	worker := NewWorker(fx.manager, fx.store, zerolog.Nop())

	job, err := fx.manager.CreateJob(ctx, CreateRequest{
		DataType:     "user",
		RecordCount:  150,
		OutputFormat: "csv",
		Seed:         11,
	}, "u1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	payload := &GeneratePayload{
		JobID:        job.ID,
		DataType:     "user",
		RecordCount:  150,
		OutputFormat: "csv",
		Seed:         11,
	}
	if err := worker.HandleGenerate(ctx, generateTask(t, payload)); err != nil {
		t.Fatalf("handle generate: %v", err)
	}

	row, err := fx.jobs.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Status != domain.JobStatusCompleted {
		t.Fatalf("status: got %s, want completed", row.Status)
	}
	if row.Progress != 100 {
		t.Fatalf("progress: got %v, want 100", row.Progress)
	}
	if row.FilePath == "" {
		t.Fatal("file path not recorded")
	}
	if row.FileSize <= 0 {
		t.Fatalf("file size: got %d, want > 0", row.FileSize)
	}
	if _, ok := row.Metadata["generation_time_seconds"]; !ok {
		t.Fatal("completion metadata missing generation_time_seconds")
	}

	f, info, err := fx.store.Open(row.FilePath)
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}
	f.Close()
	if info.Size() != row.FileSize {
		t.Fatalf("file size mismatch: disk %d, row %d", info.Size(), row.FileSize)
	}
}

func TestHandleGenerateDropsStaleTask(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()
	worker := NewWorker(fx.manager, fx.store, zerolog.Nop())

	job, err := fx.manager.CreateJob(ctx, CreateRequest{
		DataType:     "user",
		RecordCount:  150,
		OutputFormat: "csv",
	}, "u1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := fx.manager.Cancel(ctx, job.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	payload := &GeneratePayload{JobID: job.ID, DataType: "user", RecordCount: 150, OutputFormat: "csv"}
	if err := worker.HandleGenerate(ctx, generateTask(t, payload)); err != nil {
		t.Fatalf("stale task must be dropped, got %v", err)
	}

	row, _ := fx.jobs.GetByID(ctx, job.ID)
	if row.Status != domain.JobStatusCancelled {
		t.Fatalf("status: got %s, want cancelled", row.Status)
	}
}

func TestHandleGenerateMalformedPayload(t *testing.T) {
	fx := newManagerFixture(t)
	worker := NewWorker(fx.manager, fx.store, zerolog.Nop())

	task := asynq.NewTask(TaskTypeGenerate, []byte("{not json"))
	if err := worker.HandleGenerate(context.Background(), task); err != nil {
		t.Fatalf("malformed payload must be dropped, got %v", err)
	}

	task = asynq.NewTask(TaskTypeGenerate, []byte("{}"))
	if err := worker.HandleGenerate(context.Background(), task); err != nil {
		t.Fatalf("payload without job id must be dropped, got %v", err)
	}
}

func TestHandleGenerateFailureSchedulesRetry(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()
	worker := NewWorker(fx.manager, fx.store, zerolog.Nop())

	// Row whose payload points at a template that no longer exists.
	fx.jobs.rows["j1"] = &domain.Job{
		ID:          "j1",
		Status:      domain.JobStatusPending,
		DataType:    domain.DataTypeCustom,
		MaxRetries:  3,
		RecordCount: 150,
	}
	fx.enqueuer.tasks = nil

	payload := &GeneratePayload{
		JobID:        "j1",
		DataType:     "custom",
		RecordCount:  150,
		OutputFormat: "csv",
		TemplateID:   "vanished",
	}
	if err := worker.HandleGenerate(ctx, generateTask(t, payload)); err != nil {
		t.Fatalf("generation failure must not bubble into the queue, got %v", err)
	}

	row, _ := fx.jobs.GetByID(ctx, "j1")
	if row.Status != domain.JobStatusFailed {
		t.Fatalf("status: got %s, want failed", row.Status)
	}
	if row.RetryCount != 1 {
		t.Fatalf("retry count: got %d, want 1", row.RetryCount)
	}
	if len(fx.enqueuer.tasks) != 1 {
		t.Fatalf("retry task count: got %d, want 1", len(fx.enqueuer.tasks))
	}
}

func TestHandleCleanupRemovesOldFiles(t *testing.T) {
	fx := newManagerFixture(t)
	worker := NewWorker(fx.manager, fx.store, zerolog.Nop())

	old := filepath.Join(fx.store.BasePath(), "user_20200101_000000_aaaa.csv")
	if err := os.WriteFile(old, []byte("x"), 0o644); err != nil {
		t.Fatalf("write old file: %v", err)
	}
	stale := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	fresh := filepath.Join(fx.store.BasePath(), "user_20990101_000000_bbbb.csv")
	if err := os.WriteFile(fresh, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fresh file: %v", err)
	}

	if err := worker.HandleCleanup(context.Background(), NewCleanupTask()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old file survived cleanup")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file removed by cleanup: %v", err)
	}
}
