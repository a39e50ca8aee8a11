package handlers

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListJobs returns a filtered page of the caller's jobs, newest first.
func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.JobFilter{
		UserID:   q.Get("user_id"),
		Status:   domain.JobStatus(q.Get("status")),
		DataType: domain.DataType(q.Get("data_type")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		a.error(w, http.StatusBadRequest, "validation", "unknown status filter")
		return
	}

	page := queryInt(q.Get("page"), 1)
	pageSize := queryInt(q.Get("page_size"), defaultPageSize)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	list, total, err := a.Manager.ListJobs(r.Context(), filter, page, pageSize)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list jobs")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list jobs")
		return
	}

	views := make([]map[string]any, 0, len(list))
	for i := range list {
		views = append(views, jobStatusView(&list[i]))
	}
	a.json(w, http.StatusOK, map[string]any{
		"jobs":      views,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetJob returns the slim polling view of one job.
func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.Manager.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !a.domainError(w, err) {
			a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		}
		return
	}
	a.json(w, http.StatusOK, jobStatusView(job))
}

// GetJobDetails returns the full job row including configuration, retry
// counters and completion metadata.
func (a *App) GetJobDetails(w http.ResponseWriter, r *http.Request) {
	job, err := a.Manager.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !a.domainError(w, err) {
			a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		}
		return
	}
	a.json(w, http.StatusOK, jobDetailsView(job))
}

// DownloadJob streams the generated file. Only completed jobs have one; a
// file reclaimed by cleanup reports 404 with its own error code.
func (a *App) DownloadJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.Manager.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !a.domainError(w, err) {
			a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		}
		return
	}
	if job.Status != domain.JobStatusCompleted || job.FilePath == "" {
		a.error(w, http.StatusConflict, "not_ready", "job has no downloadable file")
		return
	}

	f, info, err := a.Store.Open(job.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.error(w, http.StatusNotFound, "file_gone", "generated file has been cleaned up")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("handlers: open download")
		a.error(w, http.StatusInternalServerError, "internal", "failed to open file")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", job.OutputFormat.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+job.FilePath+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	_, _ = io.Copy(w, f)
}

// CancelJob cancels a pending or processing job. A task already handed to a
// worker finishes its current write but the terminal row wins the race.
func (a *App) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Manager.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrAlreadyTerminal) {
			a.error(w, http.StatusConflict, "already_terminal", "job already finished")
			return
		}
		if !a.domainError(w, err) {
			a.Logger.Error().Err(err).Str("job_id", id).Msg("handlers: cancel job")
			a.error(w, http.StatusInternalServerError, "internal", "failed to cancel job")
		}
		return
	}
	a.json(w, http.StatusOK, map[string]any{"job_id": id, "status": domain.JobStatusCancelled})
}

// DeleteJob removes the job row and its generated file.
func (a *App) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Manager.Delete(r.Context(), id); err != nil {
		if !a.domainError(w, err) {
			a.Logger.Error().Err(err).Str("job_id", id).Msg("handlers: delete job")
			a.error(w, http.StatusInternalServerError, "internal", "failed to delete job")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func jobStatusView(job *domain.Job) map[string]any {
	return map[string]any{
		"job_id":        job.ID,
		"status":        job.Status,
		"progress":      job.Progress,
		"error_message": job.ErrorMessage,
		"created_at":    job.CreatedAt.UTC().Format(time.RFC3339),
		"started_at":    rfc3339OrNil(job.StartedAt),
		"completed_at":  rfc3339OrNil(job.CompletedAt),
	}
}

func jobDetailsView(job *domain.Job) map[string]any {
	v := jobStatusView(job)
	v["user_id"] = job.UserID
	v["data_type"] = job.DataType
	v["record_count"] = job.RecordCount
	v["output_format"] = job.OutputFormat
	if job.TemplateID != "" {
		v["template_id"] = job.TemplateID
	}
	v["retry_count"] = job.RetryCount
	v["max_retries"] = job.MaxRetries
	v["file_path"] = job.FilePath
	v["file_size"] = job.FileSize
	v["metadata"] = job.Metadata
	v["updated_at"] = job.UpdatedAt.UTC().Format(time.RFC3339)
	return v
}

func rfc3339OrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
