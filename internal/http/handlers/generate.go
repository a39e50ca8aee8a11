package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/jobs"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/middleware"
)

type generateRequest struct {
	DataType     string `json:"data_type"`
	RecordCount  int    `json:"record_count"`
	OutputFormat string `json:"output_format"`
	TemplateID   string `json:"template_id,omitempty"`
	Seed         uint64 `json:"seed,omitempty"`
}

// Generate submits an asynchronous generation job. Validation happens before
// any row or task exists; a rejected request leaves no trace.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	job, err := a.Manager.CreateJob(r.Context(), jobs.CreateRequest{
		DataType:     req.DataType,
		RecordCount:  req.RecordCount,
		OutputFormat: req.OutputFormat,
		TemplateID:   req.TemplateID,
		Seed:         req.Seed,
	}, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		if !a.domainError(w, err) {
			a.Logger.Error().Err(err).Msg("handlers: create job")
			a.error(w, http.StatusInternalServerError, "internal", "failed to create job")
		}
		return
	}

	a.json(w, http.StatusAccepted, map[string]any{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": "job queued for processing",
	})
}

type previewRequest struct {
	DataType    string `json:"data_type"`
	RecordCount int    `json:"record_count"`
	TemplateID  string `json:"template_id,omitempty"`
	Seed        uint64 `json:"seed,omitempty"`
}

// Preview generates a small record sample synchronously. The count is capped,
// never rejected, so clients can probe a schema without a job round trip.
func (a *App) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	gen, err := a.Manager.NewGenerator(r.Context(), req.DataType, req.TemplateID, req.Seed)
	if err != nil {
		if !a.domainError(w, err) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		}
		return
	}

	records, err := generator.Preview(gen, req.RecordCount, a.Manager.PreviewLimit())
	if err != nil {
		a.Logger.Error().Err(err).Str("data_type", req.DataType).Msg("handlers: preview")
		a.error(w, http.StatusInternalServerError, "internal", "preview generation failed")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"data_type":    req.DataType,
		"record_count": len(records),
		"records":      records,
	})
}
