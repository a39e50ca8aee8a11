package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/infra"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/jobs"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/storage"
)

type memJobRepo struct {
	rows map[string]*domain.Job
}

func (m *memJobRepo) Create(_ context.Context, job *domain.Job) error {
	cp := *job
	m.rows[job.ID] = &cp
	return nil
}

func (m *memJobRepo) GetByID(_ context.Context, jobID string) (*domain.Job, error) {
	row, ok := m.rows[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memJobRepo) List(_ context.Context, filter domain.JobFilter, page, pageSize int) ([]domain.Job, int, error) {
	out := []domain.Job{}
	for _, row := range m.rows {
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, *row)
	}
	return out, len(out), nil
}

func (m *memJobRepo) Delete(_ context.Context, jobID string) error {
	if _, ok := m.rows[jobID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, jobID)
	return nil
}

func (m *memJobRepo) Stats(_ context.Context, _ string) (*domain.JobStats, error) {
	stats := &domain.JobStats{ByStatus: map[string]int{}, ByType: map[string]int{}}
	for _, row := range m.rows {
		stats.Total++
		stats.ByStatus[string(row.Status)]++
		stats.ByType[string(row.DataType)]++
	}
	return stats, nil
}

func (m *memJobRepo) MarkProcessing(_ context.Context, jobID string) (bool, error) {
	return false, nil
}

func (m *memJobRepo) UpdateProgress(_ context.Context, _ string, _ float64) (bool, error) {
	return false, nil
}

func (m *memJobRepo) MarkCompleted(_ context.Context, _ string, _ string, _ int64, _ map[string]any) (bool, error) {
	return false, nil
}

func (m *memJobRepo) MarkFailed(_ context.Context, _ string, _ string) (int, int, bool, error) {
	return 0, 0, false, nil
}

func (m *memJobRepo) Cancel(_ context.Context, jobID string) error {
	row, ok := m.rows[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if row.Status.Terminal() {
		return domain.ErrAlreadyTerminal
	}
	row.Status = domain.JobStatusCancelled
	return nil
}

type memTemplateRepo struct {
	templates map[string]*domain.Template
}

func (m *memTemplateRepo) Create(_ context.Context, tpl *domain.Template) error {
	for _, existing := range m.templates {
		if existing.Name == tpl.Name {
			return domain.ErrDuplicateName
		}
	}
	m.templates[tpl.ID] = tpl
	return nil
}

func (m *memTemplateRepo) GetByID(_ context.Context, id string) (*domain.Template, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tpl, nil
}

func (m *memTemplateRepo) List(_ context.Context, activeOnly bool) ([]domain.Template, error) {
	out := []domain.Template{}
	for _, tpl := range m.templates {
		if activeOnly && !tpl.IsActive {
			continue
		}
		out = append(out, *tpl)
	}
	return out, nil
}

func (m *memTemplateRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.templates[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueContext(_ context.Context, _ *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{}, nil
}

type appFixture struct {
	app  *App
	jobs *memJobRepo
	tpls *memTemplateRepo
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	cfg := &infra.Config{
		MinRecords:   100,
		MaxRecords:   1_000_000,
		MaxRetries:   3,
		PreviewLimit: 10,
	}
	jobRepo := &memJobRepo{rows: map[string]*domain.Job{}}
	tplRepo := &memTemplateRepo{templates: map[string]*domain.Template{}}
	registry := generator.NewRegistry(language.AmericanEnglish)
	manager := jobs.NewManager(cfg, jobRepo, tplRepo, registry, store, noopEnqueuer{}, zerolog.Nop())
	app := NewApp(manager, tplRepo, registry, store, zerolog.Nop())
	return &appFixture{app: app, jobs: jobRepo, tpls: tplRepo}
}

func TestGenerateRejectsInvalidBody(t *testing.T) {
	fx := newAppFixture(t)

	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader("{nope"))
	rr := httptest.NewRecorder()
	fx.app.Generate(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
}

func TestGenerateValidationLeavesNoRow(t *testing.T) {
	fx := newAppFixture(t)

	body := `{"data_type":"user","record_count":5,"output_format":"csv"}`
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	fx.app.Generate(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	if len(fx.jobs.rows) != 0 {
		t.Fatalf("row created for invalid request: %d rows", len(fx.jobs.rows))
	}
}

func TestGenerateAcceptsValidRequest(t *testing.T) {
	fx := newAppFixture(t)

	body := `{"data_type":"ecommerce","record_count":1000,"output_format":"json","seed":4}`
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	fx.app.Generate(rr, req)

	if rr.Code != 202 {
		t.Fatalf("status: got %d, want 202", rr.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	jobID, _ := resp["job_id"].(string)
	if jobID == "" {
		t.Fatal("response missing job_id")
	}
	if _, ok := fx.jobs.rows[jobID]; !ok {
		t.Fatal("accepted job has no row")
	}
	if resp["status"] != "pending" {
		t.Fatalf("status field: got %#v, want pending", resp["status"])
	}
}

func TestPreviewCapsRecordCount(t *testing.T) {
	fx := newAppFixture(t)

	body := `{"data_type":"user","record_count":500,"seed":9}`
	req := httptest.NewRequest("POST", "/api/preview", strings.NewReader(body))
	rr := httptest.NewRecorder()
	fx.app.Preview(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp struct {
		RecordCount int              `json:"record_count"`
		Records     []map[string]any `json:"records"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RecordCount != 10 || len(resp.Records) != 10 {
		t.Fatalf("preview size: got %d records, want 10", len(resp.Records))
	}
}

func TestGetJobNotFound(t *testing.T) {
	fx := newAppFixture(t)

	req := httptest.NewRequest("GET", "/api/jobs/missing", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	fx.app.GetJob(rr, req)

	if rr.Code != 404 {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
}

func TestDownloadPendingJobConflicts(t *testing.T) {
	fx := newAppFixture(t)
	fx.jobs.rows["j1"] = &domain.Job{
		ID:           "j1",
		Status:       domain.JobStatusPending,
		OutputFormat: domain.FormatCSV,
	}

	req := httptest.NewRequest("GET", "/api/jobs/j1/download", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "j1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	fx.app.DownloadJob(rr, req)

	if rr.Code != 409 {
		t.Fatalf("status: got %d, want 409", rr.Code)
	}
}

func TestDownloadReclaimedFileReports404(t *testing.T) {
	fx := newAppFixture(t)
	fx.jobs.rows["j2"] = &domain.Job{
		ID:           "j2",
		Status:       domain.JobStatusCompleted,
		OutputFormat: domain.FormatCSV,
		FilePath:     "user_20200101_000000_aaaa.csv",
	}

	req := httptest.NewRequest("GET", "/api/jobs/j2/download", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "j2")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	fx.app.DownloadJob(rr, req)

	if rr.Code != 404 {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
	var resp map[string]map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"]["code"] != "file_gone" {
		t.Fatalf("error code: got %q, want file_gone", resp["error"]["code"])
	}
}

func TestCancelTerminalJobConflicts(t *testing.T) {
	fx := newAppFixture(t)
	fx.jobs.rows["j3"] = &domain.Job{ID: "j3", Status: domain.JobStatusCompleted}

	req := httptest.NewRequest("POST", "/api/jobs/j3/cancel", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "j3")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	fx.app.CancelJob(rr, req)

	if rr.Code != 409 {
		t.Fatalf("status: got %d, want 409", rr.Code)
	}
}

func TestListJobsRejectsUnknownStatus(t *testing.T) {
	fx := newAppFixture(t)

	req := httptest.NewRequest("GET", "/api/jobs?status=sleeping", nil)
	rr := httptest.NewRecorder()
	fx.app.ListJobs(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
}

func TestDataTypesCatalog(t *testing.T) {
	fx := newAppFixture(t)

	req := httptest.NewRequest("GET", "/api/data-types", nil)
	rr := httptest.NewRecorder()
	fx.app.DataTypes(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp struct {
		DataTypes []generator.Info `json:"data_types"`
		Total     int              `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("catalog size: got %d, want 3", resp.Total)
	}
}

func TestCreateTemplateValidates(t *testing.T) {
	fx := newAppFixture(t)

	body := `{"name":"","fields":[]}`
	req := httptest.NewRequest("POST", "/api/templates", strings.NewReader(body))
	rr := httptest.NewRecorder()
	fx.app.CreateTemplate(rr, req)

	if rr.Code != 400 {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	if len(fx.tpls.templates) != 0 {
		t.Fatal("invalid template stored")
	}
}

func TestCreateTemplateDuplicateName(t *testing.T) {
	fx := newAppFixture(t)

	body := `{"name":"orders","fields":[{"name":"id","type":"uuid"}]}`
	req := httptest.NewRequest("POST", "/api/templates", strings.NewReader(body))
	rr := httptest.NewRecorder()
	fx.app.CreateTemplate(rr, req)
	if rr.Code != 201 {
		t.Fatalf("first create: got %d, want 201", rr.Code)
	}

	req = httptest.NewRequest("POST", "/api/templates", strings.NewReader(body))
	rr = httptest.NewRecorder()
	fx.app.CreateTemplate(rr, req)
	if rr.Code != 409 {
		t.Fatalf("duplicate create: got %d, want 409", rr.Code)
	}
}

func TestListTemplatesIncludesSystemTemplates(t *testing.T) {
	fx := newAppFixture(t)
	fx.tpls.templates["tpl-1"] = &domain.Template{
		ID:       "tpl-1",
		Name:     "mine",
		IsActive: true,
		Fields:   []domain.FieldSpec{{Name: "x", Type: domain.FieldString}},
	}

	req := httptest.NewRequest("GET", "/api/templates", nil)
	rr := httptest.NewRecorder()
	fx.app.ListTemplates(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp struct {
		Templates []map[string]any `json:"templates"`
		Total     int              `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Three virtual system templates plus the stored one.
	if resp.Total != 4 {
		t.Fatalf("template count: got %d, want 4", resp.Total)
	}
	system := 0
	for _, tpl := range resp.Templates {
		if isSystem, _ := tpl["is_system"].(bool); isSystem {
			system++
		}
	}
	if system != 3 {
		t.Fatalf("system template count: got %d, want 3", system)
	}
}

func TestDeleteSystemTemplateForbidden(t *testing.T) {
	fx := newAppFixture(t)

	req := httptest.NewRequest("DELETE", "/api/templates/system-user", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "system-user")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	fx.app.DeleteTemplate(rr, req)

	if rr.Code != 403 {
		t.Fatalf("status: got %d, want 403", rr.Code)
	}
}

func TestStatsAggregates(t *testing.T) {
	fx := newAppFixture(t)
	now := time.Now().UTC()
	fx.jobs.rows["a"] = &domain.Job{ID: "a", Status: domain.JobStatusCompleted, DataType: domain.DataTypeUser, CreatedAt: now}
	fx.jobs.rows["b"] = &domain.Job{ID: "b", Status: domain.JobStatusFailed, DataType: domain.DataTypeUser, CreatedAt: now}

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rr := httptest.NewRecorder()
	fx.app.Stats(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp struct {
		Jobs    domain.JobStats `json:"jobs"`
		Storage map[string]any  `json:"storage"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Jobs.Total != 2 {
		t.Fatalf("job total: got %d, want 2", resp.Jobs.Total)
	}
	if resp.Jobs.ByStatus["completed"] != 1 || resp.Jobs.ByStatus["failed"] != 1 {
		t.Fatalf("by status: got %v", resp.Jobs.ByStatus)
	}
	if _, ok := resp.Storage["total_files"]; !ok {
		t.Fatal("storage stats missing total_files")
	}
}
