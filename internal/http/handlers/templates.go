package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/middleware"
)

const systemTemplatePrefix = "system-"

// ListTemplates merges the virtual system templates, materialized from the
// generator registry, with the stored custom templates.
func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("include_inactive") != "true"

	views := make([]map[string]any, 0)
	for _, info := range a.Registry.Catalog() {
		views = append(views, systemTemplateView(info))
	}

	stored, err := a.Templates.List(r.Context(), activeOnly)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list templates")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list templates")
		return
	}
	for i := range stored {
		views = append(views, templateView(&stored[i]))
	}

	a.json(w, http.StatusOK, map[string]any{
		"templates": views,
		"total":     len(views),
	})
}

type createTemplateRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Fields      []domain.FieldSpec `json:"fields"`
}

// CreateTemplate stores a custom template for the custom data type.
func (a *App) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	tpl := &domain.Template{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
		IsActive:    true,
		UserID:      middleware.UserIDFromContext(r.Context()),
	}
	if err := tpl.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	if err := a.Templates.Create(r.Context(), tpl); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			a.error(w, http.StatusConflict, "duplicate_name", "a template with that name already exists")
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: create template")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create template")
		return
	}

	a.json(w, http.StatusCreated, templateView(tpl))
}

// GetTemplate returns one template, virtual or stored.
func (a *App) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if name, ok := strings.CutPrefix(id, systemTemplatePrefix); ok {
		for _, info := range a.Registry.Catalog() {
			if info.Name == name {
				a.json(w, http.StatusOK, systemTemplateView(info))
				return
			}
		}
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	tpl, err := a.Templates.GetByID(r.Context(), id)
	if err != nil {
		if !a.domainError(w, err) {
			a.error(w, http.StatusInternalServerError, "internal", "failed to load template")
		}
		return
	}
	a.json(w, http.StatusOK, templateView(tpl))
}

// DeleteTemplate removes a stored custom template. System templates exist
// only in code and cannot be deleted.
func (a *App) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.HasPrefix(id, systemTemplatePrefix) {
		a.error(w, http.StatusForbidden, "system_template", domain.ErrSystemTemplate.Error())
		return
	}

	if err := a.Templates.Delete(r.Context(), id); err != nil {
		if !a.domainError(w, err) {
			a.Logger.Error().Err(err).Str("template_id", id).Msg("handlers: delete template")
			a.error(w, http.StatusInternalServerError, "internal", "failed to delete template")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func templateView(tpl *domain.Template) map[string]any {
	return map[string]any{
		"id":          tpl.ID,
		"name":        tpl.Name,
		"description": tpl.Description,
		"fields":      tpl.Fields,
		"is_active":   tpl.IsActive,
		"is_system":   false,
		"user_id":     tpl.UserID,
		"created_at":  tpl.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  tpl.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func systemTemplateView(info generator.Info) map[string]any {
	fields := make([]map[string]any, 0, len(info.Fields))
	for _, f := range info.Fields {
		fields = append(fields, map[string]any{
			"name":        f.Name,
			"type":        f.Type,
			"description": f.Description,
			"example":     f.Example,
		})
	}
	return map[string]any{
		"id":          systemTemplatePrefix + info.Name,
		"name":        info.Name,
		"description": info.Description,
		"fields":      fields,
		"is_active":   true,
		"is_system":   true,
	}
}
