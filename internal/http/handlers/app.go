// Package handlers implements the HTTP API. Handlers stay thin: they decode,
// delegate to the lifecycle manager or repositories, and shape responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/infra"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/jobs"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/storage"
)

type App struct {
	Manager   *jobs.Manager
	Templates domain.TemplateRepository
	Registry  *generator.Registry
	Store     *storage.FileStore
	Logger    infra.Logger
}

func NewApp(manager *jobs.Manager, templates domain.TemplateRepository, registry *generator.Registry, store *storage.FileStore, logger infra.Logger) *App {
	return &App{
		Manager:   manager,
		Templates: templates,
		Registry:  registry,
		Store:     store,
		Logger:    logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": msg},
	})
}

// domainError maps shared domain errors onto responses; returns false when
// the error needs handler-specific treatment.
func (a *App) domainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case domain.IsValidation(err):
		a.error(w, http.StatusBadRequest, "validation", err.Error())
	default:
		return false
	}
	return true
}
