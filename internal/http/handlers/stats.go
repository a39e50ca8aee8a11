package handlers

import "net/http"

// Stats aggregates job counts by status and data type plus storage usage.
// An optional user_id query param narrows the job counts to one caller.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	jobStats, err := a.Manager.Stats(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: job stats")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}

	storageStats, err := a.Store.Stats()
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: storage stats")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"jobs":    jobStats,
		"storage": storageStats,
	})
}
