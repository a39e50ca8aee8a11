package handlers

import "net/http"

// DataTypes lists the built-in generators and their field schemas.
func (a *App) DataTypes(w http.ResponseWriter, r *http.Request) {
	catalog := a.Registry.Catalog()
	a.json(w, http.StatusOK, map[string]any{
		"data_types": catalog,
		"total":      len(catalog),
	})
}
