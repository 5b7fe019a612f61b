package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses and the
// {"error": string} body shape.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
