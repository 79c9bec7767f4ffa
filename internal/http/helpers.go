package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"makeros/internal/core"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// validationStatus maps a domain error to 422 and everything else to 500.
func validationStatus(err error) int {
	for _, known := range []error{
		core.ErrEmptyItem, core.ErrEmptyName, core.ErrEmptyText, core.ErrEmptyTitle,
		core.ErrInvalidType, core.ErrInvalidStatus, core.ErrNegativeCount,
		core.ErrInvalidDate, core.ErrInvalidAmount,
	} {
		if errors.Is(err, known) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
