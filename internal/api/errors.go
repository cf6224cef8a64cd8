package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tubelet/tubelet/internal/log"
	"github.com/tubelet/tubelet/internal/store"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the error envelope used across the API.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeStoreError maps store and engine failures onto HTTP responses.
// NotFound messages pass through verbatim; the store phrases them with
// the offending id.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	l := log.FromContext(r.Context())
	l.Error().Err(err).
		Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}
