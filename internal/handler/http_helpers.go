package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/Robinhood75t/Backend-MedScan-AI/pkg/errors"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// RequestIDFromContext returns the id assigned by the request id middleware
func RequestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeAppError maps err to its HTTP status and client-facing message.
func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, apperrors.GetStatusCode(err), apperrors.PublicMessage(err))
}

// writeJSON writes a JSON response. Model output is written without HTML escaping.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}
