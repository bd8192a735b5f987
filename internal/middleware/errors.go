// ABOUTME: JSON error response helper for middleware and handlers
// ABOUTME: Keeps every error body in the {"error", "code"} shape

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSONError writes an error response as JSON with the given status code.
func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}{
		Error: message,
		Code:  code,
	})
}

func logPanic(r *http.Request, rec any) {
	slog.Error("Handler panic",
		"request_id", RequestID(r.Context()),
		"method", r.Method,
		"path", sanitizePath(r.URL.Path),
		"panic", rec,
	)
}
