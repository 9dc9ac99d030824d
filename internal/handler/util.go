package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pairchat/dm-core/internal/apperr"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeErr maps a kinded error onto an HTTP response. Callers branch on the
// kind field.
func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(err), map[string]string{
		"error": apperr.UserMessage(err),
		"kind":  string(apperr.KindOf(err)),
	})
}
