// Package render writes JSON responses in the shapes every endpoint shares.
package render

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Detail writes {"detail": msg}.
func Detail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"detail": msg})
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// FieldErrors writes a 400 with per-field messages.
func FieldErrors(w http.ResponseWriter, fields map[string][]string) {
	JSON(w, http.StatusBadRequest, fields)
}

func NotFound(w http.ResponseWriter) {
	Detail(w, http.StatusNotFound, "Not found.")
}

// InternalError logs err under op and writes a generic 500.
func InternalError(w http.ResponseWriter, op string, err error) {
	log.Error().Err(err).Str("op", op).Msg("request failed")
	Detail(w, http.StatusInternalServerError, "Internal server error")
}
