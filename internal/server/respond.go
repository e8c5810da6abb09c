package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comigor/nexucore/internal/chart"
	"github.com/comigor/nexucore/internal/chat"
	"github.com/comigor/nexucore/internal/logger"
	"github.com/comigor/nexucore/internal/sandbox"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("Failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, chart.ErrEmptyChart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sandbox.ErrReadOnly):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.L.Error("Request failed", "error", err)
		Error(w, status, "internal error")
		return
	}
	Error(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	return dec.Decode(v)
}
