package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/partitura/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody(msg))
}

// serviceStatus maps the apperr sentinels onto status codes and the message
// shown to clients. Zero means the error is unexpected.
func serviceStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "checksum mismatch"
	case errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusConflict, "score already exists"
	case errors.Is(err, apperr.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, apperr.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, apperr.ErrInvalidScore):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return 0, ""
}

// writeServiceError logs unexpected errors with the operation and path and
// hides their text from the client.
func writeServiceError(w http.ResponseWriter, op, p string, err error) {
	if status, msg := serviceStatus(err); status != 0 {
		writeError(w, status, msg)
		return
	}
	slog.Error(op+" failed", slog.String("path", p), slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func etag(checksum string) string {
	return `"` + checksum + `"`
}

// ifMatchChecksum returns the checksum from an If-Match header, accepting
// both quoted and bare values.
func ifMatchChecksum(r *http.Request) string {
	return strings.Trim(strings.TrimSpace(r.Header.Get("If-Match")), `"`)
}

// notModified sets the ETag and answers 304 when If-None-Match already names
// checksum. It reports whether the response is complete.
func notModified(w http.ResponseWriter, r *http.Request, checksum string) bool {
	tag := etag(checksum)
	w.Header().Set("ETag", tag)
	for _, v := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		v = strings.TrimSpace(v)
		if v == tag || v == "*" {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}
