package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/sharelink"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
//
// Download failures other than expiry all read "invalid signature", so a
// link holder cannot probe which files exist or who owns them.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sharelink.ErrLinkExpired):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusGone, "expired", "link expired")

	case errors.Is(err, sharelink.ErrAccessDenied):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusForbidden, "forbidden", "invalid signature")

	case errors.Is(err, sharelink.ErrContentMissing):
		slog.Warn("file content missing", "error", err)
		WriteError(w, http.StatusNotFound, "not_found", "file content missing")

	case errors.Is(err, sharelink.ErrQuotaExceeded):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", requestMessage(err, "file too large"))

	case isMaxBytesError(err):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")

	case errors.Is(err, sharelink.ErrInvalidTTL), errors.Is(err, sharelink.ErrInvalidRequest):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusBadRequest, "bad_request", requestMessage(err, "invalid request parameters"))

	case errors.Is(err, sharelink.ErrNotFound):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusNotFound, "not_found", "file not found")

	case errors.Is(err, sharelink.ErrForbidden):
		slog.Debug("request error", "error", err)
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden")

	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

func requestMessage(err error, fallback string) string {
	var reqErr *sharelink.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return fallback
}

func isMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
