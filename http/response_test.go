package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/sharelink"
	sharelinkhttp "github.com/sagarc03/sharelink/http"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", sharelink.ErrNotFound, http.StatusNotFound, "not_found", "file not found"},
		{"forbidden", sharelink.ErrForbidden, http.StatusForbidden, "forbidden", "forbidden"},
		{"invalid request", sharelink.ErrInvalidRequest, http.StatusBadRequest, "bad_request", "invalid request parameters"},
		{"invalid ttl with message",
			&sharelink.RequestError{Kind: sharelink.ErrInvalidTTL, Message: "ttl_seconds must be <= 3600"},
			http.StatusBadRequest, "bad_request", "ttl_seconds must be <= 3600"},
		{"quota", sharelink.ErrQuotaExceeded, http.StatusRequestEntityTooLarge, "payload_too_large", "file too large"},
		{"body too large", fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 10}), http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large"},
		{"expired", sharelink.ErrLinkExpired, http.StatusGone, "expired", "link expired"},
		{"access denied hides not found",
			fmt.Errorf("%w: %w", sharelink.ErrAccessDenied, sharelink.ErrNotFound),
			http.StatusForbidden, "forbidden", "invalid signature"},
		{"content missing", sharelink.ErrContentMissing, http.StatusNotFound, "not_found", "file content missing"},
		{"internal", errors.New("some unexpected error"), http.StatusInternalServerError, "internal_error", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			sharelinkhttp.HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestHandleError_WrappedNotFound(t *testing.T) {
	rec := httptest.NewRecorder()

	wrappedErr := errors.Join(errors.New("context"), sharelink.ErrNotFound)
	sharelinkhttp.HandleError(rec, wrappedErr)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestWriteError_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	sharelinkhttp.WriteError(rec, http.StatusBadRequest, "bad_request", "Invalid request")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error":"bad_request"`)
	assert.Contains(t, rec.Body.String(), `"message":"Invalid request"`)
}

func TestWriteJSON_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	data := map[string]string{"key": "value"}
	err := sharelinkhttp.WriteJSON(rec, http.StatusOK, data)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"key":"value"`)
}

func TestWriteJSON_EncodingError(t *testing.T) {
	rec := httptest.NewRecorder()

	// Channels cannot be JSON encoded
	data := make(chan int)
	err := sharelinkhttp.WriteJSON(rec, http.StatusOK, data)

	assert.Error(t, err)
}
