package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sagarc03/sharelink"
	sharelinkhttp "github.com/sagarc03/sharelink/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// readSeekNopCloser wraps an io.ReadSeeker to add a no-op Close method
type readSeekNopCloser struct {
	io.ReadSeeker
}

func (r readSeekNopCloser) Close() error { return nil }

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Upload(ctx context.Context, req sharelink.UploadRequest, content io.Reader) (sharelink.FileRecord, error) {
	args := m.Called(ctx, req, content)
	return args.Get(0).(sharelink.FileRecord), args.Error(1)
}

func (m *MockService) ListFiles(ctx context.Context, ownerID string, q sharelink.ListQuery) (sharelink.ListResult, error) {
	args := m.Called(ctx, ownerID, q)
	return args.Get(0).(sharelink.ListResult), args.Error(1)
}

func (m *MockService) IssueLink(ctx context.Context, contentID, ownerID string, ttlSeconds int64) (sharelink.LinkParams, error) {
	args := m.Called(ctx, contentID, ownerID, ttlSeconds)
	return args.Get(0).(sharelink.LinkParams), args.Error(1)
}

func (m *MockService) Download(ctx context.Context, p sharelink.LinkParams) (sharelink.FileRecord, io.ReadSeekCloser, error) {
	args := m.Called(ctx, p)
	if args.Get(1) == nil {
		return args.Get(0).(sharelink.FileRecord), nil, args.Error(2)
	}
	return args.Get(0).(sharelink.FileRecord), args.Get(1).(io.ReadSeekCloser), args.Error(2)
}

var uploadedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (http.Handler, *MockService) {
	t.Helper()
	service := new(MockService)
	config := &sharelinkhttp.HandlerConfig{Environment: "test", MaxUploadSize: 1024}
	t.Cleanup(func() { service.AssertExpectations(t) })
	return sharelinkhttp.NewHandler(config, service).Router(), service
}

func sampleRecord() sharelink.FileRecord {
	return sharelink.FileRecord{
		ContentID:  "c1",
		OwnerID:    "alice",
		Filename:   "report.pdf",
		Locator:    "alice/c1.pdf",
		SizeBytes:  13,
		Etag:       "abc123",
		UploadedAt: uploadedAt,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) sharelinkhttp.ErrorResponse {
	t.Helper()
	var resp sharelinkhttp.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

type formPart struct {
	name     string
	filename string
	value    string
}

func multipartBody(t *testing.T, parts ...formPart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := w.CreateFormFile(p.name, p.filename)
			require.NoError(t, err)
			_, err = io.WriteString(fw, p.value)
			require.NoError(t, err)
			continue
		}
		require.NoError(t, w.WriteField(p.name, p.value))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandler_Root(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"sharelink"}`, rec.Body.String())
}

func TestHandler_Health(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","environment":"test"}`, rec.Body.String())
}

func TestHandler_UnknownRoute(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)
}

func TestHandler_Metrics(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		config := &sharelinkhttp.HandlerConfig{Metrics: true}
		handler := sharelinkhttp.NewHandler(config, new(MockService)).Router()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `sharelink_http_requests_total{method="GET",route="/health",status="200"}`)
	})
}

func TestHandler_Upload_Success(t *testing.T) {
	handler, service := newTestHandler(t)

	var received string
	service.On("Upload", mock.Anything,
		sharelink.UploadRequest{OwnerID: "alice", Filename: "report.pdf"},
		mock.Anything,
	).Run(func(args mock.Arguments) {
		data, err := io.ReadAll(args.Get(2).(io.Reader))
		require.NoError(t, err)
		received = string(data)
	}).Return(sampleRecord(), nil)

	body, contentType := multipartBody(t,
		formPart{name: "user_id", value: "alice"},
		formPart{name: "file", filename: "report.pdf", value: "Hello, World!"},
	)
	req := httptest.NewRequest("POST", "/v1/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Hello, World!", received)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "c1", got["file_id"])
	assert.Equal(t, "alice", got["owner_id"])
	assert.Equal(t, "report.pdf", got["filename"])
	assert.EqualValues(t, 13, got["size"])
	assert.NotContains(t, got, "locator")
}

func TestHandler_Upload_MissingParts(t *testing.T) {
	tests := []struct {
		name    string
		parts   []formPart
		message string
	}{
		{
			name:    "no parts",
			parts:   nil,
			message: "missing parameters: user_id, file",
		},
		{
			name:    "no file",
			parts:   []formPart{{name: "user_id", value: "alice"}},
			message: "missing parameters: file",
		},
		{
			name:    "file before user_id",
			parts:   []formPart{{name: "file", filename: "a.txt", value: "x"}, {name: "user_id", value: "alice"}},
			message: "missing parameters: user_id (must precede the file part)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t)

			body, contentType := multipartBody(t, tt.parts...)
			req := httptest.NewRequest("POST", "/v1/files/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "bad_request", resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestHandler_Upload_NotMultipart(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/v1/files/upload", strings.NewReader(`{"user_id":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Upload_ServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "quota exceeded",
			err:     fmt.Errorf("upload: %w", &sharelink.RequestError{Kind: sharelink.ErrQuotaExceeded, Message: "file exceeds max upload size of 1024 bytes"}),
			status:  http.StatusRequestEntityTooLarge,
			code:    "payload_too_large",
			message: "file exceeds max upload size of 1024 bytes",
		},
		{
			name:    "invalid owner",
			err:     fmt.Errorf("upload: %w", &sharelink.RequestError{Kind: sharelink.ErrInvalidRequest, Message: "user_id is required"}),
			status:  http.StatusBadRequest,
			code:    "bad_request",
			message: "user_id is required",
		},
		{
			name:    "storage failure",
			err:     errors.New("disk on fire"),
			status:  http.StatusInternalServerError,
			code:    "internal_error",
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := newTestHandler(t)
			service.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(sharelink.FileRecord{}, tt.err)

			body, contentType := multipartBody(t,
				formPart{name: "user_id", value: "alice"},
				formPart{name: "file", filename: "a.txt", value: "x"},
			)
			req := httptest.NewRequest("POST", "/v1/files/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestHandler_List_Success(t *testing.T) {
	handler, service := newTestHandler(t)

	service.On("ListFiles", mock.Anything, "alice", sharelink.ListQuery{Limit: 50, Cursor: "abc"}).
		Return(sharelink.ListResult{Items: []sharelink.FileRecord{sampleRecord()}, NextCursor: "next"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/users/alice/files?limit=50&cursor=abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result sharelink.ListResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "c1", result.Items[0].ContentID)
	assert.Equal(t, "next", result.NextCursor)
}

func TestHandler_List_DefaultLimit(t *testing.T) {
	handler, service := newTestHandler(t)

	service.On("ListFiles", mock.Anything, "bob", sharelink.ListQuery{}).
		Return(sharelink.ListResult{Items: []sharelink.FileRecord{}}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/users/bob/files", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[]}`, rec.Body.String())
}

func TestHandler_List_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"abc", "0", "-1", "1001"} {
		t.Run(limit, func(t *testing.T) {
			handler, _ := newTestHandler(t)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/users/alice/files?limit="+limit, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "limit must be between 1 and 1000", decodeError(t, rec).Message)
		})
	}
}

func TestHandler_List_InvalidCursor(t *testing.T) {
	handler, service := newTestHandler(t)

	service.On("ListFiles", mock.Anything, "alice", mock.Anything).
		Return(sharelink.ListResult{}, fmt.Errorf("list files: invalid format: %w", sharelink.ErrInvalidRequest))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/users/alice/files?cursor=bogus", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Error)
}

func TestHandler_Sign_Success(t *testing.T) {
	handler, service := newTestHandler(t)

	service.On("IssueLink", mock.Anything, "c1", "alice", int64(600)).Return(sharelink.LinkParams{
		ContentID: "c1",
		OwnerID:   "alice",
		ExpiresAt: 1_700_000_600,
		Signature: "deadbeef",
	}, nil)

	req := httptest.NewRequest("POST", "/v1/files/c1/sign", strings.NewReader(`{"owner_id":"alice","ttl_seconds":600}`))
	req.Host = "files.test:5708"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		FileID    string `json:"file_id"`
		ExpiresAt int64  `json:"expires_at"`
		SignedURL string `json:"signed_url"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "c1", resp.FileID)
	assert.Equal(t, int64(1_700_000_600), resp.ExpiresAt)

	u, err := url.Parse(resp.SignedURL)
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "files.test:5708", u.Host)
	assert.Equal(t, sharelink.DownloadPath, u.Path)
	assert.Equal(t, "c1", u.Query().Get("file_id"))
	assert.Equal(t, "alice", u.Query().Get("owner_id"))
	assert.Equal(t, "1700000600", u.Query().Get("exp"))
	assert.Equal(t, "deadbeef", u.Query().Get("sig"))
}

func TestHandler_Sign_PublicURL(t *testing.T) {
	service := new(MockService)
	config := &sharelinkhttp.HandlerConfig{PublicURL: "https://files.example.com/"}
	handler := sharelinkhttp.NewHandler(config, service).Router()

	service.On("IssueLink", mock.Anything, "c1", "alice", int64(60)).
		Return(sharelink.LinkParams{ContentID: "c1", OwnerID: "alice", ExpiresAt: 10, Signature: "s"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/files/c1/sign", strings.NewReader(`{"owner_id":"alice","ttl_seconds":60}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"signed_url":"https://files.example.com/v1/files/download?`)
	service.AssertExpectations(t)
}

func TestHandler_Sign_InvalidBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "not json", body: `owner=alice`, message: "request body must be a JSON object"},
		{name: "missing owner", body: `{"ttl_seconds":60}`, message: "missing parameters: owner_id"},
		{name: "missing both", body: `{}`, message: "missing parameters: owner_id, ttl_seconds"},
		{name: "zero ttl", body: `{"owner_id":"alice","ttl_seconds":0}`, message: "invalid request parameters: ttl_seconds"},
		{name: "owner too long", body: `{"owner_id":"` + strings.Repeat("a", 129) + `","ttl_seconds":60}`, message: "invalid request parameters: owner_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/files/c1/sign", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "bad_request", resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestHandler_Sign_ServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "ttl too short",
			err:     fmt.Errorf("issue link: %w", &sharelink.RequestError{Kind: sharelink.ErrInvalidTTL, Message: "ttl_seconds must be >= 30"}),
			status:  http.StatusBadRequest,
			code:    "bad_request",
			message: "ttl_seconds must be >= 30",
		},
		{
			name:    "unknown file",
			err:     fmt.Errorf("issue link c1: %w", sharelink.ErrNotFound),
			status:  http.StatusNotFound,
			code:    "not_found",
			message: "file not found",
		},
		{
			name:    "not the owner",
			err:     fmt.Errorf("issue link c1: %w", sharelink.ErrForbidden),
			status:  http.StatusForbidden,
			code:    "forbidden",
			message: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := newTestHandler(t)
			service.On("IssueLink", mock.Anything, "c1", "alice", int64(10)).Return(sharelink.LinkParams{}, tt.err)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/files/c1/sign", strings.NewReader(`{"owner_id":"alice","ttl_seconds":10}`)))

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func downloadURL(p sharelink.LinkParams) string {
	return sharelink.DownloadPath + "?" + p.Query().Encode()
}

func TestHandler_Download_Success(t *testing.T) {
	handler, service := newTestHandler(t)

	params := sharelink.LinkParams{ContentID: "c1", OwnerID: "alice", ExpiresAt: 1_700_000_600, Signature: "deadbeef"}
	content := "Hello, World!"
	service.On("Download", mock.Anything, params).
		Return(sampleRecord(), readSeekNopCloser{strings.NewReader(content)}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", downloadURL(params), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=report.pdf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, `"abc123"`, rec.Header().Get("ETag"))
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.Equal(t, content, rec.Body.String())
}

func TestHandler_Download_Range(t *testing.T) {
	handler, service := newTestHandler(t)

	params := sharelink.LinkParams{ContentID: "c1", OwnerID: "alice", ExpiresAt: 1_700_000_600, Signature: "deadbeef"}
	service.On("Download", mock.Anything, params).
		Return(sampleRecord(), readSeekNopCloser{strings.NewReader("Hello, World!")}, nil)

	req := httptest.NewRequest("GET", downloadURL(params), nil)
	req.Header.Set("Range", "bytes=7-11")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "World", rec.Body.String())
}

func TestHandler_Download_MissingParams(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", sharelink.DownloadPath+"?file_id=c1&owner_id=alice", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "bad_request", resp.Error)
	assert.Equal(t, "missing parameters: exp, sig", resp.Message)
}

func TestHandler_Download_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "expired",
			err:     fmt.Errorf("download: authorize: %w", sharelink.ErrLinkExpired),
			status:  http.StatusGone,
			code:    "expired",
			message: "link expired",
		},
		{
			name:    "bad signature",
			err:     fmt.Errorf("download: authorize: %w: %w", sharelink.ErrAccessDenied, sharelink.ErrInvalidSignature),
			status:  http.StatusForbidden,
			code:    "forbidden",
			message: "invalid signature",
		},
		{
			name:    "record gone",
			err:     fmt.Errorf("download: authorize c1: %w: %w", sharelink.ErrAccessDenied, sharelink.ErrNotFound),
			status:  http.StatusForbidden,
			code:    "forbidden",
			message: "invalid signature",
		},
		{
			name:    "owner mismatch",
			err:     fmt.Errorf("download: authorize c1: %w: %w", sharelink.ErrAccessDenied, sharelink.ErrForbidden),
			status:  http.StatusForbidden,
			code:    "forbidden",
			message: "invalid signature",
		},
		{
			name:    "content missing",
			err:     fmt.Errorf("download c1: %w", sharelink.ErrContentMissing),
			status:  http.StatusNotFound,
			code:    "not_found",
			message: "file content missing",
		},
	}

	params := sharelink.LinkParams{ContentID: "c1", OwnerID: "alice", ExpiresAt: 1_700_000_600, Signature: "deadbeef"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := newTestHandler(t)
			service.On("Download", mock.Anything, params).Return(sharelink.FileRecord{}, nil, tt.err)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", downloadURL(params), nil))

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestHandler_CORS(t *testing.T) {
	config := &sharelinkhttp.HandlerConfig{
		CORS: sharelinkhttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://app.example.com"},
			AllowedMethods: []string{"GET", "POST"},
		},
	}
	handler := sharelinkhttp.NewHandler(config, new(MockService)).Router()

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
