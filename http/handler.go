package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sagarc03/sharelink"
)

// Multipart form field names of an upload.
const (
	FieldUserID = "user_id"
	FieldFile   = "file"
)

const (
	maxFieldSize     = 1024
	maxSignBodySize  = 64 << 10
	multipartOverrun = 1 << 20
)

type Service interface {
	Upload(ctx context.Context, req sharelink.UploadRequest, content io.Reader) (sharelink.FileRecord, error)
	ListFiles(ctx context.Context, ownerID string, q sharelink.ListQuery) (sharelink.ListResult, error)
	IssueLink(ctx context.Context, contentID, ownerID string, ttlSeconds int64) (sharelink.LinkParams, error)
	Download(ctx context.Context, p sharelink.LinkParams) (sharelink.FileRecord, io.ReadSeekCloser, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// Environment is reported by /health.
	Environment string
	// PublicURL is the base of signed URLs. When empty the request's own
	// scheme and host are used.
	PublicURL string
	// MaxUploadSize bounds the file part of an upload. The request body as a
	// whole may exceed it by a small allowance for multipart framing.
	MaxUploadSize int64
	Metrics       bool
	CORS          CORSConfig
}

// Handler provides the HTTP API for uploads, listings, link issuance and downloads.
type Handler struct {
	config   HandlerConfig
	service  Service
	validate *validator.Validate
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:   *config,
		service:  service,
		validate: newValidator(),
	}
}

// Router returns an http.Handler with every route configured.
// /metrics is mounted only when metrics are enabled.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.Metrics {
		r.Use(MetricsMiddleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	if h.config.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/files/upload", h.handleUpload)
		r.Get("/files/download", h.handleDownload)
		r.Post("/files/{file_id}/sign", h.handleSign)
		r.Get("/users/{user_id}/files", h.handleList)
	})

	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "sharelink"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "environment": h.config.Environment})
}

// handleUpload streams the file part straight into the service. The user_id
// field must come before the file part, so the body is never buffered.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize+multipartOverrun)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		HandleError(w, badRequest("multipart/form-data body required"))
		return
	}

	var ownerID string
	seenOwner := false

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				HandleError(w, err)
				return
			}
			HandleError(w, badRequest("malformed multipart body"))
			return
		}

		switch part.FormName() {
		case FieldUserID:
			value, readErr := io.ReadAll(io.LimitReader(part, maxFieldSize+1))
			if readErr != nil {
				HandleError(w, badRequest("malformed multipart body"))
				return
			}
			if len(value) > maxFieldSize {
				HandleError(w, badRequest("user_id is invalid"))
				return
			}
			ownerID = string(value)
			seenOwner = true

		case FieldFile:
			if !seenOwner {
				HandleError(w, badRequest("missing parameters: user_id (must precede the file part)"))
				return
			}

			req := sharelink.UploadRequest{OwnerID: ownerID, Filename: part.FileName()}
			record, uploadErr := h.service.Upload(r.Context(), req, part)
			if uploadErr != nil {
				HandleError(w, uploadErr)
				return
			}

			_ = WriteJSON(w, http.StatusCreated, record)
			return
		}
	}

	missing := []string{}
	if !seenOwner {
		missing = append(missing, FieldUserID)
	}
	missing = append(missing, FieldFile)
	HandleError(w, badRequest("missing parameters: "+strings.Join(missing, ", ")))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "user_id")

	query := sharelink.ListQuery{Cursor: r.URL.Query().Get("cursor")}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > sharelink.MaxListLimit {
			HandleError(w, badRequest("limit must be between 1 and "+strconv.Itoa(sharelink.MaxListLimit)))
			return
		}
		query.Limit = limit
	}

	result, err := h.service.ListFiles(r.Context(), ownerID, query)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

type signRequest struct {
	OwnerID    string `json:"owner_id" validate:"required,min=1,max=128"`
	TTLSeconds *int64 `json:"ttl_seconds" validate:"required,gt=0"`
}

type signResponse struct {
	FileID    string `json:"file_id"`
	ExpiresAt int64  `json:"expires_at"`
	SignedURL string `json:"signed_url"`
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "file_id")

	var body signRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSignBodySize))
	if err := dec.Decode(&body); err != nil {
		HandleError(w, badRequest("request body must be a JSON object"))
		return
	}

	if err := h.validate.Struct(&body); err != nil {
		HandleError(w, validationError(err))
		return
	}

	params, err := h.service.IssueLink(r.Context(), contentID, body.OwnerID, *body.TTLSeconds)
	if err != nil {
		HandleError(w, err)
		return
	}
	linksIssued.Inc()

	_ = WriteJSON(w, http.StatusOK, signResponse{
		FileID:    params.ContentID,
		ExpiresAt: params.ExpiresAt,
		SignedURL: params.URL(h.baseURL(r)),
	})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	params, err := sharelink.ParseLinkParams(r.URL.Query())
	if err != nil {
		HandleError(w, err)
		return
	}

	record, content, err := h.service.Download(r.Context(), params)
	if err != nil {
		observeDownload(err)
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()
	observeDownload(nil)

	w.Header().Set("Content-Type", "application/octet-stream")
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": record.Filename})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("ETag", `"`+record.Etag+`"`)
	w.Header().Set("Cache-Control", "private, no-store")

	http.ServeContent(w, r, record.Filename, record.UploadedAt, content)
}

func (h *Handler) baseURL(r *http.Request) string {
	if h.config.PublicURL != "" {
		return h.config.PublicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
