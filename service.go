package sharelink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxFilenameLength bounds the original filename recorded for an upload.
const MaxFilenameLength = 255

// MetadataStore defines the interface for durable file records and the link issuance log.
// Implementations must handle concurrent access safely.
//
// All methods accept a context for cancellation and timeout control.
type MetadataStore interface {
	// PutFile records a completed upload.
	//
	// Returns:
	//   - FileRecord: the stored record
	//   - error: ErrDuplicateID if the content id already exists, or other database errors
	PutFile(ctx context.Context, record FileRecord) (FileRecord, error)

	// GetFile retrieves the record for a content id.
	//
	// Returns:
	//   - error: ErrNotFound if no record exists, or other database errors
	GetFile(ctx context.Context, contentID string) (FileRecord, error)

	// ListFiles retrieves a page of an owner's records, most recently uploaded first.
	ListFiles(ctx context.Context, ownerID string, q ListQuery) (ListResult, error)

	// AppendLinkAudit appends one issuance event. Events are never updated or deleted.
	AppendLinkAudit(ctx context.Context, event LinkAuditEvent) error

	// ListLinkAudit returns the issuance events for a content id, oldest first.
	ListLinkAudit(ctx context.Context, contentID string) ([]LinkAuditEvent, error)
}

// ContentStore defines the interface for the bytes behind file records.
//
// Implementations should respect context cancellation during long-running
// operations like large uploads.
type ContentStore interface {
	// Save streams content into a fresh, owner-scoped location.
	//
	// Implementations must:
	//   - generate a new content id per call
	//   - stop reading and fail with ErrQuotaExceeded once more than maxSizeBytes have been read
	//   - leave nothing reachable at the locator when they fail for any reason
	Save(ctx context.Context, ownerID, filename string, content io.Reader, maxSizeBytes int64) (SaveResult, error)

	// Open returns the stored bytes for a locator, or ErrContentMissing.
	// The caller is responsible for closing the returned ReadSeekCloser.
	Open(ctx context.Context, locator string) (io.ReadSeekCloser, error)

	// Delete removes the bytes for a locator, or returns ErrContentMissing.
	Delete(ctx context.Context, locator string) error

	// List returns every stored blob. It can be expensive on large volumes.
	List(ctx context.Context) ([]StoredObject, error)
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	MaxUploadSize  int64
	Policy         TTLPolicy
	CleanupTimeout time.Duration    // Timeout for cleanup operations (default: 30s)
	Clock          func() time.Time // default: time.Now
}

// Service combines the content store, the metadata store, and the link issuer
// and verifier behind the operations transports expose.
type Service struct {
	repo           MetadataStore
	storage        ContentStore
	issuer         *LinkIssuer
	verifier       *LinkVerifier
	maxUploadSize  int64
	cleanupTimeout time.Duration
	now            func() time.Time
}

func NewService(repo MetadataStore, storage ContentStore, signer *Signer, cfg ServiceConfig) (*Service, error) {
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("new service: max upload size must be positive, got %d", cfg.MaxUploadSize)
	}

	issuer, err := NewLinkIssuer(repo, signer, cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}

	verifier, err := NewLinkVerifier(repo, signer)
	if err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}

	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:           repo,
		storage:        storage,
		issuer:         issuer,
		verifier:       verifier,
		maxUploadSize:  cfg.MaxUploadSize,
		cleanupTimeout: cleanupTimeout,
		now:            now,
	}, nil
}

// ValidateUpload checks an upload request before any storage I/O happens.
func ValidateUpload(req UploadRequest) error {
	if strings.TrimSpace(req.OwnerID) == "" {
		return newRequestError(ErrInvalidRequest, "user_id is required")
	}
	if !IsValidOwnerID(req.OwnerID) {
		return newRequestError(ErrInvalidRequest, "user_id is invalid")
	}
	if req.Filename == "" {
		return newRequestError(ErrInvalidRequest, "filename is required")
	}
	if len(req.Filename) > MaxFilenameLength || !utf8.ValidString(req.Filename) {
		return newRequestError(ErrInvalidRequest, "filename is invalid")
	}
	return nil
}

// Upload stores content for req.OwnerID and records its metadata.
//
// The method performs the following steps:
//  1. Validates the request (ErrInvalidRequest) before touching storage
//  2. Streams content into the content store, bounded by the upload size cap
//  3. Records the file metadata
//  4. On metadata failure, deletes the stored bytes
//
// The metadata write starts only after the byte stream has been fully written,
// so no database transaction spans the transfer. Cleanup uses a background
// context bounded by the configured cleanup timeout so it completes even when
// the request context is gone.
func (s *Service) Upload(ctx context.Context, req UploadRequest, content io.Reader) (FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return FileRecord{}, fmt.Errorf("upload: %w", err)
	}

	if err := ValidateUpload(req); err != nil {
		return FileRecord{}, fmt.Errorf("upload: %w", err)
	}

	saved, err := s.storage.Save(ctx, req.OwnerID, req.Filename, content, s.maxUploadSize)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return FileRecord{}, fmt.Errorf("upload: %w",
				newRequestError(ErrQuotaExceeded, fmt.Sprintf("file exceeds max upload size of %d bytes", s.maxUploadSize)))
		}
		return FileRecord{}, fmt.Errorf("upload: write failed: %w", err)
	}

	record := FileRecord{
		ContentID:  saved.ContentID,
		OwnerID:    req.OwnerID,
		Filename:   req.Filename,
		Locator:    saved.Locator,
		SizeBytes:  saved.BytesWritten,
		Etag:       saved.Etag,
		UploadedAt: s.now().UTC(),
	}

	stored, putErr := s.repo.PutFile(ctx, record)
	if putErr != nil {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()

		if delErr := s.storage.Delete(cleanupCtx, saved.Locator); delErr != nil {
			return FileRecord{}, fmt.Errorf("upload %s: metadata write failed (%w) and cleanup failed: %w", saved.ContentID, putErr, delErr)
		}
		return FileRecord{}, fmt.Errorf("upload %s: metadata write failed: %w", saved.ContentID, putErr)
	}

	return stored, nil
}

func (s *Service) ListFiles(ctx context.Context, ownerID string, q ListQuery) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list files: %w", err)
	}

	if ownerID == "" {
		return ListResult{}, fmt.Errorf("list files: %w", newRequestError(ErrInvalidRequest, "user_id is required"))
	}

	switch {
	case q.Limit == 0:
		q.Limit = DefaultListLimit
	case q.Limit < 0 || q.Limit > MaxListLimit:
		return ListResult{}, fmt.Errorf("list files: %w",
			newRequestError(ErrInvalidRequest, fmt.Sprintf("limit must be between 1 and %d", MaxListLimit)))
	}

	result, err := s.repo.ListFiles(ctx, ownerID, q)
	if err != nil {
		return ListResult{}, fmt.Errorf("list files: %w", err)
	}

	return result, nil
}

// IssueLink mints a link for contentID valid for ttlSeconds from now.
func (s *Service) IssueLink(ctx context.Context, contentID, ownerID string, ttlSeconds int64) (LinkParams, error) {
	return s.issuer.Issue(ctx, contentID, ownerID, ttlSeconds, s.now())
}

// Download authorizes p and opens the bytes it grants access to.
// The caller is responsible for closing the returned ReadSeekCloser.
func (s *Service) Download(ctx context.Context, p LinkParams) (FileRecord, io.ReadSeekCloser, error) {
	record, err := s.verifier.Authorize(ctx, p, s.now())
	if err != nil {
		return FileRecord{}, nil, fmt.Errorf("download: %w", err)
	}

	f, err := s.storage.Open(ctx, record.Locator)
	if err != nil {
		return FileRecord{}, nil, fmt.Errorf("download %s: %w", record.ContentID, err)
	}

	return record, f, nil
}

// AuditLog returns the issuance events recorded for contentID.
func (s *Service) AuditLog(ctx context.Context, contentID string) ([]LinkAuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}

	events, err := s.repo.ListLinkAudit(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}

	return events, nil
}

// Orphans lists stored blobs that no file record points at.
// Blobs modified within the grace period are skipped: an upload in flight
// has written its bytes before its metadata.
func (s *Service) Orphans(ctx context.Context, grace time.Duration) ([]StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("orphans: %w", err)
	}

	objects, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("orphans: %w", err)
	}

	cutoff := s.now().Add(-grace)
	orphans := []StoredObject{}

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("orphans: %w", err)
		}

		if obj.ModifiedAt.After(cutoff) {
			continue
		}

		record, getErr := s.repo.GetFile(ctx, obj.ContentID)
		if getErr != nil && !errors.Is(getErr, ErrNotFound) {
			return nil, fmt.Errorf("orphans '%s': %w", obj.Locator, getErr)
		}

		if getErr != nil || record.Locator != obj.Locator {
			orphans = append(orphans, obj)
		}
	}

	return orphans, nil
}

// RemoveOrphans deletes the blobs Orphans reports and returns how many were removed.
// A blob that has already disappeared counts as removed.
func (s *Service) RemoveOrphans(ctx context.Context, grace time.Duration) (int, error) {
	orphans, err := s.Orphans(ctx, grace)
	if err != nil {
		return 0, fmt.Errorf("remove orphans: %w", err)
	}

	removed := 0
	for _, obj := range orphans {
		deleteErr := s.storage.Delete(ctx, obj.Locator)
		if deleteErr != nil && !errors.Is(deleteErr, ErrContentMissing) {
			return removed, fmt.Errorf("remove orphans '%s': %w", obj.Locator, deleteErr)
		}
		removed++
	}

	return removed, nil
}
