package sharelink

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// FileRecord is the durable description of an uploaded file.
// It is created once, when an upload completes, and never mutated.
type FileRecord struct {
	ContentID  string    `json:"file_id"`
	OwnerID    string    `json:"owner_id"`
	Filename   string    `json:"filename"`
	Locator    string    `json:"-"`
	SizeBytes  int64     `json:"size"`
	Etag       string    `json:"etag"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// LinkAuditEvent records one successful link issuance.
type LinkAuditEvent struct {
	ContentID   string    `json:"file_id"`
	OwnerID     string    `json:"owner_id"`
	TTLSeconds  int64     `json:"ttl_seconds"`
	GeneratedAt time.Time `json:"generated_at"`
}

type UploadRequest struct {
	OwnerID  string
	Filename string
}

// SaveResult is what the content store reports for a completed write.
type SaveResult struct {
	ContentID    string
	Locator      string
	BytesWritten int64
	Etag         string
}

// StoredObject is a blob found in the content store.
type StoredObject struct {
	Locator    string    `json:"locator"`
	OwnerID    string    `json:"owner_id"`
	ContentID  string    `json:"file_id"`
	SizeBytes  int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Page size bounds for ListFiles.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type ListQuery struct {
	Limit  int
	Cursor string
}

type ListResult struct {
	Items      []FileRecord `json:"files"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// TTLPolicy bounds the lifetime a caller may request for a link, in seconds, inclusive.
type TTLPolicy struct {
	MinSeconds int64
	MaxSeconds int64
}

func (p TTLPolicy) Validate() error {
	if p.MinSeconds <= 0 {
		return fmt.Errorf("validate ttl policy: min must be positive, got %d", p.MinSeconds)
	}
	if p.MaxSeconds < p.MinSeconds {
		return fmt.Errorf("validate ttl policy: max %d is below min %d", p.MaxSeconds, p.MinSeconds)
	}
	return nil
}

// Tables holds configurable table names for metadata storage.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	Files     string `mapstructure:"files"`
	LinkAudit string `mapstructure:"link_audit"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set, valid and distinct.
func (t Tables) Validate() error {
	if t.Files == "" {
		return errors.New("validate tables: files table name cannot be empty")
	}
	if t.LinkAudit == "" {
		return errors.New("validate tables: link audit table name cannot be empty")
	}

	for _, name := range []string{t.Files, t.LinkAudit} {
		if !IsValidTableName(name) {
			return fmt.Errorf("validate tables: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
		}
	}

	if t.Files == t.LinkAudit {
		return fmt.Errorf("validate tables: files and link audit tables must differ, both are %s", t.Files)
	}

	return nil
}
