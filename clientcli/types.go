package clientcli

import "time"

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	// Filename overrides the name recorded on the server. Ignored for
	// recursive uploads.
	Filename  string
	Recursive bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath  string    `json:"local_path"`
	FileID     string    `json:"file_id"`
	OwnerID    string    `json:"owner_id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	ETag       string    `json:"etag"`
	UploadedAt time.Time `json:"uploaded_at"`
	Err        error     `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	SignedURL string
	LocalPath string // empty = name from Content-Disposition, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	FileID    string `json:"file_id"`
	LocalPath string `json:"local_path"`
	Filename  string `json:"filename,omitempty"`
	ETag      string `json:"etag"`
	Size      int64  `json:"size"`
}

// SignOptions configures a link request.
type SignOptions struct {
	FileID  string
	OwnerID string // defaults to the configured user id
	TTL     time.Duration
}

// SignResult is an issued download link.
type SignResult struct {
	FileID    string    `json:"file_id"`
	ExpiresAt time.Time `json:"expires_at"`
	SignedURL string    `json:"signed_url"`
}

// ListOptions configures a list operation.
type ListOptions struct {
	UserID string // defaults to the configured user id
	Limit  int
	Cursor string
	All    bool // auto-paginate through all results
}

// ListResult contains paginated list results.
type ListResult struct {
	Items      []FileInfo `json:"files"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FileInfo represents metadata for a single stored file.
type FileInfo struct {
	FileID     string    `json:"file_id"`
	OwnerID    string    `json:"owner_id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	ETag       string    `json:"etag"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// serverSignResult mirrors the JSON response of the sign endpoint.
type serverSignResult struct {
	FileID    string `json:"file_id"`
	ExpiresAt int64  `json:"expires_at"`
	SignedURL string `json:"signed_url"`
}

// serverError mirrors the JSON error body returned by the server.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
