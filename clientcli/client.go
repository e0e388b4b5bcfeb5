package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultTTL is the default link lifetime requested by Sign.
	DefaultTTL = time.Hour

	// DefaultListLimit matches the server's default page size.
	DefaultListLimit = 100

	// MaxListLimit matches the server's largest accepted page size.
	MaxListLimit = 1000
)

// Client performs operations against a sharelink server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
			UserID:   cfg.UserID,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload uploads file(s) for the configured user.
// For recursive uploads, every regular file under the directory is uploaded
// and failures are reported per file.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if c.config.UserID == "" {
		return nil, fmt.Errorf("upload: %w", ErrUserIDRequired)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts.LocalPath)
	}

	name := opts.Filename
	if name == "" {
		name = filepath.Base(opts.LocalPath)
	}
	result, err := c.uploadSingle(ctx, opts.LocalPath, name)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files.
func (c *Client) uploadRecursive(ctx context.Context, root string) ([]UploadResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		result, uploadErr := c.uploadSingle(ctx, root, filepath.Base(root))
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		result, uploadErr := c.uploadSingle(ctx, path, d.Name())
		if uploadErr != nil {
			result = UploadResult{LocalPath: path, Filename: d.Name(), Err: uploadErr}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle streams one file to the upload endpoint as multipart form
// data. The user_id field is written before the file part so the server can
// authorize the upload before reading the content.
func (c *Client) uploadSingle(ctx context.Context, localPath, filename string) (UploadResult, error) {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(mw, c.config.UserID, filename, file))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+"/v1/files/upload", pr)
	if err != nil {
		_ = pr.Close()
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		_ = pr.Close()
		return UploadResult{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return UploadResult{}, parseServerError(resp.StatusCode, body)
	}

	var record FileInfo
	if err := json.Unmarshal(body, &record); err != nil {
		return UploadResult{}, fmt.Errorf("parse response: %w", err)
	}

	return UploadResult{
		LocalPath:  localPath,
		FileID:     record.FileID,
		OwnerID:    record.OwnerID,
		Filename:   record.Filename,
		Size:       record.Size,
		ETag:       record.ETag,
		UploadedAt: record.UploadedAt,
	}, nil
}

func writeUploadForm(mw *multipart.Writer, userID, filename string, content io.Reader) error {
	if err := mw.WriteField("user_id", userID); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

// Sign asks the server for a time-limited download link.
func (c *Client) Sign(ctx context.Context, opts SignOptions) (*SignResult, error) {
	if opts.FileID == "" {
		return nil, fmt.Errorf("sign: %w", ErrEmptyFileID)
	}

	owner := opts.OwnerID
	if owner == "" {
		owner = c.config.UserID
	}
	if owner == "" {
		return nil, fmt.Errorf("sign: %w", ErrUserIDRequired)
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	seconds := int64(ttl / time.Second)
	if seconds <= 0 {
		return nil, fmt.Errorf("sign: %w", ErrInvalidTTL)
	}

	payload, err := json.Marshal(map[string]any{
		"owner_id":    owner,
		"ttl_seconds": seconds,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.config.Endpoint + "/v1/files/" + url.PathEscape(opts.FileID) + "/sign"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, body)
	}

	var signed serverSignResult
	if err := json.Unmarshal(body, &signed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &SignResult{
		FileID:    signed.FileID,
		ExpiresAt: time.Unix(signed.ExpiresAt, 0).UTC(),
		SignedURL: signed.SignedURL,
	}, nil
}

// Download fetches the file behind a signed link. No credentials are needed:
// the link itself is the capability.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.SignedURL == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyURL)
	}

	u, err := url.Parse(opts.SignedURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse signed url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		FileID:   u.Query().Get("file_id"),
		Filename: attachmentFilename(resp.Header.Get("Content-Disposition")),
		ETag:     strings.Trim(resp.Header.Get("ETag"), `"`),
		Size:     resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = result.Filename
	}
	if localPath == "" {
		localPath = result.FileID
	}
	if localPath == "" {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// attachmentFilename extracts a safe base name from a Content-Disposition
// header. It returns "" when the header carries no usable filename.
func attachmentFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(filepath.Clean("/" + params["filename"]))
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}

// List lists the files of a user.
// If opts.All is true, paginates through all results.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.UserID == "" {
		opts.UserID = c.config.UserID
	}
	if opts.UserID == "" {
		return nil, fmt.Errorf("list: %w", ErrUserIDRequired)
	}
	if opts.All {
		return c.listAll(ctx, opts)
	}
	return c.listPage(ctx, opts)
}

// listPage fetches a single page of results.
func (c *Client) listPage(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	endpoint := c.config.Endpoint + "/v1/users/" + url.PathEscape(opts.UserID) + "/files?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, body)
	}

	var result ListResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if result.Items == nil {
		result.Items = []FileInfo{}
	}

	return &result, nil
}

// listAll fetches all pages of results.
func (c *Client) listAll(ctx context.Context, opts ListOptions) (*ListResult, error) {
	allItems := []FileInfo{}
	cursor := opts.Cursor

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.listPage(ctx, ListOptions{
			UserID: opts.UserID,
			Limit:  opts.Limit,
			Cursor: cursor,
		})
		if err != nil {
			return nil, err
		}

		allItems = append(allItems, page.Items...)

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return &ListResult{Items: allItems}, nil
}

// TotalSize calculates the total size of all items in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Size
	}
	return total
}

// HasUploadErrors returns true if any upload in the batch failed.
func HasUploadErrors(results []UploadResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// parseServerError builds an APIError from a response, decoding the
// server's JSON error body when present.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}
	var se serverError
	if json.Unmarshal(body, &se) == nil {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
	}
	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrBadRequest is returned when the server rejects the request parameters (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrForbidden is returned when a link is invalid or the caller does not own the file (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrNotFound is returned when the requested file does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrExpired is returned when a signed link is past its expiry (410).
	ErrExpired = &APIError{StatusCode: http.StatusGone}

	// ErrTooLarge is returned when an upload exceeds the server's size limit (413).
	ErrTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}
)
