// Package filesystem provides the file system content store for sharelink.
// Uploads are written to a temp file inside the owner directory and renamed
// into place only once complete, so a failed upload never leaves a partial file
// at its locator. All access goes through an os.Root sandbox.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/sharelink"
)

// ChunkSize is the read size used when streaming uploads to disk.
const ChunkSize = 1 << 20

const tmpPrefix = ".t"

// Store provides file system content storage.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Open opens a stored blob for reading. Returns sharelink.ErrContentMissing
// if the locator does not resolve to a regular file.
func (s *Store) Open(ctx context.Context, locator string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(locator)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, sharelink.ErrContentMissing
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		closeQuietly(f, locator)
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if !info.Mode().IsRegular() {
		closeQuietly(f, locator)
		return nil, sharelink.ErrContentMissing
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Save streams content into a new blob owned by ownerID.
//
// A fresh content id is generated for every call. The locator is
// "<ownerID>/<contentID><ext>", where ext is kept only when it is a short
// alphanumeric suffix of filename. Reading stops as soon as more than
// maxSizeBytes have been read, and the call fails with sharelink.ErrQuotaExceeded.
// On any failure the temp file is removed before returning.
func (s *Store) Save(ctx context.Context, ownerID, filename string, content io.Reader, maxSizeBytes int64) (sharelink.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return sharelink.SaveResult{}, ctxErr
	}

	if !sharelink.IsValidOwnerID(ownerID) {
		return sharelink.SaveResult{}, fmt.Errorf("invalid owner id %q: %w", ownerID, sharelink.ErrInvalidRequest)
	}

	if maxSizeBytes <= 0 {
		return sharelink.SaveResult{}, fmt.Errorf("max size must be positive, got %d", maxSizeBytes)
	}

	if err := s.root.MkdirAll(ownerID, 0o755); err != nil {
		return sharelink.SaveResult{}, fmt.Errorf("could not create owner directory: %w", err)
	}

	contentID := uuid.New().String()
	locator := path.Join(ownerID, contentID+sharelink.SafeExtension(filename))

	tmpFile := path.Join(ownerID, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return sharelink.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.Warn("failed to remove tmp file", "path", tmpFile, "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	limited := io.LimitReader(&ctxReader{ctx: ctx, r: content}, maxSizeBytes+1)
	fileSizeBytes, err := io.CopyBuffer(w, limited, make([]byte, ChunkSize))
	if err != nil {
		return sharelink.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if fileSizeBytes > maxSizeBytes {
		return sharelink.SaveResult{}, fmt.Errorf("upload exceeds %d bytes: %w", maxSizeBytes, sharelink.ErrQuotaExceeded)
	}

	err = t.Sync()
	if err != nil {
		return sharelink.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if closeErr := t.Close(); closeErr != nil {
		return sharelink.SaveResult{}, fmt.Errorf("could not close written file: %w", closeErr)
	}

	if renameErr := s.root.Rename(tmpFile, locator); renameErr != nil {
		return sharelink.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	etag := hex.EncodeToString(h.Sum(nil))
	success = true

	return sharelink.SaveResult{
		ContentID:    contentID,
		Locator:      locator,
		BytesWritten: fileSizeBytes,
		Etag:         etag,
	}, nil
}

// Delete removes a blob. Returns sharelink.ErrContentMissing if it does not exist.
func (s *Store) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(locator)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sharelink.ErrContentMissing
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List walks the owner directories and returns every stored blob.
// Temp files of uploads in progress and anything outside an owner directory
// are skipped. This is intended for maintenance sweeps, not request paths.
func (s *Store) List(ctx context.Context) ([]sharelink.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	owners, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	entries := []sharelink.StoredObject{}

	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !owner.IsDir() {
			continue
		}

		if err := s.walkOwner(ctx, owner.Name(), &entries); err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
	}

	return entries, nil
}

func (s *Store) walkOwner(ctx context.Context, ownerID string, entries *[]sharelink.StoredObject) error {
	dirEntries, err := fs.ReadDir(s.root.FS(), ownerID)
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("walk dir: %w", err)
		}

		if !info.Mode().IsRegular() {
			continue
		}

		*entries = append(*entries, sharelink.StoredObject{
			Locator:    path.Join(ownerID, name),
			OwnerID:    ownerID,
			ContentID:  strings.TrimSuffix(name, path.Ext(name)),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	return nil
}

func closeQuietly(f *os.File, locator string) {
	if err := f.Close(); err != nil {
		slog.Warn("failed to close file", "path", locator, "err", err)
	}
}

func tmpFileName() string {
	return fmt.Sprintf("%s%s", tmpPrefix, uuid.New().String())
}
