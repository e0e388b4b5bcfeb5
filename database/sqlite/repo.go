// Package sqlite implements the metadata store using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/database/internal"
)

// timeLayout is fixed width so that text comparison orders timestamps correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

type repo struct {
	db     *sql.DB
	tables sharelink.Tables
}

// NewRepo returns a metadata store over an already migrated database.
func NewRepo(db *sql.DB, tables sharelink.Tables) (sharelink.MetadataStore, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &repo{db: db, tables: tables}, nil
}

func (r *repo) PutFile(ctx context.Context, record sharelink.FileRecord) (sharelink.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (content_id, owner_id, filename, locator, size_bytes, etag, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_id) DO NOTHING`, quoteIdentifier(r.tables.Files))

	uploadedAt := formatTime(record.UploadedAt)

	result, err := r.db.ExecContext(ctx, query,
		record.ContentID, record.OwnerID, record.Filename, record.Locator, record.SizeBytes, record.Etag, uploadedAt,
	)
	if err != nil {
		return sharelink.FileRecord{}, fmt.Errorf("put file: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sharelink.FileRecord{}, fmt.Errorf("put file: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return sharelink.FileRecord{}, fmt.Errorf("put file %s: %w", record.ContentID, sharelink.ErrDuplicateID)
	}

	record.UploadedAt, err = parseTime(uploadedAt)
	if err != nil {
		return sharelink.FileRecord{}, fmt.Errorf("put file: parse uploaded_at: %w", err)
	}

	return record, nil
}

func (r *repo) GetFile(ctx context.Context, contentID string) (sharelink.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT content_id, owner_id, filename, locator, size_bytes, etag, uploaded_at
		FROM %s
		WHERE content_id = ?`, quoteIdentifier(r.tables.Files))

	record, err := scanFileRecord(r.db.QueryRowContext(ctx, query, contentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sharelink.FileRecord{}, sharelink.ErrNotFound
		}
		return sharelink.FileRecord{}, fmt.Errorf("get file: %w", err)
	}

	return record, nil
}

func (r *repo) ListFiles(ctx context.Context, ownerID string, q sharelink.ListQuery) (sharelink.ListResult, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return sharelink.ListResult{}, fmt.Errorf("list files: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = sharelink.DefaultListLimit
	}

	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT content_id, owner_id, filename, locator, size_bytes, etag, uploaded_at
			FROM %s
			WHERE owner_id = ?
			ORDER BY uploaded_at DESC, content_id DESC
			LIMIT ?
		`, quoteIdentifier(r.tables.Files))
		args = []any{ownerID, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT content_id, owner_id, filename, locator, size_bytes, etag, uploaded_at
			FROM %s
			WHERE owner_id = ? AND (uploaded_at, content_id) < (?, ?)
			ORDER BY uploaded_at DESC, content_id DESC
			LIMIT ?
		`, quoteIdentifier(r.tables.Files))
		args = []any{ownerID, formatTime(cursor.UploadedAt), cursor.ContentID, limit + 1}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return sharelink.ListResult{}, fmt.Errorf("list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]sharelink.FileRecord, 0, limit)
	for rows.Next() {
		record, scanErr := scanFileRecord(rows)
		if scanErr != nil {
			return sharelink.ListResult{}, fmt.Errorf("list files: %w", scanErr)
		}
		items = append(items, record)
	}

	if err := rows.Err(); err != nil {
		return sharelink.ListResult{}, fmt.Errorf("list files: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		// Cursor points to the last item of the current page
		lastItem := items[limit-1]
		nextCursor = internal.EncodeCursor(lastItem.UploadedAt, lastItem.ContentID)
		items = items[:limit]
	}

	return sharelink.ListResult{Items: items, NextCursor: nextCursor}, nil
}

func (r *repo) AppendLinkAudit(ctx context.Context, event sharelink.LinkAuditEvent) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (content_id, owner_id, ttl_seconds, generated_at)
		VALUES (?, ?, ?, ?)`, quoteIdentifier(r.tables.LinkAudit))

	_, err := r.db.ExecContext(ctx, query, event.ContentID, event.OwnerID, event.TTLSeconds, formatTime(event.GeneratedAt))
	if err != nil {
		return fmt.Errorf("append link audit: %w", err)
	}

	return nil
}

func (r *repo) ListLinkAudit(ctx context.Context, contentID string) ([]sharelink.LinkAuditEvent, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT content_id, owner_id, ttl_seconds, generated_at
		FROM %s
		WHERE content_id = ?
		ORDER BY id`, quoteIdentifier(r.tables.LinkAudit))

	rows, err := r.db.QueryContext(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("list link audit: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []sharelink.LinkAuditEvent{}
	for rows.Next() {
		var e sharelink.LinkAuditEvent
		var generatedAt string

		if scanErr := rows.Scan(&e.ContentID, &e.OwnerID, &e.TTLSeconds, &generatedAt); scanErr != nil {
			return nil, fmt.Errorf("list link audit: scan: %w", scanErr)
		}

		var parseErr error
		e.GeneratedAt, parseErr = parseTime(generatedAt)
		if parseErr != nil {
			return nil, fmt.Errorf("list link audit: parse generated_at: %w", parseErr)
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list link audit: rows: %w", err)
	}

	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRecord(row rowScanner) (sharelink.FileRecord, error) {
	var m sharelink.FileRecord
	var uploadedAt string

	if err := row.Scan(&m.ContentID, &m.OwnerID, &m.Filename, &m.Locator, &m.SizeBytes, &m.Etag, &uploadedAt); err != nil {
		return sharelink.FileRecord{}, err
	}

	var err error
	m.UploadedAt, err = parseTime(uploadedAt)
	if err != nil {
		return sharelink.FileRecord{}, fmt.Errorf("parse uploaded_at: %w", err)
	}

	return m, nil
}
