// Package postgres implements the metadata store using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/database/internal"
)

type Repo struct {
	pool   *pgxpool.Pool
	tables sharelink.Tables
}

func NewRepo(pool *pgxpool.Pool, tables sharelink.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tables: tables}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) filesTable() string {
	return pgx.Identifier{r.tables.Files}.Sanitize()
}

func (r *Repo) auditTable() string {
	return pgx.Identifier{r.tables.LinkAudit}.Sanitize()
}

// PutFile inserts the record. The returned record carries uploaded_at as
// stored, which PostgreSQL keeps at microsecond precision.
func (r *Repo) PutFile(ctx context.Context, record sharelink.FileRecord) (sharelink.FileRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (content_id, owner_id, filename, locator, size_bytes, etag, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (content_id) DO NOTHING
		RETURNING content_id, owner_id, filename, locator, size_bytes, etag, uploaded_at
	`, r.filesTable())

	stored, err := scanFileRecord(r.pool.QueryRow(ctx, query,
		record.ContentID, record.OwnerID, record.Filename, record.Locator, record.SizeBytes, record.Etag, record.UploadedAt.UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sharelink.FileRecord{}, fmt.Errorf("put file %s: %w", record.ContentID, sharelink.ErrDuplicateID)
		}
		return sharelink.FileRecord{}, fmt.Errorf("put file: %w", err)
	}

	return stored, nil
}

func (r *Repo) GetFile(ctx context.Context, contentID string) (sharelink.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT content_id, owner_id, filename, locator, size_bytes, etag, uploaded_at
		FROM %s
		WHERE content_id = $1
	`, r.filesTable())

	m, err := scanFileRecord(r.pool.QueryRow(ctx, query, contentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sharelink.FileRecord{}, sharelink.ErrNotFound
		}
		return sharelink.FileRecord{}, fmt.Errorf("get file: %w", err)
	}

	return m, nil
}

func (r *Repo) ListFiles(ctx context.Context, ownerID string, q sharelink.ListQuery) (sharelink.ListResult, error) {
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
			WHERE owner_id = $1
			ORDER BY uploaded_at DESC, content_id DESC
			LIMIT $2
		`, r.filesTable())
		args = []any{ownerID, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT content_id, owner_id, filename, locator, size_bytes, etag, uploaded_at
			FROM %s
			WHERE owner_id = $1 AND (uploaded_at, content_id) < ($2, $3)
			ORDER BY uploaded_at DESC, content_id DESC
			LIMIT $4
		`, r.filesTable())
		args = []any{ownerID, cursor.UploadedAt, cursor.ContentID, limit + 1}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return sharelink.ListResult{}, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	items := make([]sharelink.FileRecord, 0, limit)
	for rows.Next() {
		m, err := scanFileRecord(rows)
		if err != nil {
			return sharelink.ListResult{}, fmt.Errorf("list files: scan: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return sharelink.ListResult{}, fmt.Errorf("list files: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		lastItem := items[limit-1]
		nextCursor = internal.EncodeCursor(lastItem.UploadedAt, lastItem.ContentID)
		items = items[:limit]
	}

	return sharelink.ListResult{Items: items, NextCursor: nextCursor}, nil
}

func (r *Repo) AppendLinkAudit(ctx context.Context, event sharelink.LinkAuditEvent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (content_id, owner_id, ttl_seconds, generated_at)
		VALUES ($1, $2, $3, $4)
	`, r.auditTable())

	if _, err := r.pool.Exec(ctx, query, event.ContentID, event.OwnerID, event.TTLSeconds, event.GeneratedAt.UTC()); err != nil {
		return fmt.Errorf("append link audit: %w", err)
	}

	return nil
}

func (r *Repo) ListLinkAudit(ctx context.Context, contentID string) ([]sharelink.LinkAuditEvent, error) {
	query := fmt.Sprintf(`
		SELECT content_id, owner_id, ttl_seconds, generated_at
		FROM %s
		WHERE content_id = $1
		ORDER BY id
	`, r.auditTable())

	rows, err := r.pool.Query(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("list link audit: %w", err)
	}
	defer rows.Close()

	events := []sharelink.LinkAuditEvent{}
	for rows.Next() {
		var e sharelink.LinkAuditEvent
		if err := rows.Scan(&e.ContentID, &e.OwnerID, &e.TTLSeconds, &e.GeneratedAt); err != nil {
			return nil, fmt.Errorf("list link audit: scan: %w", err)
		}
		e.GeneratedAt = e.GeneratedAt.UTC()
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list link audit: rows: %w", err)
	}

	return events, nil
}

func scanFileRecord(row pgx.Row) (sharelink.FileRecord, error) {
	var m sharelink.FileRecord
	if err := row.Scan(&m.ContentID, &m.OwnerID, &m.Filename, &m.Locator, &m.SizeBytes, &m.Etag, &m.UploadedAt); err != nil {
		return sharelink.FileRecord{}, err
	}
	m.UploadedAt = m.UploadedAt.UTC()
	return m, nil
}
