// Package storetest holds the behavior every sharelink.MetadataStore
// backend must show, run against each backend from its own tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/sharelink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. It registers its own cleanup.
type Factory func(t *testing.T) sharelink.MetadataStore

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// NewRecord returns a FileRecord for ownerID uploaded at base+offset.
func NewRecord(ownerID string, offset time.Duration) sharelink.FileRecord {
	id := uuid.New().String()
	return sharelink.FileRecord{
		ContentID:  id,
		OwnerID:    ownerID,
		Filename:   "file-" + id[:8] + ".txt",
		Locator:    ownerID + "/" + id + ".txt",
		SizeBytes:  42,
		Etag:       "etag-" + id[:8],
		UploadedAt: base.Add(offset),
	}
}

// Run runs the full metadata store suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("PutFile and GetFile", func(t *testing.T) { testPutGet(t, newStore) })
	t.Run("PutFile duplicate", func(t *testing.T) { testDuplicate(t, newStore) })
	t.Run("GetFile not found", func(t *testing.T) { testNotFound(t, newStore) })
	t.Run("ListFiles order", func(t *testing.T) { testListOrder(t, newStore) })
	t.Run("ListFiles pagination", func(t *testing.T) { testListPagination(t, newStore) })
	t.Run("ListFiles ties", func(t *testing.T) { testListTies(t, newStore) })
	t.Run("ListFiles invalid cursor", func(t *testing.T) { testListInvalidCursor(t, newStore) })
	t.Run("LinkAudit", func(t *testing.T) { testLinkAudit(t, newStore) })
}

func testPutGet(t *testing.T, newStore Factory) {
	store := newStore(t)
	ctx := context.Background()

	record := NewRecord("alice", 0)
	record.UploadedAt = record.UploadedAt.Add(123456 * time.Microsecond)

	stored, err := store.PutFile(ctx, record)
	require.NoError(t, err)
	assertSameRecord(t, record, stored)

	got, err := store.GetFile(ctx, record.ContentID)
	require.NoError(t, err)
	assertSameRecord(t, record, got)
}

func testDuplicate(t *testing.T, newStore Factory) {
	store := newStore(t)
	ctx := context.Background()

	record := NewRecord("alice", 0)
	_, err := store.PutFile(ctx, record)
	require.NoError(t, err)

	again := record
	again.OwnerID = "mallory"
	_, err = store.PutFile(ctx, again)
	assert.ErrorIs(t, err, sharelink.ErrDuplicateID)

	got, err := store.GetFile(ctx, record.ContentID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID, "a duplicate must not overwrite the original record")
}

func testNotFound(t *testing.T, newStore Factory) {
	store := newStore(t)

	_, err := store.GetFile(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, sharelink.ErrNotFound)

	_, err = store.GetFile(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, sharelink.ErrNotFound)
}

func testListOrder(t *testing.T, newStore Factory) {
	store := newStore(t)
	ctx := context.Background()

	var want []string
	for i := range 5 {
		r := NewRecord("alice", time.Duration(i)*time.Minute)
		_, err := store.PutFile(ctx, r)
		require.NoError(t, err)
		want = append([]string{r.ContentID}, want...)
	}

	_, err := store.PutFile(ctx, NewRecord("bob", time.Hour))
	require.NoError(t, err)

	result, err := store.ListFiles(ctx, "alice", sharelink.ListQuery{Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, result.NextCursor)
	assert.Equal(t, want, contentIDs(result.Items), "most recent upload first")

	empty, err := store.ListFiles(ctx, "nobody", sharelink.ListQuery{Limit: 100})
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func testListPagination(t *testing.T, newStore Factory) {
	store := newStore(t)
	ctx := context.Background()

	var all []string
	for i := range 7 {
		r := NewRecord("carol", time.Duration(i)*time.Second)
		_, err := store.PutFile(ctx, r)
		require.NoError(t, err)
		all = append([]string{r.ContentID}, all...)
	}

	var got []string
	cursor := ""
	pages := 0
	for {
		result, err := store.ListFiles(ctx, "carol", sharelink.ListQuery{Limit: 3, Cursor: cursor})
		require.NoError(t, err)
		got = append(got, contentIDs(result.Items)...)
		pages++
		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
		require.Less(t, pages, 10, "pagination does not terminate")
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, all, got)
}

func testListTies(t *testing.T, newStore Factory) {
	store := newStore(t)
	ctx := context.Background()

	ids := map[string]bool{}
	for range 4 {
		r := NewRecord("dave", 0)
		_, err := store.PutFile(ctx, r)
		require.NoError(t, err)
		ids[r.ContentID] = true
	}

	first, err := store.ListFiles(ctx, "dave", sharelink.ListQuery{Limit: 2})
	require.NoError(t, err)
	require.NotEmpty(t, first.NextCursor)

	second, err := store.ListFiles(ctx, "dave", sharelink.ListQuery{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Empty(t, second.NextCursor)

	seen := append(contentIDs(first.Items), contentIDs(second.Items)...)
	require.Len(t, seen, 4)
	for _, id := range seen {
		assert.True(t, ids[id], "unexpected id %s", id)
		delete(ids, id)
	}
	assert.Empty(t, ids, "every record must appear exactly once")
	assert.Greater(t, seen[0], seen[1], "ties are broken by content id, descending")
}

func testListInvalidCursor(t *testing.T, newStore Factory) {
	store := newStore(t)

	_, err := store.ListFiles(context.Background(), "alice", sharelink.ListQuery{Limit: 10, Cursor: "%%%"})
	assert.ErrorIs(t, err, sharelink.ErrInvalidRequest)
}

func testLinkAudit(t *testing.T, newStore Factory) {
	store := newStore(t)
	ctx := context.Background()

	record := NewRecord("alice", 0)
	_, err := store.PutFile(ctx, record)
	require.NoError(t, err)

	for i := range 3 {
		err := store.AppendLinkAudit(ctx, sharelink.LinkAuditEvent{
			ContentID:   record.ContentID,
			OwnerID:     "alice",
			TTLSeconds:  int64(60 * (i + 1)),
			GeneratedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err, fmt.Sprintf("append %d", i))
	}

	events, err := store.ListLinkAudit(ctx, record.ContentID)
	require.NoError(t, err)
	require.Len(t, events, 3)

	for i, e := range events {
		assert.Equal(t, record.ContentID, e.ContentID)
		assert.Equal(t, "alice", e.OwnerID)
		assert.Equal(t, int64(60*(i+1)), e.TTLSeconds, "events are returned oldest first")
		assert.True(t, base.Add(time.Duration(i)*time.Second).Equal(e.GeneratedAt))
	}

	none, err := store.ListLinkAudit(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func assertSameRecord(t *testing.T, want, got sharelink.FileRecord) {
	t.Helper()

	assert.Equal(t, want.ContentID, got.ContentID)
	assert.Equal(t, want.OwnerID, got.OwnerID)
	assert.Equal(t, want.Filename, got.Filename)
	assert.Equal(t, want.Locator, got.Locator)
	assert.Equal(t, want.SizeBytes, got.SizeBytes)
	assert.Equal(t, want.Etag, got.Etag)
	assert.True(t, want.UploadedAt.Equal(got.UploadedAt),
		"uploaded_at mismatch: expected %v, got %v", want.UploadedAt, got.UploadedAt)
}

func contentIDs(items []sharelink.FileRecord) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ContentID)
	}
	return ids
}
