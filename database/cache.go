package database

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sagarc03/sharelink"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharelink_metadata_cache_hits_total",
		Help: "File record lookups served from the cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharelink_metadata_cache_misses_total",
		Help: "File record lookups that went to the database.",
	})
)

// CachedStore serves GetFile from an in-memory LRU with a TTL.
// All other methods go straight to the wrapped store. Misses are not cached.
type CachedStore struct {
	sharelink.MetadataStore
	files *expirable.LRU[string, sharelink.FileRecord]
}

// NewCachedStore wraps store with a cache of at most size records, each kept for ttl.
func NewCachedStore(store sharelink.MetadataStore, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		MetadataStore: store,
		files:         expirable.NewLRU[string, sharelink.FileRecord](size, nil, ttl),
	}
}

func (c *CachedStore) PutFile(ctx context.Context, record sharelink.FileRecord) (sharelink.FileRecord, error) {
	stored, err := c.MetadataStore.PutFile(ctx, record)
	if err != nil {
		return sharelink.FileRecord{}, err
	}

	c.files.Add(stored.ContentID, stored)
	return stored, nil
}

func (c *CachedStore) GetFile(ctx context.Context, contentID string) (sharelink.FileRecord, error) {
	if record, ok := c.files.Get(contentID); ok {
		cacheHitsTotal.Inc()
		return record, nil
	}
	cacheMissesTotal.Inc()

	record, err := c.MetadataStore.GetFile(ctx, contentID)
	if err != nil {
		return sharelink.FileRecord{}, err
	}

	c.files.Add(contentID, record)
	return record, nil
}

// Len reports how many records are cached.
func (c *CachedStore) Len() int {
	return c.files.Len()
}
