package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/docsonar/docsonar/pkg/types"
)

// CacheConfig configures the on-disk record cache.
type CacheConfig struct {
	Dir string
	TTL time.Duration
}

// CachedAdapter decorates an Adapter with a badger-backed cache for GetByID.
// The graph fusion source resolves page ids one at a time, so repeated
// queries over a warm graph hit the same handful of records; caching them
// keeps that resolution off the network. Search calls pass through
// uncached: ranked lists are query-shaped and churn too much to be worth
// storing.
type CachedAdapter struct {
	inner Adapter
	db    *badger.DB
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedAdapter opens (or creates) the cache at cfg.Dir.
func NewCachedAdapter(inner Adapter, cfg CacheConfig, log *slog.Logger) (*CachedAdapter, error) {
	if log == nil {
		log = slog.Default()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open record cache: %w", err)
	}

	return &CachedAdapter{
		inner: inner,
		db:    db,
		ttl:   ttl,
		log:   log,
	}, nil
}

// Search delegates to the wrapped adapter.
func (c *CachedAdapter) Search(ctx context.Context, query string, topK int, mode types.SearchMode) ([]types.DocumentRecord, error) {
	return c.inner.Search(ctx, query, topK, mode)
}

// GetByID serves from the cache when possible; misses fall through to the
// wrapped adapter and are stored with the configured TTL. Cache failures
// only log: the cache must never make a lookup worse than no cache.
func (c *CachedAdapter) GetByID(ctx context.Context, id string) (*types.DocumentRecord, error) {
	if id == "" {
		return nil, types.ErrEmptyDocumentID
	}

	if record, ok := c.get(id); ok {
		return record, nil
	}

	record, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record != nil {
		c.put(id, record)
	}
	return record, nil
}

// Close releases the underlying badger database.
func (c *CachedAdapter) Close() error {
	return c.db.Close()
}

func (c *CachedAdapter) get(id string) (*types.DocumentRecord, bool) {
	var record types.DocumentRecord
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &record); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		c.log.Warn("record cache read failed", "id", id, "error", err)
	}
	return &record, found
}

func (c *CachedAdapter) put(id string, record *types.DocumentRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(id), payload).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.log.Warn("record cache write failed", "id", id, "error", err)
	}
}
