// Package snapshot persists insight cache contents through the KV store so
// long-lived deployments keep learned insights across restarts. Write-behind
// only: the engine's hot path never touches it.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fullscreen-triangle/hugure/internal/db"
	"github.com/fullscreen-triangle/hugure/internal/repository/insightcache"
)

// store is the consumer interface for snapshot operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store saves and loads insight cache snapshots as one JSON blob.
type Store struct {
	store store
	key   string
	ttl   time.Duration
}

// New creates a snapshot store. keyPrefix namespaces the snapshot key; ttl
// bounds how stale a restored snapshot may be (recommended: a few days).
func New(s store, keyPrefix string, ttl time.Duration) *Store {
	return &Store{
		store: s,
		key:   keyPrefix + "insights:snapshot",
		ttl:   ttl,
	}
}

// Save persists the records, replacing any previous snapshot.
func (s *Store) Save(ctx context.Context, records []insightcache.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("snapshot marshal: %w", err)
	}
	if err := s.store.SetWithTTL(ctx, s.key, data, s.ttl); err != nil {
		return fmt.Errorf("snapshot SET %s: %w", s.key, err)
	}
	return nil
}

// Load returns the last saved records. Returns an empty slice when no
// snapshot exists.
func (s *Store) Load(ctx context.Context) ([]insightcache.Record, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot GET %s: %w", s.key, err)
	}

	var records []insightcache.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("snapshot unmarshal: %w", err)
	}
	return records, nil
}
