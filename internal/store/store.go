// Package store persists the set of already-processed filing IDs across
// runs. A filing ID, once added, is only ever removed by FIFO eviction when
// the set exceeds its size bound; a re-appearing evicted filing is treated as
// new, which is accepted behavior. Single-writer: overlapping runs are not
// supported and no locking is implemented.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dartwatch/dartwatch/internal/config"
)

// SeenStore is the dedup set consulted at entry and updated at exit of each
// filing's processing.
type SeenStore interface {
	// Has reports whether the filing ID was processed before.
	Has(ctx context.Context, filingID string) (bool, error)
	// Add marks a filing ID as processed. Adding a present ID is a no-op.
	Add(ctx context.Context, filingID string) error
	// Len returns the number of stored IDs.
	Len(ctx context.Context) (int, error)
	// Compact evicts the oldest entries down to the configured bound and
	// returns how many were removed. Eviction is FIFO by insertion order,
	// not by filing date.
	Compact(ctx context.Context) (int, error)
	// Save flushes state to durable storage. A no-op for database drivers.
	Save(ctx context.Context) error
	Close() error
}

// Open constructs the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (SeenStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "json":
		return OpenJSON(cfg.Path, cfg.MaxSeen)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path, cfg.MaxSeen)
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL, cfg.MaxSeen)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
