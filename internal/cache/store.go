package cache

import (
	"context"
	"time"

	"PriceBoard/internal/model"
)

// Entry is one cached fetch outcome.
type Entry struct {
	Result    model.FetchResult `json:"result"`
	FetchedAt time.Time         `json:"fetched_at"`
	TTL       time.Duration     `json:"ttl"`
}

// Live reports whether the entry may still be served at now.
// An entry is stale once now - FetchedAt >= TTL.
func (e Entry) Live(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}

// Store persists entries by request key. Implementations must be safe for
// concurrent use. Get reports found == false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
	Close() error
}
