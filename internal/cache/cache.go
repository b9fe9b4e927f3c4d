// Package cache holds the bounded TTL caches used for derived views.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is a string-keyed store of derived values.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Sweeper periodically drops expired entries from registered caches.
type Sweeper struct {
	caches []Cleaner
}

func NewSweeper(caches ...Cleaner) *Sweeper {
	return &Sweeper{caches: caches}
}

func (s *Sweeper) Register(c Cleaner) {
	s.caches = append(s.caches, c)
}

// Sweep runs one pass and returns the number of evicted entries.
func (s *Sweeper) Sweep() int {
	n := 0
	for _, c := range s.caches {
		n += c.CleanExpired()
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.DebugContext(ctx, "Evicted expired cache entries", "count", n)
			}
		}
	}
}
