// Package ratelimit is a fixed-window per-client request limiter.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const window = time.Minute

type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 120, CleanupInterval: 5 * time.Minute}
}

type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	now     func() time.Time
	hits    int64

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type client struct {
	windowStart time.Time
	lastSeen    time.Time
	requests    int
}

// NewLimiter starts a background sweep of idle clients; call Stop to end it.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	l := &Limiter{
		clients:         make(map[string]*client),
		limit:           cfg.RequestsPerMinute,
		now:             time.Now,
		cleanupInterval: cfg.CleanupInterval,
		stop:            make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow counts a request from key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok || now.Sub(c.windowStart) >= window {
		l.clients[key] = &client{windowStart: now, lastSeen: now, requests: 1}
		return true
	}
	c.requests++
	c.lastSeen = now
	if c.requests > l.limit {
		atomic.AddInt64(&l.hits, 1)
		return false
	}
	return true
}

// RetryAfter is the time until key's window resets.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[key]
	if !ok {
		return 0
	}
	if d := window - l.now().Sub(c.windowStart); d > 0 {
		return d
	}
	return 0
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops clients idle for more than ten minutes.
func (l *Limiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-10 * time.Minute)
	n := 0
	for k, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, k)
			n++
		}
	}
	return n
}

func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Hits counts rejected requests.
func (l *Limiter) Hits() int64 { return atomic.LoadInt64(&l.hits) }

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware rejects over-limit requests with 429. onLimit may write a
// custom body; Retry-After is always set.
func (l *Limiter) Middleware(extractKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractKey(r)
			if l.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}
			secs := int(l.RetryAfter(key).Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		})
	}
}
