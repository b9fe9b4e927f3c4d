// Package snapshot holds the immutable, normalized view of the store that
// every aggregation reads from, and reloads it when the store changes.
package snapshot

import (
	"sync"
	"time"

	"fintrack/internal/core"
)

// Snapshot is replaced wholesale; callers must not mutate its slices.
type Snapshot struct {
	Version      uint64
	LoadedAt     time.Time
	Transactions []core.Transaction
	Goals        []core.Goal
	Config       core.AppConfig
}

// Listener is called after a new snapshot is published.
type Listener func(Snapshot)

// Hub keeps the current snapshot and fans out replacements.
type Hub struct {
	mu        sync.RWMutex
	current   Snapshot
	listeners map[int]Listener
	nextID    int
}

func NewHub() *Hub {
	return &Hub{
		current:   Snapshot{Config: core.DefaultAppConfig()},
		listeners: make(map[int]Listener),
	}
}

func (h *Hub) Current() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers l and returns a function that removes it.
func (h *Hub) Subscribe(l Listener) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = l
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Publish stamps s with the next version, makes it current and notifies
// listeners outside the lock.
func (h *Hub) Publish(s Snapshot) Snapshot {
	h.mu.Lock()
	s.Version = h.current.Version + 1
	h.current = s
	listeners := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		listeners = append(listeners, l)
	}
	h.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
	return s
}
