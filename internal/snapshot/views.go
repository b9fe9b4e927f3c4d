package snapshot

import (
	"fmt"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/finance"
)

const viewCacheSize = 64

// Views memoizes derived views per snapshot version and context selector.
// A new snapshot purges every entry.
type Views struct {
	hub         *Hub
	engine      *analytics.Engine
	balances    *cache.LRUCache[core.Balances]
	insights    *cache.LRUCache[analytics.Report]
	goals       *cache.LRUCache[[]core.GoalProgress]
	unsubscribe func()
}

func NewViews(hub *Hub, engine *analytics.Engine, ttl time.Duration) *Views {
	v := &Views{
		hub:      hub,
		engine:   engine,
		balances: cache.NewLRUCache[core.Balances](viewCacheSize, ttl),
		insights: cache.NewLRUCache[analytics.Report](viewCacheSize, ttl),
		goals:    cache.NewLRUCache[[]core.GoalProgress](viewCacheSize, ttl),
	}
	v.unsubscribe = hub.Subscribe(func(Snapshot) { v.Purge() })
	return v
}

// Cleaners exposes the caches for periodic sweeping.
func (v *Views) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{v.balances, v.insights, v.goals}
}

func (v *Views) Purge() {
	v.balances.Purge()
	v.insights.Purge()
	v.goals.Purge()
}

func (v *Views) Close() { v.unsubscribe() }

func (v *Views) Engine() *analytics.Engine { return v.engine }

func key(s Snapshot, sel core.Selector) string {
	return fmt.Sprintf("%d/%s", s.Version, sel)
}

// Balances aggregates every transaction. The partition by context lives in
// the result, so it does not depend on a selector.
func (v *Views) Balances() (core.Balances, Snapshot) {
	s := v.hub.Current()
	b, _ := v.balances.GetOrCompute(key(s, core.Unified), func() (core.Balances, error) {
		return finance.Aggregate(s.Transactions), nil
	})
	return b, s
}

func (v *Views) Insights(sel core.Selector) analytics.Report {
	s := v.hub.Current()
	// windows move with the month, not only with the snapshot
	k := key(s, sel) + "/" + v.engine.Month().String()
	r, _ := v.insights.GetOrCompute(k, func() (analytics.Report, error) {
		return v.engine.Insights(s.Transactions, sel), nil
	})
	return r
}

// GoalProgress filters goals by owner context; savings count every inflow
// to the linked account.
func (v *Views) GoalProgress(sel core.Selector) []core.GoalProgress {
	s := v.hub.Current()
	p, _ := v.goals.GetOrCompute(key(s, sel), func() ([]core.GoalProgress, error) {
		return finance.ComputeProgress(finance.FilterGoals(s.Goals, sel), s.Transactions), nil
	})
	return p
}
