package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

var clock = core.FixedClock{T: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	recs := map[string]core.RawRecord{
		"salary": {"title": "Salary", "amount": "5000", "type": "credit", "currency": "COP", "context": "personal", "card": "Bank", "date": "2025-03-01"},
		"rent":   {"title": "Rent", "amount": 2000.0, "type": "debit", "currency": "COP", "context": "personal", "card": "Bank", "date": "2025-03-02"},
		"ads":    {"title": "Ads", "amount": 10.0, "type": "debit", "currency": "USD", "context": "business", "card": "Corp", "date": "2025-03-03"},
	}
	for id, rec := range recs {
		if err := s.PutTransaction(ctx, id, rec); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := s.PutGoal(ctx, "g1", core.RawRecord{"name": "Buffer", "targetAmount": 10000.0, "linkedAccount": "Bank", "context": "personal"}); err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	return s
}

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	if h.Current().Version != 0 || h.Current().Config.PrimaryCurrency() != "COP" {
		t.Fatalf("initial snapshot: %+v", h.Current())
	}

	var got []uint64
	unsubscribe := h.Subscribe(func(s Snapshot) { got = append(got, s.Version) })
	h.Publish(Snapshot{})
	h.Publish(Snapshot{})
	unsubscribe()
	unsubscribe()
	h.Publish(Snapshot{})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("notifications = %v", got)
	}
	if h.Current().Version != 3 {
		t.Fatalf("version = %d, want 3", h.Current().Version)
	}
}

func TestLoaderRefreshNormalizesAndSeedsConfig(t *testing.T) {
	ctx := context.Background()
	empty := &noConfig{Store: seeded(t)}

	l := NewLoader(empty, NewHub(), clock)
	s, err := l.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if s.Version != 1 || len(s.Transactions) != 3 || len(s.Goals) != 1 || !s.LoadedAt.Equal(clock.T) {
		t.Fatalf("snapshot: %+v", s)
	}
	if !empty.wrote {
		t.Fatal("default config should be written when missing")
	}
	if s.Config.PrimaryCurrency() != "COP" {
		t.Fatalf("config: %+v", s.Config)
	}
	for _, tx := range s.Transactions {
		if tx.ID == "salary" && tx.Amount != 5000 {
			t.Fatalf("string amount not coerced: %+v", tx)
		}
	}
}

func TestLoaderRefreshConcurrent(t *testing.T) {
	l := NewLoader(seeded(t), NewHub(), clock)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Refresh(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("refresh: %v", err)
	}
	if v := l.Hub().Current().Version; v < 1 || v > 8 {
		t.Fatalf("version = %d", v)
	}
}

func TestLoaderRefreshPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	l := NewLoader(&failing{Store: seeded(t), err: boom}, NewHub(), clock)
	if _, err := l.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if l.Hub().Current().Version != 0 {
		t.Fatal("failed refresh must not publish")
	}
}

func TestViewsPurgeOnPublish(t *testing.T) {
	src := seeded(t)
	hub := NewHub()
	l := NewLoader(src, hub, clock)
	views := NewViews(hub, analytics.NewEngine(analytics.NewConverter(nil), clock), time.Minute)
	defer views.Close()

	if _, err := l.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, s := views.Balances()
	if s.Version != 1 || b.Personal["COP"] != 3000 || b.Business["USD"] != -10 {
		t.Fatalf("balances: %+v", b)
	}
	progress := views.GoalProgress(core.PersonalContext)
	if len(progress) != 1 || progress[0].Saved != 5000 || progress[0].Percentage != 50 {
		t.Fatalf("goal progress: %+v", progress)
	}
	if len(views.GoalProgress(core.BusinessContext)) != 0 {
		t.Fatal("business view should hide personal goals")
	}

	_ = src.PutTransaction(context.Background(), "bonus", core.RawRecord{"title": "Bonus", "amount": 1000.0, "type": "credit", "currency": "COP", "context": "personal", "card": "Bank", "date": "2025-03-04"})
	if _, err := l.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, s = views.Balances()
	if s.Version != 2 || b.Personal["COP"] != 4000 {
		t.Fatalf("stale balances after refresh: %+v", b)
	}
	if r := views.Insights(core.Unified); r.Balances.NetWorth["COP"] != 4000 {
		t.Fatalf("insights: %+v", r.Balances)
	}
}

type movingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *movingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *movingClock) set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func TestViewsInsightsFollowMonthChange(t *testing.T) {
	src := seeded(t)
	hub := NewHub()
	mc := &movingClock{t: time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)}
	l := NewLoader(src, hub, clock)
	views := NewViews(hub, analytics.NewEngine(analytics.NewConverter(nil), mc), time.Hour)
	defer views.Close()

	if _, err := l.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r := views.Insights(core.Unified); r.Month != "2025-03" {
		t.Fatalf("month before rollover = %s", r.Month)
	}

	mc.set(time.Date(2025, 4, 1, 0, 1, 0, 0, time.UTC))
	r := views.Insights(core.Unified)
	if r.Month != "2025-04" {
		t.Fatalf("cached report survived the month change: %s", r.Month)
	}
	if last := r.CashflowHistory[len(r.CashflowHistory)-1]; last.Month != "2025-04" || last.Income != 0 {
		t.Fatalf("cashflow window not moved: %+v", last)
	}
}

type noConfig struct {
	*memory.Store
	wrote bool
}

func (n *noConfig) GetConfig(ctx context.Context) (map[string]any, bool, error) {
	if !n.wrote {
		return nil, false, nil
	}
	return n.Store.GetConfig(ctx)
}

func (n *noConfig) PutConfig(ctx context.Context, doc map[string]any) error {
	n.wrote = true
	return n.Store.PutConfig(ctx, doc)
}

type failing struct {
	*memory.Store
	err error
}

func (f *failing) ListGoals(context.Context) ([]core.RawRecord, error) { return nil, f.err }
