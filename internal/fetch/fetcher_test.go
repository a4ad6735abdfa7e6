package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tvcatalog/internal/fetch"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

func TestJSONDecodesSuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "tvcatalog/test" {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"name":"Show"}`))
	}))
	defer srv.Close()

	f := fetch.New(fetch.WithUserAgent("tvcatalog/test"))
	var payload struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if !f.JSON(context.Background(), srv.URL+"/shows/42", &payload) {
		t.Fatal("expected fetch to succeed")
	}
	if payload.ID != 42 || payload.Name != "Show" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if stats := f.Stats(); stats.Requests != 1 || stats.Failures != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestNonSuccessStatusIsTerminal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	clock := newFakeClock()
	f := fetch.New(fetch.WithClock(clock.Now, clock.Sleep))
	var payload map[string]any
	if f.JSON(context.Background(), srv.URL, &payload) {
		t.Fatal("expected 404 to degrade to false")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", hits.Load())
	}
	if len(clock.Sleeps()) != 0 {
		t.Fatalf("expected no backoff sleeps, got %v", clock.Sleeps())
	}
}

func TestRateLimitRetriesWithLinearBackoff(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	clock := newFakeClock()
	f := fetch.New(fetch.WithClock(clock.Now, clock.Sleep), fetch.WithRetry(5, 500*time.Millisecond))
	var payload []int
	if !f.JSON(context.Background(), srv.URL, &payload) {
		t.Fatal("expected fetch to succeed after retries")
	}
	if len(payload) != 3 {
		t.Fatalf("unexpected payload: %v", payload)
	}
	want := []time.Duration{500 * time.Millisecond, time.Second}
	got := clock.Sleeps()
	if len(got) != len(want) {
		t.Fatalf("expected sleeps %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sleeps %v, got %v", want, got)
		}
	}
	if stats := f.Stats(); stats.RateLimited != 2 || stats.Requests != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRateLimitBudgetExhaustedReturnsFalse(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	clock := newFakeClock()
	f := fetch.New(fetch.WithClock(clock.Now, clock.Sleep), fetch.WithRetry(3, 100*time.Millisecond))
	if _, ok := f.Get(context.Background(), srv.URL); ok {
		t.Fatal("expected exhausted retries to degrade to false")
	}
	if hits.Load() != 4 {
		t.Fatalf("expected 1 attempt + 3 retries, got %d", hits.Load())
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	got := clock.Sleeps()
	if len(got) != len(want) {
		t.Fatalf("expected sleeps %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sleeps %v, got %v", want, got)
		}
	}
}

func TestMalformedJSONReturnsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))
	defer srv.Close()

	f := fetch.New()
	var payload map[string]any
	if f.JSON(context.Background(), srv.URL, &payload) {
		t.Fatal("expected malformed body to degrade to false")
	}
	if f.Stats().Failures != 1 {
		t.Fatalf("expected failure counted, got %+v", f.Stats())
	}
}

func TestNetworkErrorReturnsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL
	srv.Close()

	f := fetch.New()
	if _, ok := f.Get(context.Background(), target); ok {
		t.Fatal("expected connection failure to degrade to false")
	}
}

func TestThrottledHostEnforcesMinimumInterval(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	const interval = 20 * time.Millisecond
	f := fetch.New(fetch.WithThrottle("127.0.0.1", interval))

	start := time.Now()
	for i := 0; i < 10; i++ {
		if _, ok := f.Get(context.Background(), srv.URL); !ok {
			t.Fatalf("call %d failed", i)
		}
	}
	elapsed := time.Since(start)
	if elapsed < 9*interval {
		t.Fatalf("expected at least %v for 10 calls, took %v", 9*interval, elapsed)
	}
}

func TestUnthrottledHostIsNotGated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	clock := newFakeClock()
	f := fetch.New(fetch.WithClock(clock.Now, clock.Sleep), fetch.WithThrottle("api.tvmaze.com", time.Second))
	for i := 0; i < 3; i++ {
		if _, ok := f.Get(context.Background(), srv.URL); !ok {
			t.Fatalf("call %d failed", i)
		}
	}
	if len(clock.Sleeps()) != 0 {
		t.Fatalf("expected no throttling for other hosts, got %v", clock.Sleeps())
	}
}

func TestIndependentFetchersHaveIndependentGates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	clockA := newFakeClock()
	clockB := newFakeClock()
	a := fetch.New(fetch.WithClock(clockA.Now, clockA.Sleep), fetch.WithThrottle("127.0.0.1", time.Second))
	b := fetch.New(fetch.WithClock(clockB.Now, clockB.Sleep), fetch.WithThrottle("127.0.0.1", time.Second))

	for i := 0; i < 2; i++ {
		if _, ok := a.Get(context.Background(), srv.URL); !ok {
			t.Fatal("fetcher a failed")
		}
	}
	if _, ok := b.Get(context.Background(), srv.URL); !ok {
		t.Fatal("fetcher b failed")
	}
	if got := clockA.Sleeps(); len(got) != 1 || got[0] != time.Second {
		t.Fatalf("expected fetcher a to wait one interval, got %v", got)
	}
	if got := clockB.Sleeps(); len(got) != 0 {
		t.Fatalf("expected fetcher b to be unaffected by a, got %v", got)
	}
}

func TestCancelledContextDuringBackoffReturnsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	f := fetch.New(fetch.WithRetry(5, time.Hour), fetch.WithClock(nil, func(ctx context.Context, d time.Duration) error {
		cancel()
		return fetch.SleepWithContext(ctx, d)
	}))
	if _, ok := f.Get(ctx, srv.URL); ok {
		t.Fatal("expected cancellation to degrade to false")
	}
}
