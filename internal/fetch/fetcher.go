package fetch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"tvcatalog/internal/logging"
)

// Defaults mirror the TVMaze guidance the build was tuned against.
const (
	DefaultMaxRetries  = 5
	DefaultBackoffStep = 500 * time.Millisecond
	DefaultTimeout     = 20 * time.Second

	maxBodyBytes = 32 << 20
)

// Stats summarizes the requests a Fetcher has issued.
type Stats struct {
	Requests    int64
	RateLimited int64
	Failures    int64
}

// Fetcher performs soft-failing JSON GETs with per-host throttling.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxRetries  int
	backoffStep time.Duration
	gates       map[string]*Gate
	logger      *slog.Logger
	now         func() time.Time
	sleep       SleepFunc

	requests    atomic.Int64
	rateLimited atomic.Int64
	failures    atomic.Int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = strings.TrimSpace(ua)
	}
}

// WithRetry sets the rate-limit retry budget and the per-attempt backoff step.
func WithRetry(maxRetries int, step time.Duration) Option {
	return func(f *Fetcher) {
		if maxRetries >= 0 {
			f.maxRetries = maxRetries
		}
		if step >= 0 {
			f.backoffStep = step
		}
	}
}

// WithThrottle registers host as rate limited with the given minimum interval.
func WithThrottle(host string, interval time.Duration) Option {
	return func(f *Fetcher) {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			f.gates[host] = NewGate(interval)
		}
	}
}

// WithLogger attaches a logger. Nil keeps the no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logging.NewComponentLogger(logger, "fetch")
		}
	}
}

// WithClock replaces the time source and sleeper, mainly for tests.
func WithClock(now func() time.Time, sleep SleepFunc) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// New constructs a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		backoffStep: DefaultBackoffStep,
		gates:       make(map[string]*Gate),
		logger:      logging.NewNop(),
		now:         time.Now,
		sleep:       SleepWithContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Gate returns the throttle gate registered for host, if any.
func (f *Fetcher) Gate(host string) (*Gate, bool) {
	g, ok := f.gates[strings.ToLower(host)]
	return g, ok
}

// Stats returns a snapshot of request counters.
func (f *Fetcher) Stats() Stats {
	return Stats{
		Requests:    f.requests.Load(),
		RateLimited: f.rateLimited.Load(),
		Failures:    f.failures.Load(),
	}
}

// JSON fetches rawURL and decodes the body into dst. It reports false when
// the request failed for any reason; dst is left in an unspecified state then.
func (f *Fetcher) JSON(ctx context.Context, rawURL string, dst any) bool {
	body, ok := f.Get(ctx, rawURL)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		f.failures.Add(1)
		f.logger.Debug("upstream response not decodable",
			logging.String("url", redact(rawURL)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "fetch_decode_failed"),
		)
		return false
	}
	return true
}

// Get fetches rawURL and returns the response body of a 2xx response.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		f.failures.Add(1)
		return nil, false
	}
	gate := f.gates[strings.ToLower(parsed.Hostname())]

	attempt := 0
	for {
		if gate != nil {
			if err := gate.Wait(ctx, f.now, f.sleep); err != nil {
				f.failures.Add(1)
				return nil, false
			}
		}
		status, body, err := f.do(ctx, rawURL)
		if gate != nil {
			gate.Mark(f.now())
		}
		if err != nil {
			f.failures.Add(1)
			f.logger.Debug("upstream request failed",
				logging.String("url", redact(rawURL)),
				logging.Error(err),
				logging.String(logging.FieldEventType, "fetch_failed"),
			)
			return nil, false
		}

		if status == http.StatusTooManyRequests {
			f.rateLimited.Add(1)
			if attempt >= f.maxRetries {
				f.failures.Add(1)
				logging.WarnWithContext(f.logger, "rate limit retries exhausted", "fetch_rate_limit_exhausted",
					logging.String("url", redact(rawURL)),
					logging.Int("attempts", attempt+1),
					logging.String(logging.FieldErrorHint, "lower discovery.concurrency or raise tvmaze.min_interval_ms"),
					logging.String(logging.FieldImpact, "request treated as empty"),
				)
				return nil, false
			}
			attempt++
			backoff := time.Duration(attempt) * f.backoffStep
			f.logger.Debug("rate limited, retrying",
				logging.String("url", redact(rawURL)),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", f.maxRetries),
				logging.Duration("backoff", backoff),
				logging.String(logging.FieldEventType, "fetch_rate_limited"),
			)
			if err := f.sleep(ctx, backoff); err != nil {
				f.failures.Add(1)
				return nil, false
			}
			continue
		}

		if status < 200 || status > 299 {
			f.failures.Add(1)
			f.logger.Debug("upstream returned non-success status",
				logging.String("url", redact(rawURL)),
				logging.Int("status", status),
				logging.String(logging.FieldEventType, "fetch_status"),
			)
			return nil, false
		}
		return body, true
	}
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (int, []byte, error) {
	f.requests.Add(1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return resp.StatusCode, nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// redact hides credentials passed as query parameters.
func redact(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := parsed.Query()
	changed := false
	for _, key := range []string{"api_key", "apikey", "token"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
