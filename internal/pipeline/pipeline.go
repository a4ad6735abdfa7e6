package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"tvcatalog/internal/catalog"
	"tvcatalog/internal/classify"
	"tvcatalog/internal/config"
	"tvcatalog/internal/fetch"
	"tvcatalog/internal/history"
	"tvcatalog/internal/logging"
	"tvcatalog/internal/publish"
	"tvcatalog/internal/tmdb"
	"tvcatalog/internal/tvmaze"
)

// Publisher persists a build result.
type Publisher interface {
	Publish(ctx context.Context, result catalog.Result, ts time.Time) (publish.Report, error)
}

// Recorder keeps the build ledger. Implemented by *history.Store.
type Recorder interface {
	Begin(ctx context.Context, runID, buildDate string, startedAt time.Time) error
	Finish(ctx context.Context, runID string, outcome history.Outcome) error
}

// Summary describes a completed build.
type Summary struct {
	RunID       string
	Today       string
	Shows       int
	Episodes    int
	Registered  int
	Omitted     int
	Excluded    int
	ExcludedBy  map[string]int
	Discovery   DiscoverStats
	Fallback    ResolveStats
	Fetch       fetch.Stats
	CatalogPath string
	Duration    time.Duration
}

// Pipeline wires the build components together.
type Pipeline struct {
	cfg        *config.Config
	fetcher    *fetch.Fetcher
	tvmaze     *tvmaze.Client
	finder     tmdb.Finder
	finderSet  bool
	classifier *classify.Classifier
	publisher  Publisher
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
	newRunID   func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFetcher replaces the fetcher built from configuration.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.fetcher = f
		}
	}
}

// WithFinder replaces the secondary provider client. Passing nil disables it.
func WithFinder(finder tmdb.Finder) Option {
	return func(p *Pipeline) {
		p.finder = finder
		p.finderSet = true
	}
}

// WithPublisher replaces the publisher built from configuration.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) {
		if pub != nil {
			p.publisher = pub
		}
	}
}

// WithRecorder records each run in the build ledger.
func WithRecorder(rec Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = rec
	}
}

// WithClock overrides the wall clock used for run timing and the index
// timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(next func() string) Option {
	return func(p *Pipeline) {
		if next != nil {
			p.newRunID = next
		}
	}
}

// NewFetcher builds the shared fetcher described by cfg.
func NewFetcher(cfg *config.Config, logger *slog.Logger) *fetch.Fetcher {
	opts := []fetch.Option{
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		fetch.WithUserAgent(cfg.TVMaze.UserAgent),
		fetch.WithRetry(cfg.TVMaze.MaxRetries, cfg.BackoffStep()),
		fetch.WithLogger(logger),
	}
	if host := tvmaze.Host(cfg.TVMaze.BaseURL); host != "" {
		opts = append(opts, fetch.WithThrottle(host, cfg.MinInterval()))
	}
	return fetch.New(opts...)
}

// New builds a pipeline from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		classifier: classify.New(classify.Options{
			AllowedCountries:         cfg.Filters.AllowedCountries,
			Conservative:             cfg.Filters.Conservative,
			BlockedNetworks:          cfg.Filters.BlockedNetworks,
			BlockedNetworkSubstrings: cfg.Filters.BlockedNetworkSubstrings,
			ExtraNewsKeywords:        cfg.Filters.ExtraNewsKeywords,
			ExtraSportsKeywords:      cfg.Filters.ExtraSportsKeywords,
		}),
		now:      time.Now,
		newRunID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.fetcher == nil {
		p.fetcher = NewFetcher(cfg, logger)
	}
	p.tvmaze = tvmaze.New(p.fetcher, cfg.TVMaze.BaseURL,
		tvmaze.WithScheduleCountry(cfg.TVMaze.ScheduleCountry),
		tvmaze.WithLogger(logger),
	)
	if !p.finderSet && cfg.TMDBEnabled() {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, tmdb.WithFetcher(p.fetcher))
		if err != nil {
			return nil, fmt.Errorf("tmdb client: %w", err)
		}
		p.finder = client
	}
	if p.publisher == nil {
		p.publisher = publish.New(cfg.Paths.OutputDir, cfg.Catalog.ID,
			publish.WithPrune(cfg.Output.PruneStaleMeta),
			publish.WithLogger(logger),
		)
	}
	return p, nil
}

// Run executes one build anchored on today's calendar date.
func (p *Pipeline) Run(ctx context.Context, today time.Time) (summary Summary, err error) {
	started := p.now()
	runID := p.newRunID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	window := catalog.NewWindow(today, p.cfg.Catalog.WindowDays)

	summary = Summary{RunID: runID, Today: window.End}
	p.begin(ctx, logger, runID, window.End, started)

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("build panicked",
				logging.Any("panic", recovered),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldEventType, "build_panic"),
			)
			err = fmt.Errorf("build panicked: %v", recovered)
		} else if err != nil {
			logging.ErrorWithContext(logger, "build failed", "build_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "previous catalog output is left in place"),
			)
		}
		summary.Fetch = p.fetcher.Stats()
		summary.Duration = p.now().Sub(started)
		p.finish(ctx, logger, summary, err)
	}()

	logger.Info("build started",
		logging.String("today", window.End),
		logging.String("window_start", window.Start),
		logging.Int("window_days", window.Len()),
		logging.Int("concurrency", p.cfg.Discovery.Concurrency),
		logging.String("tvmaze", p.tvmaze.BaseURL()),
		logging.Duration("min_interval", p.minInterval()),
		logging.Bool("tmdb", p.finder != nil),
		logging.String(logging.FieldEventType, "build_started"),
	)

	registry := catalog.NewRegistry()
	screen := newScreen(p.classifier, logger)

	discoverer := newDiscoverer(p.tvmaze, screen, registry, p.cfg.Discovery.Concurrency, logger)
	summary.Discovery = discoverer.Run(ctx, window)

	resolver := newResolver(p.tvmaze, p.finder, screen, registry, ResolverOptions{
		Concurrency:    p.cfg.Discovery.Concurrency,
		EpisodesByDate: p.cfg.Discovery.EpisodesByDate,
		CrossProvider:  p.cfg.Discovery.CrossProvider,
		Updates:        p.cfg.Discovery.Updates,
		TMDBDiscover:   p.cfg.Discovery.TMDBDiscover,
		TMDBMaxPages:   p.cfg.Discovery.TMDBMaxPages,
		MaxCandidates:  p.cfg.Discovery.MaxCandidates,
	}, logger)
	summary.Fallback = resolver.Run(ctx, window)
	summary.Registered = registry.Len()
	summary.Excluded = screen.count()
	summary.ExcludedBy = screen.byRule()

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("build cancelled: %w", err)
	}

	result, err := catalog.NewBuilder(p.cfg.Catalog.WindowDays, logger).Build(registry, today)
	if err != nil {
		return summary, fmt.Errorf("build records: %w", err)
	}
	summary.Shows = len(result.Catalog)
	summary.Episodes = result.Episodes
	summary.Omitted = result.Omitted

	report, err := p.publisher.Publish(ctx, result, p.now())
	if err != nil {
		return summary, fmt.Errorf("publish: %w", err)
	}
	summary.CatalogPath = report.CatalogPath

	logger.Info("build complete",
		logging.Int("shows", summary.Shows),
		logging.Int("episodes", summary.Episodes),
		logging.Int("excluded", summary.Excluded),
		logging.Int("omitted", summary.Omitted),
		logging.String("catalog", summary.CatalogPath),
		logging.String(logging.FieldEventType, "build_complete"),
	)
	return summary, nil
}

// minInterval reports the throttle applied to the primary provider host.
func (p *Pipeline) minInterval() time.Duration {
	if gate, ok := p.fetcher.Gate(tvmaze.Host(p.tvmaze.BaseURL())); ok {
		return gate.Interval()
	}
	return 0
}

func (p *Pipeline) begin(ctx context.Context, logger *slog.Logger, runID, buildDate string, started time.Time) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Begin(ctx, runID, buildDate, started); err != nil {
		logging.WarnWithContext(logger, "failed to record build start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions or delete the history database"),
			logging.String(logging.FieldImpact, "build history incomplete"),
		)
	}
}

func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, summary Summary, runErr error) {
	if p.recorder == nil {
		return
	}
	outcome := history.Outcome{
		FinishedAt:  p.now(),
		Status:      history.StatusSucceeded,
		Shows:       summary.Shows,
		Episodes:    summary.Episodes,
		Excluded:    summary.Excluded,
		Requests:    summary.Fetch.Requests,
		RateLimited: summary.Fetch.RateLimited,
		Failures:    summary.Fetch.Failures,
	}
	if runErr != nil {
		outcome.Status = history.StatusFailed
		outcome.Error = runErr.Error()
	}
	if err := p.recorder.Finish(context.WithoutCancel(ctx), summary.RunID, outcome); err != nil {
		logging.WarnWithContext(logger, "failed to record build outcome", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "build history incomplete"),
		)
	}
}
