package testsupport

import (
	"path/filepath"
	"testing"

	"tvcatalog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Throttling is disabled and backoff shortened so tests run fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.TVMaze.MinIntervalMS = 0
	cfgVal.TVMaze.BackoffStepMS = 1
	cfgVal.TVMaze.RequestTimeout = 5
	cfgVal.TMDB.APIKey = ""
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTVMaze points the primary provider at baseURL.
func WithTVMaze(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TVMaze.BaseURL = baseURL
	}
}

// WithTMDB points the secondary provider at baseURL with key.
func WithTMDB(baseURL, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = baseURL
		b.cfg.TMDB.APIKey = key
	}
}

// WithWindow sets the trailing window size.
func WithWindow(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.WindowDays = days
	}
}

// WithDiscovery edits the discovery section.
func WithDiscovery(edit func(*config.Discovery)) ConfigOption {
	return func(b *configBuilder) {
		edit(&b.cfg.Discovery)
	}
}

// WithFilters edits the filters section.
func WithFilters(edit func(*config.Filters)) ConfigOption {
	return func(b *configBuilder) {
		edit(&b.cfg.Filters)
	}
}
