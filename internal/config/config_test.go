package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tvcatalog/internal/config"
)

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "tvcatalog")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if !cfg.TMDBEnabled() {
		t.Fatal("expected TMDB to be enabled when a key is present")
	}
	if cfg.Catalog.WindowDays != 10 {
		t.Fatalf("expected 10 day window, got %d", cfg.Catalog.WindowDays)
	}
	if cfg.MinInterval() != 150*time.Millisecond {
		t.Fatalf("unexpected min interval: %v", cfg.MinInterval())
	}
	if cfg.TVMaze.MaxRetries != 5 {
		t.Fatalf("unexpected max retries: %d", cfg.TVMaze.MaxRetries)
	}
	if cfg.BackoffStep() != 500*time.Millisecond {
		t.Fatalf("unexpected backoff step: %v", cfg.BackoffStep())
	}
	want := []string{"US", "GB", "CA", "AU", "IE", "NZ"}
	if strings.Join(cfg.Filters.AllowedCountries, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected allowed countries: %v", cfg.Filters.AllowedCountries)
	}
	if cfg.Filters.Conservative {
		t.Fatal("expected permissive geography policy by default")
	}
	if !cfg.Discovery.EpisodesByDate || !cfg.Discovery.CrossProvider {
		t.Fatal("expected episodes-by-date and cross-provider passes enabled by default")
	}
	if cfg.Discovery.Updates || cfg.Discovery.TMDBDiscover {
		t.Fatal("expected broader discovery passes disabled by default")
	}
	if cfg.MetaDir() != filepath.Join(cfg.Paths.OutputDir, "meta", "series") {
		t.Fatalf("unexpected meta dir: %q", cfg.MetaDir())
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tvcatalog.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		TMDB struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"tmdb"`
		Catalog struct {
			WindowDays int `toml:"window_days"`
		} `toml:"catalog"`
		Filters struct {
			AllowedCountries []string `toml:"allowed_countries"`
			Conservative     bool     `toml:"conservative"`
		} `toml:"filters"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb/"
	custom.Catalog.WindowDays = 7
	custom.Filters.AllowedCountries = []string{"us", " gb ", "US"}
	custom.Filters.Conservative = true
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.TMDB.APIKey != "abc123" {
		t.Fatalf("expected TMDB key from file, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.Catalog.WindowDays != 7 {
		t.Fatalf("expected window 7, got %d", cfg.Catalog.WindowDays)
	}
	if strings.Join(cfg.Filters.AllowedCountries, ",") != "US,GB" {
		t.Fatalf("expected normalized countries, got %v", cfg.Filters.AllowedCountries)
	}
	if !cfg.Filters.Conservative {
		t.Fatal("expected conservative policy from file")
	}
	if cfg.Paths.OutputDir != filepath.Join(tempDir, "out") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.OutputDir); err != nil || !info.IsDir() {
		t.Fatalf("expected output dir to exist: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Catalog.ID != "tvmaze_weekly_schedule" {
		t.Fatalf("unexpected sample catalog id: %q", cfg.Catalog.ID)
	}
	if cfg.TVMaze.MaxRetries != 5 {
		t.Fatalf("unexpected sample retries: %d", cfg.TVMaze.MaxRetries)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.WindowDays = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero window")
	}

	cfg = config.Default()
	cfg.Catalog.ID = "../escape"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for catalog id with separators")
	}

	cfg = config.Default()
	cfg.TVMaze.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative tvmaze url")
	}

	cfg = config.Default()
	cfg.Discovery.TMDBDiscover = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when tmdb discovery is enabled without a key")
	}

	cfg = config.Default()
	cfg.Filters.AllowedCountries = []string{"USA"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for three-letter country")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
