package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// TVMaze contains configuration for the primary schedule provider.
type TVMaze struct {
	BaseURL         string `toml:"base_url"`
	MinIntervalMS   int    `toml:"min_interval_ms"`
	MaxRetries      int    `toml:"max_retries"`
	BackoffStepMS   int    `toml:"backoff_step_ms"`
	RequestTimeout  int    `toml:"request_timeout"`
	ScheduleCountry string `toml:"schedule_country"`
	UserAgent       string `toml:"user_agent"`
}

// TMDB contains configuration for The Movie Database API, used for
// cross-provider identifier resolution and first-air-date discovery.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// Catalog contains configuration for catalog assembly.
type Catalog struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	WindowDays int    `toml:"window_days"`
}

// Filters contains configuration for content classification.
type Filters struct {
	AllowedCountries         []string `toml:"allowed_countries"`
	Conservative             bool     `toml:"conservative"`
	BlockedNetworks          []string `toml:"blocked_networks"`
	BlockedNetworkSubstrings []string `toml:"blocked_network_substrings"`
	ExtraNewsKeywords        []string `toml:"extra_news_keywords"`
	ExtraSportsKeywords      []string `toml:"extra_sports_keywords"`
}

// Discovery contains configuration for the discovery and fallback passes.
type Discovery struct {
	Concurrency    int  `toml:"concurrency"`
	EpisodesByDate bool `toml:"episodes_by_date"`
	CrossProvider  bool `toml:"cross_provider"`
	Updates        bool `toml:"updates"`
	TMDBDiscover   bool `toml:"tmdb_discover"`
	TMDBMaxPages   int  `toml:"tmdb_max_pages"`
	MaxCandidates  int  `toml:"max_candidates"`
}

// Output contains configuration for the emitted records.
type Output struct {
	PruneStaleMeta bool `toml:"prune_stale_meta"`
}

// Server contains configuration for the addon HTTP server.
type Server struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for tvcatalog.
//
// Configuration sections by subsystem:
//   - Paths: output, state (build history), and log directories
//   - TVMaze: primary provider endpoint and rate limiting
//   - TMDB: secondary provider credentials
//   - Catalog: catalog identity and trailing window size
//   - Filters: content classification policy
//   - Discovery: which discovery and fallback passes run
//   - Output: emitted record housekeeping
//   - Server: addon server bind address
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	TVMaze    TVMaze    `toml:"tvmaze"`
	TMDB      TMDB      `toml:"tmdb"`
	Catalog   Catalog   `toml:"catalog"`
	Filters   Filters   `toml:"filters"`
	Discovery Discovery `toml:"discovery"`
	Output    Output    `toml:"output"`
	Server    Server    `toml:"server"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tvcatalog/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tvcatalog.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a build writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogDir returns the directory holding the catalog index record.
func (c *Config) CatalogDir() string {
	return filepath.Join(c.Paths.OutputDir, "catalog", "series")
}

// MetaDir returns the directory holding per-show detail records.
func (c *Config) MetaDir() string {
	return filepath.Join(c.Paths.OutputDir, "meta", "series")
}

// HistoryPath returns the build history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// MinInterval returns the minimum gap between calls to the throttled provider.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.TVMaze.MinIntervalMS) * time.Millisecond
}

// BackoffStep returns the per-attempt increment of the rate-limit backoff.
func (c *Config) BackoffStep() time.Duration {
	return time.Duration(c.TVMaze.BackoffStepMS) * time.Millisecond
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.TVMaze.RequestTimeout) * time.Second
}

// TMDBEnabled reports whether secondary provider calls can be made.
func (c *Config) TMDBEnabled() bool {
	return strings.TrimSpace(c.TMDB.APIKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
