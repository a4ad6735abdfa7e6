package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTVMaze()
	c.normalizeTMDB()
	c.normalizeCatalog()
	c.normalizeFilters()
	c.normalizeDiscovery()
	c.normalizeLogging()
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTVMaze() {
	c.TVMaze.BaseURL = strings.TrimRight(strings.TrimSpace(c.TVMaze.BaseURL), "/")
	if c.TVMaze.BaseURL == "" {
		c.TVMaze.BaseURL = defaultTVMazeBaseURL
	}
	if c.TVMaze.MinIntervalMS < 0 {
		c.TVMaze.MinIntervalMS = 0
	}
	if c.TVMaze.MaxRetries < 0 {
		c.TVMaze.MaxRetries = 0
	}
	if c.TVMaze.BackoffStepMS < 0 {
		c.TVMaze.BackoffStepMS = 0
	}
	if c.TVMaze.RequestTimeout <= 0 {
		c.TVMaze.RequestTimeout = defaultRequestTimeout
	}
	c.TVMaze.ScheduleCountry = strings.ToUpper(strings.TrimSpace(c.TVMaze.ScheduleCountry))
	if c.TVMaze.ScheduleCountry == "" {
		c.TVMaze.ScheduleCountry = defaultScheduleCountry
	}
	c.TVMaze.UserAgent = strings.TrimSpace(c.TVMaze.UserAgent)
	if c.TVMaze.UserAgent == "" {
		c.TVMaze.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
}

func (c *Config) normalizeCatalog() {
	c.Catalog.ID = strings.TrimSpace(c.Catalog.ID)
	if c.Catalog.ID == "" {
		c.Catalog.ID = defaultCatalogID
	}
	c.Catalog.Name = strings.TrimSpace(c.Catalog.Name)
	if c.Catalog.Name == "" {
		c.Catalog.Name = defaultCatalogName
	}
	if c.Catalog.WindowDays == 0 {
		c.Catalog.WindowDays = defaultWindowDays
	}
}

func (c *Config) normalizeFilters() {
	countries := normalizeList(c.Filters.AllowedCountries, strings.ToUpper)
	if len(countries) == 0 {
		countries = append([]string(nil), defaultAllowedCountries...)
	}
	c.Filters.AllowedCountries = countries
	c.Filters.BlockedNetworks = normalizeList(c.Filters.BlockedNetworks, nil)
	c.Filters.BlockedNetworkSubstrings = normalizeList(c.Filters.BlockedNetworkSubstrings, strings.ToLower)
	c.Filters.ExtraNewsKeywords = normalizeList(c.Filters.ExtraNewsKeywords, strings.ToLower)
	c.Filters.ExtraSportsKeywords = normalizeList(c.Filters.ExtraSportsKeywords, strings.ToLower)
}

func (c *Config) normalizeDiscovery() {
	if c.Discovery.Concurrency <= 0 {
		c.Discovery.Concurrency = defaultConcurrency
	}
	if c.Discovery.TMDBMaxPages <= 0 {
		c.Discovery.TMDBMaxPages = defaultTMDBMaxPages
	}
	if c.Discovery.MaxCandidates <= 0 {
		c.Discovery.MaxCandidates = defaultMaxCandidates
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func normalizeList(values []string, transform func(string) string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if transform != nil {
			normalized = transform(normalized)
		}
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
