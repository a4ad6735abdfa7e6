package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTVMaze(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateFilters(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTVMaze() error {
	parsed, err := url.Parse(c.TVMaze.BaseURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("tvmaze.base_url must be an absolute URL, got %q", c.TVMaze.BaseURL)
	}
	if c.TVMaze.MaxRetries > 20 {
		return errors.New("tvmaze.max_retries must be 20 or fewer")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.Discovery.TMDBDiscover && !c.TMDBEnabled() {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tvcatalog/config.toml"
		}
		return fmt.Errorf("discovery.tmdb_discover requires tmdb.api_key. Set TMDB_API_KEY env var or edit %s (create with 'tvcatalog config init')", defaultPath)
	}
	parsed, err := url.Parse(c.TMDB.BaseURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("tmdb.base_url must be an absolute URL, got %q", c.TMDB.BaseURL)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.WindowDays < 1 || c.Catalog.WindowDays > 60 {
		return errors.New("catalog.window_days must be between 1 and 60")
	}
	if strings.ContainsAny(c.Catalog.ID, `/\`) {
		return fmt.Errorf("catalog.id must not contain path separators, got %q", c.Catalog.ID)
	}
	return nil
}

func (c *Config) validateFilters() error {
	for _, code := range c.Filters.AllowedCountries {
		if len(code) != 2 {
			return fmt.Errorf("filters.allowed_countries: %q is not a two-letter country code", code)
		}
	}
	return nil
}
