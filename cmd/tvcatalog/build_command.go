package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tvcatalog/internal/catalog"
	"tvcatalog/internal/config"
	"tvcatalog/internal/history"
	"tvcatalog/internal/logging"
	"tvcatalog/internal/pipeline"
)

type buildReport struct {
	RunID       string         `json:"run_id"`
	Today       string         `json:"today"`
	Shows       int            `json:"shows"`
	Episodes    int            `json:"episodes"`
	Registered  int            `json:"registered"`
	Omitted     int            `json:"omitted"`
	Excluded    int            `json:"excluded"`
	ExcludedBy  map[string]int `json:"excluded_by,omitempty"`
	Requests    int64          `json:"requests"`
	RateLimited int64          `json:"rate_limited"`
	Failures    int64          `json:"failures"`
	CatalogPath string         `json:"catalog_path"`
	DurationMS  int64          `json:"duration_ms"`
}

func newBuildReport(s pipeline.Summary) buildReport {
	return buildReport{
		RunID:       s.RunID,
		Today:       s.Today,
		Shows:       s.Shows,
		Episodes:    s.Episodes,
		Registered:  s.Registered,
		Omitted:     s.Omitted,
		Excluded:    s.Excluded,
		ExcludedBy:  s.ExcludedBy,
		Requests:    s.Fetch.Requests,
		RateLimited: s.Fetch.RateLimited,
		Failures:    s.Fetch.Failures,
		CatalogPath: s.CatalogPath,
		DurationMS:  s.Duration.Milliseconds(),
	}
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		todayFlag  string
		windowFlag int
		outputFlag string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Discover recent episodes and publish the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyBuildOverrides(cfg, windowFlag, outputFlag); err != nil {
				return err
			}
			today := time.Now()
			if value := strings.TrimSpace(todayFlag); value != "" {
				parsed, err := catalog.ParseDay(value)
				if err != nil {
					return fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", value)
				}
				today = parsed
			}

			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			opts := []pipeline.Option{}
			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				logging.WarnWithContext(logger, "build history unavailable", "history_open_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "remove the history database if its schema is outdated"),
					logging.String(logging.FieldImpact, "this run will not be recorded"),
				)
			} else {
				defer store.Close()
				opts = append(opts, pipeline.WithRecorder(store))
			}

			p, err := pipeline.New(cfg, logger, opts...)
			if err != nil {
				return err
			}
			summary, err := p.Run(cmd.Context(), today)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, newBuildReport(summary))
			}
			out := cmd.OutOrStdout()
			message := fmt.Sprintf("%d shows, %d episodes, %d excluded, %d requests in %s",
				summary.Shows, summary.Episodes, summary.Excluded, summary.Fetch.Requests,
				summary.Duration.Round(time.Millisecond))
			fmt.Fprintln(out, renderStatusLine("Catalog "+summary.Today, statusOK, message, shouldColorize(out)))
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Written to:", summary.CatalogPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&todayFlag, "today", "", "Anchor date of the window (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&windowFlag, "window", 0, "Window size in days (overrides catalog.window_days)")
	cmd.Flags().StringVar(&outputFlag, "output", "", "Output directory (overrides paths.output_dir)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the build summary as JSON")
	return cmd
}

func applyBuildOverrides(cfg *config.Config, window int, output string) error {
	if window != 0 {
		cfg.Catalog.WindowDays = window
	}
	if output = strings.TrimSpace(output); output != "" {
		expanded, err := config.ExpandPath(output)
		if err != nil {
			return fmt.Errorf("resolve --output: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.EnsureDirectories()
}
