package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tvcatalog/internal/config"
	"tvcatalog/internal/history"
	"tvcatalog/internal/tvmaze"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the build configuration",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set tmdb.api_key (or export TMDB_API_KEY) to enable secondary-provider lookups.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	target := strings.TrimSpace(flagValue)
	if target == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and report the resolved build settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range configReport(cmd.Context(), ctx.configPath, ctx.configSeen, cfg) {
				fmt.Fprintln(out, renderStatusLine(line.label, line.kind, line.message, colorize))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

type reportLine struct {
	label   string
	kind    statusKind
	message string
}

// configReport describes the settings a build would run with. It opens the
// build ledger to report where history lives and the most recent run.
func configReport(ctx context.Context, path string, seen bool, cfg *config.Config) []reportLine {
	lines := make([]reportLine, 0, 6)
	if seen {
		lines = append(lines, reportLine{"Config file", statusOK, path})
	} else {
		lines = append(lines, reportLine{"Config file", statusWarn, path + " not found, defaults in use"})
	}

	lines = append(lines,
		reportLine{"Catalog", statusInfo, fmt.Sprintf("%s, %d-day window", cfg.Catalog.ID, cfg.Catalog.WindowDays)},
		reportLine{"Output", statusInfo, cfg.Paths.OutputDir},
		reportLine{"Primary provider", statusInfo, fmt.Sprintf("%s (min interval %s)", tvmaze.Host(cfg.TVMaze.BaseURL), cfg.MinInterval())},
	)

	if cfg.TMDBEnabled() {
		lines = append(lines, reportLine{"Secondary provider", statusOK, "enabled, language " + cfg.TMDB.Language})
	} else {
		lines = append(lines, reportLine{"Secondary provider", statusWarn, "disabled (set tmdb.api_key or TMDB_API_KEY)"})
	}

	return append(lines, historyReport(ctx, cfg.HistoryPath()))
}

func historyReport(ctx context.Context, path string) reportLine {
	store, err := history.Open(ctx, path)
	if err != nil {
		return reportLine{"History", statusWarn, fmt.Sprintf("%s unavailable: %v", path, err)}
	}
	defer store.Close()

	runs, err := store.List(ctx, 1)
	if err != nil {
		return reportLine{"History", statusWarn, fmt.Sprintf("%s unreadable: %v", store.Path(), err)}
	}
	if len(runs) == 0 {
		return reportLine{"History", statusInfo, store.Path() + ", no builds recorded"}
	}
	last := runs[0]
	return reportLine{"History", statusOK, fmt.Sprintf("%s, last build %s %s at %s",
		store.Path(), last.BuildDate, last.Status, last.StartedAt.Local().Format(time.DateTime))}
}
