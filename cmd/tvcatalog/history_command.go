package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tvcatalog/internal/history"
	"tvcatalog/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintf(out, "No builds recorded in %s\n", store.Path())
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func renderHistoryTable(runs []history.Run) string {
	headers := []string{"Started", "Date", "Status", "Shows", "Episodes", "Excluded", "Requests", "429s", "Duration"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = run.Duration().Round(time.Millisecond).String()
		}
		status := string(run.Status)
		if run.Error != "" {
			status += ": " + textutil.Truncate(run.Error, 40)
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.BuildDate,
			status,
			strconv.Itoa(run.Shows),
			strconv.Itoa(run.Episodes),
			strconv.Itoa(run.Excluded),
			strconv.FormatInt(run.Requests, 10),
			strconv.FormatInt(run.RateLimited, 10),
			duration,
		})
	}
	return renderTable(headers, rows, aligns)
}
