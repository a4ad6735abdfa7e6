package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"tvcatalog/internal/catalog"
	"tvcatalog/internal/language"
	"tvcatalog/internal/textutil"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the published record of one show",
		Long:  "Show the catalog entry and episode list published for a show. The id may be bare (42) or namespaced (tvmaze:42).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			id, ok := catalog.ParseNamespacedID(args[0])
			if !ok {
				return fmt.Errorf("invalid show id %q", args[0])
			}

			metaPath := filepath.Join(cfg.MetaDir(), catalog.NamespacedID(id)+".json")
			data, err := os.ReadFile(metaPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("%s is not in the published catalog", catalog.NamespacedID(id))
				}
				return fmt.Errorf("read meta record: %w", err)
			}
			var meta catalog.MetaRecord
			if err := json.Unmarshal(data, &meta); err != nil {
				return fmt.Errorf("decode %s: %w", metaPath, err)
			}
			if jsonOutput {
				return writeJSON(cmd, json.RawMessage(data))
			}

			entry, listed := findCatalogEntry(filepath.Join(cfg.CatalogDir(), cfg.Catalog.ID+".json"), catalog.NamespacedID(id))

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Show:", meta.Name)
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "ID:", catalog.NamespacedID(id))
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Language:", language.DisplayName(metaString(meta, "language")))
			if listed {
				fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Latest episode:", entry.LatestDate)
				if entry.Description != "" {
					fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Summary:", textutil.Truncate(entry.Description, 100))
				}
			} else {
				fmt.Fprintln(out, renderStatusLine("Catalog", statusWarn, "not listed in the current catalog index", colorize))
			}
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "In index:", yesNo(listed))

			if len(meta.Videos) == 0 {
				fmt.Fprintln(out, "No episodes recorded")
				return nil
			}
			rows := make([][]string, 0, len(meta.Videos))
			for _, video := range meta.Videos {
				number := "-"
				if video.Episode != nil {
					number = strconv.Itoa(*video.Episode)
				}
				rows = append(rows, []string{
					video.Released,
					strconv.Itoa(video.Season),
					number,
					textutil.Truncate(video.Title, 50),
					video.ID,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Released", "Season", "Episode", "Title", "ID"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw meta record")
	return cmd
}

func findCatalogEntry(path, id string) (catalog.CatalogEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.CatalogEntry{}, false
	}
	var index catalog.Index
	if err := json.Unmarshal(data, &index); err != nil {
		return catalog.CatalogEntry{}, false
	}
	for _, entry := range index.Metas {
		if entry.ID == id {
			return entry, true
		}
	}
	return catalog.CatalogEntry{}, false
}

// metaString returns a string field of the record, or "" when absent or not a
// string.
func metaString(meta catalog.MetaRecord, key string) string {
	raw, ok := meta.Fields[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}
