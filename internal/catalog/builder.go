package catalog

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"tvcatalog/internal/logging"
	"tvcatalog/internal/textutil"
	"tvcatalog/internal/tvmaze"
)

// Result is the output of one build.
type Result struct {
	Catalog  []CatalogEntry
	Metas    []MetaRecord
	Window   Window
	Omitted  int
	Episodes int
}

// Builder projects registry entries into records.
type Builder struct {
	windowDays int
	logger     *slog.Logger
}

// NewBuilder creates a builder for a trailing window of windowDays.
func NewBuilder(windowDays int, logger *slog.Logger) *Builder {
	return &Builder{
		windowDays: windowDays,
		logger:     logging.NewComponentLogger(logger, "catalog"),
	}
}

// Build turns the registry into catalog entries and meta records. Shows
// without an episode dated inside the window are omitted from both.
func (b *Builder) Build(registry *Registry, today time.Time) (Result, error) {
	window := NewWindow(today, b.windowDays)
	result := Result{
		Catalog: []CatalogEntry{},
		Window:  window,
	}
	for _, entry := range registry.Snapshot() {
		episodes := Dedupe(entry.Episodes)
		latest := ""
		for _, ep := range episodes {
			if date := PickDate(ep); window.Contains(date) && date > latest {
				latest = date
			}
		}
		if latest == "" {
			result.Omitted++
			b.logger.Debug("show has no episode in window",
				logging.String(logging.FieldShowID, NamespacedID(entry.Show.ID)),
				logging.Int("episodes", len(episodes)),
			)
			continue
		}

		meta, err := buildMeta(entry.Show, episodes)
		if err != nil {
			return Result{}, fmt.Errorf("build meta for %s: %w", NamespacedID(entry.Show.ID), err)
		}
		result.Catalog = append(result.Catalog, buildEntry(entry.Show, latest))
		result.Metas = append(result.Metas, meta)
		result.Episodes += len(meta.Videos)
	}

	slices.SortStableFunc(result.Catalog, func(a, b CatalogEntry) int {
		return strings.Compare(b.LatestDate, a.LatestDate)
	})
	return result, nil
}

func buildEntry(show *tvmaze.Show, latest string) CatalogEntry {
	entry := CatalogEntry{
		ID:          NamespacedID(show.ID),
		Type:        ContentType,
		Name:        show.Name,
		Description: textutil.StripMarkup(show.Summary),
		LatestDate:  latest,
	}
	if show.Image != nil {
		if show.Image.Medium != "" {
			entry.Poster = stringPtr(show.Image.Medium)
		} else if show.Image.Original != "" {
			entry.Poster = stringPtr(show.Image.Original)
		}
		if show.Image.Original != "" {
			entry.Background = stringPtr(show.Image.Original)
		}
	}
	return entry
}

func buildMeta(show *tvmaze.Show, episodes []tvmaze.Episode) (MetaRecord, error) {
	fields, err := show.Fields()
	if err != nil {
		return MetaRecord{}, err
	}
	sorted := slices.Clone(episodes)
	slices.SortStableFunc(sorted, func(a, b tvmaze.Episode) int {
		return strings.Compare(PickDate(a), PickDate(b))
	})
	videos := make([]Video, 0, len(sorted))
	for _, ep := range sorted {
		videos = append(videos, Video{
			ID:       NamespacedID(ep.ID),
			Title:    ep.Name,
			Season:   ep.Season,
			Episode:  ep.Number,
			Released: PickDate(ep),
			Overview: textutil.StripMarkup(ep.Summary),
		})
	}
	return MetaRecord{
		ShowID: show.ID,
		Name:   show.Name,
		Fields: fields,
		Videos: videos,
	}, nil
}

func stringPtr(s string) *string {
	return &s
}
