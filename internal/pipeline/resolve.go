package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"tvcatalog/internal/catalog"
	"tvcatalog/internal/logging"
	"tvcatalog/internal/tmdb"
	"tvcatalog/internal/tvmaze"
)

// ResolveStats summarizes the fallback passes.
type ResolveStats struct {
	ByDateRegistered int
	Replaced         int
	Dropped          int
	Candidates       int
	Discovered       int
}

// ResolverOptions selects which fallback passes run.
type ResolverOptions struct {
	Concurrency    int
	EpisodesByDate bool
	CrossProvider  bool
	Updates        bool
	TMDBDiscover   bool
	TMDBMaxPages   int
	MaxCandidates  int
}

// Resolver fills registry gaps the day schedules left.
type Resolver struct {
	client   *tvmaze.Client
	finder   tmdb.Finder
	screen   *screen
	registry *catalog.Registry
	opts     ResolverOptions
	logger   *slog.Logger
}

func newResolver(client *tvmaze.Client, finder tmdb.Finder, screen *screen, registry *catalog.Registry, opts ResolverOptions, logger *slog.Logger) *Resolver {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Resolver{
		client:   client,
		finder:   finder,
		screen:   screen,
		registry: registry,
		opts:     opts,
		logger:   logger,
	}
}

// Run executes the enabled passes in order.
func (r *Resolver) Run(ctx context.Context, window catalog.Window) ResolveStats {
	var stats ResolveStats
	if r.opts.EpisodesByDate {
		stats.ByDateRegistered = r.EpisodesByDate(ctx, window)
	}
	if r.opts.CrossProvider {
		stats.Replaced, stats.Dropped = r.CrossProvider(ctx)
	}
	if r.opts.Updates || (r.opts.TMDBDiscover && r.finder != nil) {
		stats.Candidates, stats.Discovered = r.Broader(ctx, window)
	}
	return stats
}

// EpisodesByDate polls the generic schedule of each window day and, for
// admitted shows not yet registered, registers the show's episodes on that
// day. It returns the number of shows registered.
func (r *Resolver) EpisodesByDate(ctx context.Context, window catalog.Window) int {
	var registered atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.Concurrency)
	for _, day := range window.Days() {
		group.Go(func() error {
			list, ok := r.client.Schedule(groupCtx, tvmaze.VariantGeneric, day)
			if !ok {
				return nil
			}
			tried := make(map[int64]struct{})
			for _, ep := range list {
				show := ep.ShowRef()
				if show == nil || show.ID == 0 || r.registry.Has(show.ID) {
					continue
				}
				if _, ok := tried[show.ID]; ok {
					continue
				}
				tried[show.ID] = struct{}{}
				if !r.screen.admit(show) {
					continue
				}
				episodes, ok := r.client.EpisodesByDate(groupCtx, show.ID, day)
				if !ok || len(episodes) == 0 {
					continue
				}
				if r.registry.Register(show, episodes, catalog.SourceEpisodesByDate) {
					registered.Add(1)
				}
			}
			return nil
		})
	}
	_ = group.Wait()

	count := int(registered.Load())
	r.logger.Info("episodes-by-date fallback complete",
		logging.Int("registered", count),
		logging.String(logging.FieldEventType, "fallback_by_date_complete"),
	)
	return count
}

// CrossProvider fetches full detail for registered shows that carry an IMDb
// id and no embedded episode list. Detail that passes the classifier
// replaces the show record wholesale and its episodes are merged; detail
// that fails it removes the entry. It returns (replaced, dropped).
func (r *Resolver) CrossProvider(ctx context.Context) (int, int) {
	var replaced, dropped atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.Concurrency)
	for _, id := range r.registry.IDs() {
		entry, ok := r.registry.Get(id)
		if !ok || entry.Show.HasEmbeddedEpisodes() || entry.Show.Externals.IMDB == "" {
			continue
		}
		imdbID := entry.Show.Externals.IMDB
		group.Go(func() error {
			tvmazeID, ok := r.resolveIMDb(groupCtx, imdbID)
			if !ok {
				return nil
			}
			detail, ok := r.client.ShowWithEpisodes(groupCtx, tvmazeID)
			if !ok || len(detail.EmbeddedEpisodes()) == 0 {
				return nil
			}
			logger := r.logger.With(logging.String(logging.FieldShowID, catalog.NamespacedID(id)))
			if detail.ID != id {
				logger.Debug("cross-provider detail resolved to a different show",
					logging.String("imdb", imdbID),
					logging.String("resolved", catalog.NamespacedID(detail.ID)),
					logging.String(logging.FieldEventType, "fallback_id_mismatch"),
				)
				return nil
			}
			if !r.screen.admit(detail) {
				if r.registry.Remove(id) {
					dropped.Add(1)
				}
				return nil
			}
			if r.registry.Replace(id, detail, detail.EmbeddedEpisodes()) {
				replaced.Add(1)
				logger.Debug("show replaced with full detail",
					logging.Int("episodes", len(detail.EmbeddedEpisodes())),
					logging.String(logging.FieldEventType, "fallback_replaced"),
				)
			}
			return nil
		})
	}
	_ = group.Wait()

	r.logger.Info("cross-provider fallback complete",
		logging.Int("replaced", int(replaced.Load())),
		logging.Int("dropped", int(dropped.Load())),
		logging.String(logging.FieldEventType, "fallback_cross_provider_complete"),
	)
	return int(replaced.Load()), int(dropped.Load())
}

// resolveIMDb maps an IMDb id to a primary provider show id, first by the
// primary lookup and then through the secondary provider's TheTVDB id.
func (r *Resolver) resolveIMDb(ctx context.Context, imdbID string) (int64, bool) {
	if show, ok := r.client.LookupIMDb(ctx, imdbID); ok {
		return show.ID, true
	}
	if r.finder == nil {
		return 0, false
	}
	results, ok := r.finder.FindByIMDb(ctx, imdbID)
	if !ok {
		return 0, false
	}
	ids, ok := r.finder.ExternalIDs(ctx, results[0].ID)
	if !ok || ids.TVDBID <= 0 {
		return 0, false
	}
	show, ok := r.client.LookupTheTVDB(ctx, ids.TVDBID)
	if !ok {
		return 0, false
	}
	return show.ID, true
}

// Broader finds shows absent from the schedule feeds through the recently
// updated feed and secondary-provider discovery. A candidate is registered
// only when its detail passes the classifier and carries at least one
// episode inside the window. It returns (candidates, registered).
func (r *Resolver) Broader(ctx context.Context, window catalog.Window) (int, int) {
	candidates := r.collectCandidates(ctx, window)

	var registered atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.Concurrency)
	for _, candidate := range candidates {
		group.Go(func() error {
			if r.registry.Has(candidate.id) {
				return nil
			}
			detail, ok := r.client.ShowWithEpisodes(groupCtx, candidate.id)
			if !ok {
				return nil
			}
			episodes := detail.EmbeddedEpisodes()
			if !hasEpisodeInWindow(episodes, window) {
				return nil
			}
			if !r.screen.admit(detail) {
				return nil
			}
			if r.registry.Register(detail, episodes, candidate.source) {
				registered.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()

	count := int(registered.Load())
	r.logger.Info("broader discovery complete",
		logging.Int("candidates", len(candidates)),
		logging.Int("registered", count),
		logging.String(logging.FieldEventType, "discovery_broader_complete"),
	)
	return len(candidates), count
}

type candidate struct {
	id     int64
	source catalog.Source
}

func (r *Resolver) collectCandidates(ctx context.Context, window catalog.Window) []candidate {
	limit := r.opts.MaxCandidates
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{})
		out  []candidate
	)
	add := func(id int64, source catalog.Source) bool {
		mu.Lock()
		defer mu.Unlock()
		if limit > 0 && len(out) >= limit {
			return false
		}
		if id <= 0 || r.registry.Has(id) {
			return true
		}
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
		out = append(out, candidate{id: id, source: source})
		return true
	}

	if r.opts.Updates {
		if ids, ok := r.client.UpdatedShows(ctx, "day"); ok {
			for _, id := range ids {
				if !add(id, catalog.SourceUpdates) {
					break
				}
			}
		}
	}

	if r.opts.TMDBDiscover && r.finder != nil {
		r.discoverTMDB(ctx, window, add)
	}
	return out
}

func (r *Resolver) discoverTMDB(ctx context.Context, window catalog.Window, add func(int64, catalog.Source) bool) {
	maxPages := r.opts.TMDBMaxPages
	if maxPages < 1 {
		maxPages = 1
	}
	for page := 1; page <= maxPages; page++ {
		resp, ok := r.finder.DiscoverTV(ctx, window.Start, window.End, page)
		if !ok {
			return
		}
		for _, result := range resp.Results {
			ids, ok := r.finder.ExternalIDs(ctx, result.ID)
			if !ok {
				continue
			}
			var show *tvmaze.Show
			if ids.IMDbID != "" {
				show, ok = r.client.LookupIMDb(ctx, ids.IMDbID)
			}
			if show == nil && ids.TVDBID > 0 {
				show, ok = r.client.LookupTheTVDB(ctx, ids.TVDBID)
			}
			if !ok || show == nil {
				continue
			}
			if !add(show.ID, catalog.SourceTMDBDiscover) {
				return
			}
		}
		if page >= resp.TotalPages {
			return
		}
	}
}

func hasEpisodeInWindow(episodes []tvmaze.Episode, window catalog.Window) bool {
	for _, ep := range episodes {
		if window.Contains(catalog.PickDate(ep)) {
			return true
		}
	}
	return false
}
