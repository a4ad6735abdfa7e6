package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"tvcatalog/internal/catalog"
	"tvcatalog/internal/logging"
	"tvcatalog/internal/tvmaze"
)

// DiscoverStats summarizes a discovery pass.
type DiscoverStats struct {
	Requests    int
	Unavailable int
	Episodes    int
}

// Discoverer polls the day schedules of the trailing window.
type Discoverer struct {
	client      *tvmaze.Client
	screen      *screen
	registry    *catalog.Registry
	concurrency int
	logger      *slog.Logger
}

func newDiscoverer(client *tvmaze.Client, screen *screen, registry *catalog.Registry, concurrency int, logger *slog.Logger) *Discoverer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Discoverer{
		client:      client,
		screen:      screen,
		registry:    registry,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run fetches every (day, variant) schedule and records the admitted
// episodes. With concurrency 1 the requests run day by day in variant order.
func (d *Discoverer) Run(ctx context.Context, window catalog.Window) DiscoverStats {
	var requests, unavailable, episodes atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.concurrency)
	for _, day := range window.Days() {
		for _, variant := range tvmaze.DiscoveryVariants {
			group.Go(func() error {
				requests.Add(1)
				list, ok := d.client.Schedule(groupCtx, variant, day)
				if !ok {
					unavailable.Add(1)
					return nil
				}
				for _, ep := range list {
					show := ep.ShowRef()
					if show == nil || show.ID == 0 {
						continue
					}
					if !d.screen.admit(show) {
						continue
					}
					d.registry.Observe(show, ep, catalog.SourceSchedule)
					episodes.Add(1)
				}
				return nil
			})
		}
	}
	_ = group.Wait()

	stats := DiscoverStats{
		Requests:    int(requests.Load()),
		Unavailable: int(unavailable.Load()),
		Episodes:    int(episodes.Load()),
	}
	d.logger.Info("schedule discovery complete",
		logging.Int("requests", stats.Requests),
		logging.Int("unavailable", stats.Unavailable),
		logging.Int("episodes", stats.Episodes),
		logging.Int("shows", d.registry.Len()),
		logging.String(logging.FieldEventType, "discovery_complete"),
	)
	return stats
}
