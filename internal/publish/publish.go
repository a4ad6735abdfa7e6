package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"tvcatalog/internal/catalog"
	"tvcatalog/internal/fileutil"
	"tvcatalog/internal/logging"
)

// LockFileName is the lock file created inside the output directory.
const LockFileName = ".tvcatalog.lock"

// ErrLocked reports that another build holds the output directory.
var ErrLocked = errors.New("output directory locked")

// Report summarizes one publish.
type Report struct {
	CatalogPath string
	MetaWritten int
	Pruned      int
}

// Publisher writes catalog and meta records under outputDir.
type Publisher struct {
	outputDir   string
	catalogID   string
	prune       bool
	concurrency int
	logger      *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrune removes meta files not produced by the current build.
func WithPrune(enabled bool) Option {
	return func(p *Publisher) {
		p.prune = enabled
	}
}

// WithConcurrency bounds parallel meta writes.
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "publish")
		}
	}
}

// New creates a publisher.
func New(outputDir, catalogID string, opts ...Option) *Publisher {
	p := &Publisher{
		outputDir:   outputDir,
		catalogID:   catalogID,
		concurrency: 8,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CatalogDir returns the directory of the catalog index.
func (p *Publisher) CatalogDir() string {
	return filepath.Join(p.outputDir, "catalog", catalog.ContentType)
}

// MetaDir returns the directory of meta records.
func (p *Publisher) MetaDir() string {
	return filepath.Join(p.outputDir, "meta", catalog.ContentType)
}

// CatalogPath returns the catalog index file path.
func (p *Publisher) CatalogPath() string {
	return filepath.Join(p.CatalogDir(), p.catalogID+".json")
}

// Publish writes every meta record and then the catalog index stamped with ts.
func (p *Publisher) Publish(ctx context.Context, result catalog.Result, ts time.Time) (Report, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(p.outputDir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return Report{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return Report{}, fmt.Errorf("%w: another build is writing to %s", ErrLocked, p.outputDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	metaDir := p.MetaDir()
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create meta directory: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)
	for _, meta := range result.Metas {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if err := fileutil.WriteJSONAtomic(filepath.Join(metaDir, meta.FileName()), meta); err != nil {
				return fmt.Errorf("write meta %s: %w", meta.FileName(), err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{CatalogPath: p.CatalogPath(), MetaWritten: len(result.Metas)}
	metas := result.Catalog
	if metas == nil {
		metas = []catalog.CatalogEntry{}
	}
	index := catalog.Index{Metas: metas, TS: ts.UnixMilli()}
	if err := fileutil.WriteJSONAtomic(report.CatalogPath, index); err != nil {
		return Report{}, fmt.Errorf("write catalog: %w", err)
	}

	if p.prune {
		pruned, err := p.pruneStale(result.Metas)
		if err != nil {
			logging.WarnWithContext(p.logger, "stale meta prune failed", "publish_prune_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "old meta files remain on disk"),
			)
		}
		report.Pruned = pruned
	}

	p.logger.Info("records published",
		logging.String("catalog", report.CatalogPath),
		logging.Int("shows", len(metas)),
		logging.Int("meta_written", report.MetaWritten),
		logging.Int("meta_pruned", report.Pruned),
		logging.String(logging.FieldEventType, "publish_complete"),
	)
	return report, nil
}

func (p *Publisher) pruneStale(kept []catalog.MetaRecord) (int, error) {
	keep := make(map[string]struct{}, len(kept))
	for _, meta := range kept {
		keep[meta.FileName()] = struct{}{}
	}
	files, err := fileutil.ListFiles(p.MetaDir(), ".json")
	if err != nil {
		return 0, err
	}
	removed := 0
	var errs []error
	for _, path := range files {
		if _, ok := keep[filepath.Base(path)]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
