package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/proteoparc/proteoparc/internal/domain"
	"github.com/proteoparc/proteoparc/internal/ports"
)

// DefaultWorkers bounds concurrent entry requests in fan-out mode.
const DefaultWorkers = 8

// FetchConfig holds fetcher settings.
type FetchConfig struct {
	// Workers bounds concurrent entry requests in fan-out mode.
	Workers int
}

// Fetcher retrieves raw archive records for one scope at a time.
type Fetcher struct {
	archive ports.ArchiveService
	cfg     FetchConfig
	logger  zerolog.Logger
}

// NewFetcher creates a fetcher over archive.
func NewFetcher(archive ports.ArchiveService, cfg FetchConfig, logger zerolog.Logger) *Fetcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Fetcher{archive: archive, cfg: cfg, logger: logger}
}

// FetchGene walks every page of the gene-scoped query and calls emit for
// each record in discovery order. It returns the number of records emitted.
func (f *Fetcher) FetchGene(ctx context.Context, taxon domain.Taxon, gene string, emit func(domain.RawRecord) error) (int, error) {
	return f.fetchPages(ctx, domain.Scope{TaxID: taxon.Root, Gene: gene}, emit)
}

// FetchClade walks every page of the whole-clade query.
func (f *Fetcher) FetchClade(ctx context.Context, taxon domain.Taxon, emit func(domain.RawRecord) error) (int, error) {
	return f.fetchPages(ctx, domain.Scope{TaxID: taxon.Root}, emit)
}

func (f *Fetcher) fetchPages(ctx context.Context, scope domain.Scope, emit func(domain.RawRecord) error) (int, error) {
	seen := 0
	err := f.archive.Search(ctx, scope, func(p ports.Page) error {
		for _, raw := range p.Records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := emit(raw); err != nil {
				return err
			}
			seen++
		}
		f.logger.Info().
			Str("scope", scope.String()).
			Int("fetched", seen).
			Int("total", p.Total).
			Msg("fetch progress")
		return nil
	})
	if err != nil {
		return seen, stageError(domain.StageFetch, scope, err)
	}
	return seen, nil
}

// FetchFanOut lists the scope's archive ids, then retrieves each full entry
// concurrently. emit receives the entry's position in the id listing and
// may be called from several goroutines at once. On success the returned
// count equals the number of ids listed.
func (f *Fetcher) FetchFanOut(ctx context.Context, taxon domain.Taxon, gene string, emit func(int, domain.RawRecord) error) (int, error) {
	scope := domain.Scope{TaxID: taxon.Root, Gene: gene}

	var ids []string
	err := f.archive.SearchIDs(ctx, scope, func(p ports.IDPage) error {
		ids = append(ids, p.IDs...)
		return nil
	})
	if err != nil {
		return 0, stageError(domain.StageFetch, scope, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	f.logger.Info().
		Str("scope", scope.String()).
		Int("ids", len(ids)).
		Int("workers", f.cfg.Workers).
		Msg("fan-out started")

	var delivered atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			raw, err := f.archive.Entry(gctx, id)
			if err != nil {
				return fmt.Errorf("entry %s: %w", id, err)
			}
			if err := emit(i, raw); err != nil {
				return err
			}
			if n := delivered.Add(1); n%500 == 0 {
				f.logger.Info().
					Str("scope", scope.String()).
					Int64("fetched", n).
					Int("total", len(ids)).
					Msg("fetch progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(delivered.Load()), stageError(domain.StageFetch, scope, err)
	}
	return len(ids), nil
}

// stageError wraps err with stage and scope unless it already carries them.
func stageError(stage domain.Stage, scope domain.Scope, err error) error {
	var se *domain.StageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StageError{Stage: stage, Scope: scope, Err: err}
}
