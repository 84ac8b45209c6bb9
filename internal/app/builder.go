package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/proteoparc/proteoparc/internal/domain"
	"github.com/proteoparc/proteoparc/internal/ports"
	"github.com/proteoparc/proteoparc/internal/reduce"
)

// Mode selects how a scope's records are retrieved.
type Mode string

const (
	// ModePages walks the paginated search listing.
	ModePages Mode = "pages"
	// ModeFanOut lists ids first, then fetches entries concurrently.
	ModeFanOut Mode = "fanout"
)

// BuilderConfig contains configuration for a build.
type BuilderConfig struct {
	Mode    Mode
	Workers int

	// ContinueOnError keeps fetching sibling gene scopes after one fails.
	// The default is to abort the whole build.
	ContinueOnError bool

	Header domain.HeaderOptions

	RemoveRedundant bool
	ReduceBudget    int64
	ReduceWorkers   int

	// Provenance collects per-record source lists for the audit sidecar.
	Provenance bool
}

// BuildRequest names the clade and, optionally, the genes to restrict it to.
type BuildRequest struct {
	TaxID int64
	Genes []string
}

// ScopeCount is the number of records one scope contributed.
type ScopeCount struct {
	Scope   domain.Scope
	Records int
}

// ScopeFailure is a scope skipped under ContinueOnError.
type ScopeFailure struct {
	Scope domain.Scope
	Err   error
}

// BuildResult is the outcome of a build.
type BuildResult struct {
	Taxon      domain.Taxon
	Collection domain.Collection

	// Reduced is nil unless redundancy removal was requested.
	Reduced *domain.RedundancyResult

	Provenance []domain.Provenance
	Scopes     []ScopeCount
	Failed     []ScopeFailure
	Dropped    int
}

// Empty reports whether the clade and gene filter matched nothing.
// An empty result is not an error.
func (r *BuildResult) Empty() bool {
	return len(r.Collection) == 0
}

// Final returns the records to write: the retained set when reduction ran,
// the full collection otherwise.
func (r *BuildResult) Final() domain.Collection {
	if r.Reduced != nil {
		return r.Reduced.Retained
	}
	return r.Collection
}

// BuildEventEmitter is notified as each scope completes.
type BuildEventEmitter interface {
	OnScopeDone(scope domain.Scope, records int)
	OnScopeError(scope domain.Scope, err error)
}

// Builder runs the resolve, fetch, synthesize, aggregate and reduce stages.
type Builder struct {
	config   BuilderConfig
	resolver *Resolver
	fetcher  *Fetcher
	logger   zerolog.Logger
	emitter  BuildEventEmitter
}

// NewBuilder creates a builder with the given dependencies. emitter may be nil.
func NewBuilder(
	config BuilderConfig,
	taxonomy ports.TaxonomyService,
	archive ports.ArchiveService,
	logger zerolog.Logger,
	emitter BuildEventEmitter,
) *Builder {
	if config.Mode == "" {
		config.Mode = ModePages
	}
	return &Builder{
		config:   config,
		resolver: NewResolver(taxonomy, logger),
		fetcher:  NewFetcher(archive, FetchConfig{Workers: config.Workers}, logger),
		logger:   logger,
		emitter:  emitter,
	}
}

// Build resolves the clade, fetches every scope and aggregates the records.
// Scopes are processed one after another in request order, which fixes the
// collection order for a given service response.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	taxon, err := b.resolver.Resolve(ctx, req.TaxID)
	if err != nil {
		return nil, err
	}

	genes := req.Genes
	if len(genes) == 0 {
		genes = []string{""}
	}

	agg := NewAggregator()
	res := &BuildResult{Taxon: taxon}
	for _, gene := range genes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// records of a failed scope never reach agg
		scope := domain.Scope{TaxID: taxon.Root, Gene: gene}
		scratch := NewAggregator()
		if err := b.fetchScope(ctx, taxon, gene, scratch); err != nil {
			if !b.config.ContinueOnError || ctx.Err() != nil {
				return nil, err
			}
			b.logger.Warn().Err(err).Str("scope", scope.String()).Msg("scope failed, continuing")
			res.Failed = append(res.Failed, ScopeFailure{Scope: scope, Err: err})
			if b.emitter != nil {
				b.emitter.OnScopeError(scope, err)
			}
			continue
		}

		agg.Merge(scratch)
		n := scratch.Count()
		res.Scopes = append(res.Scopes, ScopeCount{Scope: scope, Records: n})
		if b.emitter != nil {
			b.emitter.OnScopeDone(scope, n)
		}
	}
	if len(res.Failed) == len(genes) {
		return nil, res.Failed[len(res.Failed)-1].Err
	}

	res.Collection = agg.Done()
	res.Dropped = agg.Dropped()
	if b.config.Provenance {
		res.Provenance = agg.Provenance()
	}

	b.logger.Info().
		Int("records", len(res.Collection)).
		Int("dropped", res.Dropped).
		Int("failed_scopes", len(res.Failed)).
		Msg("aggregation complete")

	if res.Empty() {
		b.logger.Info().Int64("tax_id", taxon.Root).Msg("no proteins found")
		return res, nil
	}

	if b.config.RemoveRedundant {
		rr, err := reduce.Reduce(res.Collection,
			reduce.WithMemoryBudget(b.config.ReduceBudget),
			reduce.WithWorkers(b.config.ReduceWorkers),
		)
		if err != nil {
			return nil, stageError(domain.StageReduce, domain.Scope{TaxID: taxon.Root}, err)
		}
		res.Reduced = &rr
		b.logger.Info().
			Int("retained", len(rr.Retained)).
			Int("exact", rr.ExactCount).
			Int("substring", rr.SubstringCount).
			Msg("redundancy removed")
	}
	return res, nil
}

func (b *Builder) fetchScope(ctx context.Context, taxon domain.Taxon, gene string, agg *Aggregator) error {
	switch b.config.Mode {
	case ModeFanOut:
		_, err := b.fetcher.FetchFanOut(ctx, taxon, gene, func(i int, raw domain.RawRecord) error {
			rec, ok, err := b.synthesize(raw, taxon, gene, agg)
			if err != nil || !ok {
				return err
			}
			agg.Put(i, rec)
			return nil
		})
		return err

	case ModePages:
		emit := func(raw domain.RawRecord) error {
			rec, ok, err := b.synthesize(raw, taxon, gene, agg)
			if err != nil || !ok {
				return err
			}
			agg.Add(rec)
			return nil
		}
		var err error
		if gene == "" {
			_, err = b.fetcher.FetchClade(ctx, taxon, emit)
		} else {
			_, err = b.fetcher.FetchGene(ctx, taxon, gene, emit)
		}
		return err

	default:
		return fmt.Errorf("unknown fetch mode %q", b.config.Mode)
	}
}

// synthesize builds the record for raw. Format errors drop the record and
// report ok=false with a nil error.
func (b *Builder) synthesize(raw domain.RawRecord, taxon domain.Taxon, gene string, agg *Aggregator) (domain.SequenceRecord, bool, error) {
	rec, err := domain.Synthesize(raw, taxon, gene, b.config.Header)
	if err != nil {
		if agg.Drop(err) {
			b.logger.Warn().Err(err).Msg("record dropped")
			return domain.SequenceRecord{}, false, nil
		}
		return domain.SequenceRecord{}, false, stageError(domain.StageSynthesis,
			domain.Scope{TaxID: taxon.Root, Gene: gene}, err)
	}
	if b.config.Provenance {
		agg.AddProvenance(domain.CollectProvenance(raw, taxon))
	}
	return rec, true, nil
}
