package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/proteoparc/proteoparc/internal/domain"
	"github.com/proteoparc/proteoparc/internal/ports"
)

// Resolver expands a root taxon id into its full clade.
type Resolver struct {
	svc    ports.TaxonomyService
	logger zerolog.Logger
}

// NewResolver creates a resolver backed by svc.
func NewResolver(svc ports.TaxonomyService, logger zerolog.Logger) *Resolver {
	return &Resolver{svc: svc, logger: logger}
}

// Resolve returns the clade rooted at root. The service only reports strict
// descendants; root is added here. There is no local fallback: any service
// failure is returned as a taxonomy-stage error.
func (r *Resolver) Resolve(ctx context.Context, root int64) (domain.Taxon, error) {
	scope := domain.Scope{TaxID: root}
	if root <= 0 {
		return domain.Taxon{}, stageError(domain.StageTaxonomy, scope, domain.ErrInvalidTaxID)
	}

	ids, err := r.svc.Descendants(ctx, root)
	if err != nil {
		return domain.Taxon{}, stageError(domain.StageTaxonomy, scope, err)
	}

	name, err := r.svc.ScientificName(ctx, root)
	if err != nil {
		return domain.Taxon{}, stageError(domain.StageTaxonomy, scope, err)
	}

	taxon := domain.NewTaxon(root, name, ids)
	r.logger.Info().
		Int64("tax_id", root).
		Str("name", name).
		Int("clade_size", taxon.Size()).
		Msg("taxonomy resolved")
	return taxon, nil
}
