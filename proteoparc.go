// Package proteoparc builds clade-scoped protein sequence databases from the
// UniParc archive.
//
// Example usage:
//
//	cfg := proteoparc.DefaultConfig()
//	cfg.TaxID = 9604
//	cfg.Genes = []string{"TP53", "BRCA1"}
//	res, err := proteoparc.Build(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := proteoparc.WriteOutputs(cfg, res); err != nil {
//	    log.Fatal(err)
//	}
package proteoparc

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/proteoparc/proteoparc/internal/adapters/uniprot"
	"github.com/proteoparc/proteoparc/internal/app"
	"github.com/proteoparc/proteoparc/internal/cliconfig"
	"github.com/proteoparc/proteoparc/internal/domain"
	"github.com/proteoparc/proteoparc/internal/ports"
	"github.com/proteoparc/proteoparc/internal/reduce"
	"github.com/proteoparc/proteoparc/internal/retry"
)

// Config holds the build configuration.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Result is the outcome of a build.
type Result = app.BuildResult

// Collection is an ordered list of FASTA records.
type Collection = domain.Collection

// RedundancyResult partitions a collection into retained and removed records.
type RedundancyResult = domain.RedundancyResult

// EventHandler is notified as each query scope completes.
type EventHandler = app.BuildEventEmitter

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// DefaultConfig returns a Config with sensible default values.
// At minimum, TaxID must be set before calling Build.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Option configures optional behavior of Build.
type Option func(*options)

type options struct {
	httpClient   ports.HTTPClient
	logger       zerolog.Logger
	eventHandler EventHandler
}

// WithHTTPClient sets a custom HTTP client for service calls.
// If not provided, a client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for per-scope events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// Build validates cfg, resolves the clade and fetches, aggregates and
// optionally reduces every record. Genes come from cfg.Genes and
// cfg.GeneFile; with neither, the whole clade is fetched.
func Build(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	genes, err := cliconfig.ResolveGenes(cfg)
	if err != nil {
		return nil, err
	}

	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	client := uniprot.NewClient(o.httpClient, clientConfig(cfg), o.logger)
	builder := app.NewBuilder(builderConfig(cfg), client, client, o.logger, o.eventHandler)
	return builder.Build(ctx, app.BuildRequest{TaxID: cfg.TaxID, Genes: genes})
}

// Reduce removes exact duplicates and contained sequences from c, refusing
// to run above memoryFraction of physical memory (zero disables the check).
func Reduce(c Collection, memoryFraction float64, workers int) (RedundancyResult, error) {
	return reduce.Reduce(c,
		reduce.WithMemoryBudget(reduce.DefaultBudget(memoryFraction)),
		reduce.WithWorkers(workers),
	)
}

func clientConfig(cfg Config) uniprot.Config {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.MaxAttempts
	policy.Initial = cfg.BackoffInitial
	policy.Max = cfg.BackoffMax

	uc := uniprot.DefaultConfig()
	uc.BaseURL = cfg.ServiceURL
	uc.PageSize = cfg.PageSize
	uc.Retry = policy
	return uc
}

func builderConfig(cfg Config) app.BuilderConfig {
	mode := app.ModePages
	if cfg.Mode == cliconfig.ModeFanOut {
		mode = app.ModeFanOut
	}
	return app.BuilderConfig{
		Mode:            mode,
		Workers:         cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
		Header:          domain.HeaderOptions{StripIsoform: cfg.StripIsoform},
		RemoveRedundant: cfg.RemoveRedundant,
		ReduceBudget:    reduce.DefaultBudget(cfg.MemoryFraction),
		ReduceWorkers:   cfg.ReduceWorkers,
		Provenance:      cfg.Provenance,
	}
}
