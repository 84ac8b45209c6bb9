package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/proteoparc/proteoparc"
	"github.com/proteoparc/proteoparc/internal/cliconfig"
	"github.com/proteoparc/proteoparc/internal/domain"
	"github.com/proteoparc/proteoparc/internal/watch"
)

const longHelp = `Build a protein sequence database for every member of a taxonomic clade.

Highlights:
  - Resolves the clade from the taxonomy service, then pulls every matching
    UniParc record, optionally restricted to a list of genes.
  - Synthesizes UniProt-style FASTA headers from the cross-references that
    fall inside the clade.
  - Removes exact duplicates and sequences contained in longer ones.
  - Configure via file ($HOME/.proteoparc/config.toml), PROTEOPARC_* env, or flags.`

var exampleUsage = strings.TrimSpace(`
  proteoparc --tax-id 9604 --gene TP53 --gene BRCA1 --output-dir out
  proteoparc --tax-id 40674 --gene-file genes.txt --mode fanout --workers 16
  proteoparc --config hominidae.toml --gene-file genes.txt --watch
  proteoparc reduce --input combined.fasta --output-dir out
`)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log, _ := cliconfig.Logger("info")

	root := &cobra.Command{
		Use:           "proteoparc",
		Short:         "Build clade-scoped protein sequence databases from UniParc",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// defaults plus explicit flags, before file and env are layered on
			flagCfg := cfg
			if err := loadConfig(cmd, &cfg, cfgFile); err != nil {
				return err
			}
			logger, err := cliconfig.Logger(cfg.LogLevel)
			if err != nil {
				return err
			}
			log = logger
			log.Info().Interface("config", cfg).Msg("configuration")

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := runBuild(ctx, cmd.OutOrStdout(), cfg, log); err != nil {
				return err
			}
			if !cfg.Watch {
				return nil
			}

			paths := []string{cfg.GeneFile}
			if cliconfig.FileExists(cfgFile) {
				paths = append(paths, cfgFile)
			}
			w := watch.New(paths, watch.DefaultDebounce, log)
			return w.Run(ctx, func(ctx context.Context) {
				next := flagCfg
				if err := loadConfig(cmd, &next, cfgFile); err != nil {
					log.Error().Err(err).Msg("reload configuration")
					return
				}
				if err := runBuild(ctx, cmd.OutOrStdout(), next, log); err != nil {
					log.Error().Err(err).Msg("rebuild failed")
					red.Fprintf(cmd.ErrOrStderr(), "rebuild failed: %v\n", err)
				}
			})
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.proteoparc/config.toml)")
	root.Flags().Int64Var(&cfg.TaxID, "tax-id", cfg.TaxID, "root taxon id of the clade")
	root.Flags().StringSliceVar(&cfg.Genes, "gene", cfg.Genes, "gene name to restrict the search to (repeatable)")
	root.Flags().StringVar(&cfg.GeneFile, "gene-file", cfg.GeneFile, "file with one gene name per line")
	root.Flags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for output files")
	root.Flags().StringVar(&cfg.Project, "project", cfg.Project, "prefix for output file names (default: taxon_<tax-id>)")

	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base URL of the taxonomy and UniParc services")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout per request")
	root.Flags().IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "records per search page")
	root.Flags().IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "attempts per request, first one included")
	root.Flags().DurationVar(&cfg.BackoffInitial, "backoff-initial", cfg.BackoffInitial, "wait before the first retry")
	root.Flags().DurationVar(&cfg.BackoffMax, "backoff-max", cfg.BackoffMax, "maximum wait between retries")

	root.Flags().StringVar(&cfg.Mode, "mode", cfg.Mode, "fetch mode: pages or fanout")
	root.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent entry requests in fanout mode")
	root.Flags().BoolVar(&cfg.ContinueOnError, "continue-on-error", cfg.ContinueOnError, "keep fetching other genes when one fails")

	root.Flags().BoolVar(&cfg.RemoveRedundant, "remove-redundant", cfg.RemoveRedundant, "drop duplicate and contained sequences")
	root.Flags().BoolVar(&cfg.StripIsoform, "strip-isoform", cfg.StripIsoform, "remove the word 'isoform' from headers")
	root.Flags().BoolVar(&cfg.Provenance, "provenance", cfg.Provenance, "write a per-record source listing (TSV)")
	root.Flags().Float64Var(&cfg.MemoryFraction, "memory-fraction", cfg.MemoryFraction, "largest share of physical memory redundancy removal may use (0 disables the check)")
	root.Flags().IntVar(&cfg.ReduceWorkers, "reduce-workers", cfg.ReduceWorkers, "goroutines for the containment scan")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "rebuild whenever the gene file or config file changes")

	root.AddCommand(newReduceCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("proteoparc")
		os.Exit(1)
	}
}

// loadConfig layers file and environment values under the flags the user
// set explicitly, then validates.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgFile string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	// Apply environment variables (PROTEOPARC_*)
	// These override file config but are overridden by flags (checked via changed map)
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cfg.Validate()
}

func runBuild(ctx context.Context, out io.Writer, cfg cliconfig.Config, log zerolog.Logger) error {
	res, err := proteoparc.Build(ctx, cfg,
		proteoparc.WithLogger(log),
		proteoparc.WithEventHandler(&scopePrinter{out: out}),
	)
	if err != nil {
		var se *domain.StageError
		if errors.As(err, &se) {
			red.Fprintf(out, "%s stage failed for %s\n", se.Stage, se.Scope)
		}
		return err
	}

	if res.Empty() {
		yellow.Fprintf(out, "no proteins found for taxon %d\n", cfg.TaxID)
		return nil
	}

	files, err := proteoparc.WriteOutputs(cfg, res)
	if err != nil {
		return err
	}
	printSummary(out, res, files)
	return nil
}

func printSummary(out io.Writer, res *proteoparc.Result, files proteoparc.Outputs) {
	fmt.Fprintf(out, "clade %s (%d) has %d taxa\n", res.Taxon.Name, res.Taxon.Root, res.Taxon.Size())
	green.Fprintf(out, "%d records collected", len(res.Collection))
	if res.Dropped > 0 {
		yellow.Fprintf(out, ", %d dropped for missing fields", res.Dropped)
	}
	fmt.Fprintln(out)
	if rr := res.Reduced; rr != nil {
		green.Fprintf(out, "%d records retained", len(rr.Retained))
		fmt.Fprintf(out, " (%d exact duplicates, %d contained sequences removed)\n", rr.ExactCount, rr.SubstringCount)
	}
	for _, f := range res.Failed {
		red.Fprintf(out, "skipped %s: %v\n", f.Scope, f.Err)
	}

	fmt.Fprintf(out, "wrote %s\n", files.Database)
	if files.Redundant != "" {
		fmt.Fprintf(out, "wrote %s\n", files.Redundant)
	}
	if files.Provenance != "" {
		fmt.Fprintf(out, "wrote %s\n", files.Provenance)
	}
}

// scopePrinter prints one line per completed scope.
type scopePrinter struct {
	out io.Writer
}

func (p *scopePrinter) OnScopeDone(scope domain.Scope, records int) {
	if records == 0 {
		yellow.Fprintf(p.out, "%s: no records\n", scope)
		return
	}
	green.Fprintf(p.out, "%s: %d records\n", scope, records)
}

func (p *scopePrinter) OnScopeError(scope domain.Scope, err error) {
	red.Fprintf(p.out, "%s: %v\n", scope, err)
}
