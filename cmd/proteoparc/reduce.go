package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proteoparc/proteoparc"
	"github.com/proteoparc/proteoparc/internal/cliconfig"
)

func newReduceCmd() *cobra.Command {
	var (
		input     string
		outputDir string
		fraction  float64
		workers   int
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Remove duplicate and contained sequences from an existing FASTA file",
		Long: `Reduce an existing multi-FASTA file. The first record of every distinct
sequence is kept, then every sequence contained in a strictly longer one is
removed. Retained records are written to ` + proteoparc.FilteredFileName + ` and
removed ones to ` + proteoparc.RedundantFileName + `, both in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := cliconfig.Logger(logLevel)
			if err != nil {
				return err
			}

			rr, err := proteoparc.ReduceFile(input, outputDir, fraction, workers)
			if err != nil {
				return err
			}
			log.Info().
				Str("input", input).
				Int("retained", len(rr.Retained)).
				Int("removed", len(rr.Removed)).
				Msg("reduce complete")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "exact duplicates removed: ")
			green.Fprintf(out, "%d\n", rr.ExactCount)
			fmt.Fprintf(out, "contained sequences removed: ")
			green.Fprintf(out, "%d\n", rr.SubstringCount)
			fmt.Fprintf(out, "records retained: ")
			green.Fprintf(out, "%d\n", len(rr.Retained))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "multi-FASTA file to reduce")
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "directory for "+proteoparc.FilteredFileName+" and "+proteoparc.RedundantFileName)
	cmd.Flags().Float64Var(&fraction, "memory-fraction", 0.5, "largest share of physical memory to use (0 disables the check)")
	cmd.Flags().IntVar(&workers, "workers", 1, "goroutines for the containment scan")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
	return cmd
}
