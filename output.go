package proteoparc

import (
	"path/filepath"

	"github.com/proteoparc/proteoparc/internal/adapters/fs"
)

// Standalone reduce output names.
const (
	FilteredFileName  = "filtered_database.fasta"
	RedundantFileName = "redundant_records.fasta"
)

// Outputs lists the files written for a build. Empty fields were not written.
type Outputs struct {
	Database   string
	Redundant  string
	Provenance string
}

// WriteOutputs writes res under cfg.OutputDir:
//
//	<project>_database.fasta         the final collection
//	<project>_redundant.fasta        removed records, when reduction ran
//	<project>_provenance.tsv         source lists, when provenance was collected
//
// An empty result still produces an empty database file.
func WriteOutputs(cfg Config, res *Result) (Outputs, error) {
	if err := cfg.Validate(); err != nil {
		return Outputs{}, err
	}

	var out Outputs
	out.Database = filepath.Join(cfg.OutputDir, cfg.Project+"_database.fasta")
	if err := fs.WriteFASTAFile(out.Database, res.Final()); err != nil {
		return Outputs{}, err
	}

	if res.Reduced != nil {
		out.Redundant = filepath.Join(cfg.OutputDir, cfg.Project+"_redundant.fasta")
		if err := fs.WriteFASTAFile(out.Redundant, res.Reduced.Removed); err != nil {
			return out, err
		}
	}

	if cfg.Provenance {
		out.Provenance = filepath.Join(cfg.OutputDir, cfg.Project+"_provenance.tsv")
		if err := fs.WriteProvenanceFile(out.Provenance, res.Provenance); err != nil {
			return out, err
		}
	}
	return out, nil
}

// ReduceFile reduces the FASTA file at input and writes the retained and
// removed records to outDir as FilteredFileName and RedundantFileName.
func ReduceFile(input, outDir string, memoryFraction float64, workers int) (RedundancyResult, error) {
	c, err := fs.ReadFASTAFile(input)
	if err != nil {
		return RedundancyResult{}, err
	}
	rr, err := Reduce(c, memoryFraction, workers)
	if err != nil {
		return RedundancyResult{}, err
	}
	if err := fs.WriteFASTAFile(filepath.Join(outDir, FilteredFileName), rr.Retained); err != nil {
		return rr, err
	}
	if err := fs.WriteFASTAFile(filepath.Join(outDir, RedundantFileName), rr.Removed); err != nil {
		return rr, err
	}
	return rr, nil
}
