package cliconfig

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"
)

// LoadGeneList reads one gene name per line. Surrounding whitespace is
// trimmed, blank lines are skipped and duplicates keep their first position.
func LoadGeneList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gene list: %w", err)
	}
	defer f.Close()

	var genes []string
	seen := map[string]bool{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		g := strings.TrimSpace(sc.Text())
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		genes = append(genes, g)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gene list: %w", err)
	}
	return genes, nil
}

// ResolveGenes merges genes named directly with those listed in the gene
// file, keeping first-seen order.
func ResolveGenes(cfg Config) ([]string, error) {
	genes := append([]string(nil), cfg.Genes...)
	if cfg.GeneFile != "" {
		fromFile, err := LoadGeneList(cfg.GeneFile)
		if err != nil {
			return nil, err
		}
		for _, g := range fromFile {
			if !slices.Contains(genes, g) {
				genes = append(genes, g)
			}
		}
	}
	return genes, nil
}
