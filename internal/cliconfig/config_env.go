package cliconfig

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from environment variables (PROTEOPARC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setInt64FromString("tax-id", os.Getenv("PROTEOPARC_TAX_ID"), &cfg.TaxID); err != nil {
		return err
	}
	if v := os.Getenv("PROTEOPARC_GENES"); v != "" && !changed["gene"] {
		cfg.Genes = splitList(v)
	}
	s.setString("gene-file", os.Getenv("PROTEOPARC_GENE_FILE"), &cfg.GeneFile)
	s.setString("output-dir", os.Getenv("PROTEOPARC_OUTPUT_DIR"), &cfg.OutputDir)
	s.setString("project", os.Getenv("PROTEOPARC_PROJECT"), &cfg.Project)
	s.setString("service-url", os.Getenv("PROTEOPARC_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("mode", os.Getenv("PROTEOPARC_MODE"), &cfg.Mode)
	s.setString("log-level", os.Getenv("PROTEOPARC_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("PROTEOPARC_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("backoff-initial", os.Getenv("PROTEOPARC_BACKOFF_INITIAL"), &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", os.Getenv("PROTEOPARC_BACKOFF_MAX"), &cfg.BackoffMax); err != nil {
		return err
	}

	if err := s.setIntFromString("page-size", os.Getenv("PROTEOPARC_PAGE_SIZE"), &cfg.PageSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-attempts", os.Getenv("PROTEOPARC_MAX_ATTEMPTS"), &cfg.MaxAttempts); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("PROTEOPARC_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setIntFromString("reduce-workers", os.Getenv("PROTEOPARC_REDUCE_WORKERS"), &cfg.ReduceWorkers); err != nil {
		return err
	}
	if err := s.setFloatFromString("memory-fraction", os.Getenv("PROTEOPARC_MEMORY_FRACTION"), &cfg.MemoryFraction); err != nil {
		return err
	}

	s.setBoolFromString("continue-on-error", os.Getenv("PROTEOPARC_CONTINUE_ON_ERROR"), &cfg.ContinueOnError)
	s.setBoolFromString("remove-redundant", os.Getenv("PROTEOPARC_REMOVE_REDUNDANT"), &cfg.RemoveRedundant)
	s.setBoolFromString("strip-isoform", os.Getenv("PROTEOPARC_STRIP_ISOFORM"), &cfg.StripIsoform)
	s.setBoolFromString("provenance", os.Getenv("PROTEOPARC_PROVENANCE"), &cfg.Provenance)

	return nil
}

// splitList splits a comma separated list, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
