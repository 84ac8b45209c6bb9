package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	TaxID           int64    `toml:"tax_id"`
	Genes           []string `toml:"genes"`
	GeneFile        string   `toml:"gene_file"`
	OutputDir       string   `toml:"output_dir"`
	Project         string   `toml:"project"`
	ServiceURL      string   `toml:"service_url"`
	HTTPTimeout     string   `toml:"http_timeout"`
	PageSize        int      `toml:"page_size"`
	MaxAttempts     int      `toml:"max_attempts"`
	BackoffInitial  string   `toml:"backoff_initial"`
	BackoffMax      string   `toml:"backoff_max"`
	Mode            string   `toml:"mode"`
	Workers         int      `toml:"workers"`
	ContinueOnError *bool    `toml:"continue_on_error"`
	RemoveRedundant *bool    `toml:"remove_redundant"`
	StripIsoform    *bool    `toml:"strip_isoform"`
	Provenance      *bool    `toml:"provenance"`
	MemoryFraction  *float64 `toml:"memory_fraction"`
	ReduceWorkers   int      `toml:"reduce_workers"`
	LogLevel        string   `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.proteoparc/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".proteoparc", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt64("tax-id", fc.TaxID, &cfg.TaxID)
	if len(fc.Genes) > 0 && !changed["gene"] {
		cfg.Genes = fc.Genes
	}
	s.setString("gene-file", fc.GeneFile, &cfg.GeneFile)
	s.setString("output-dir", fc.OutputDir, &cfg.OutputDir)
	s.setString("project", fc.Project, &cfg.Project)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("mode", fc.Mode, &cfg.Mode)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("backoff-initial", fc.BackoffInitial, &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", fc.BackoffMax, &cfg.BackoffMax); err != nil {
		return err
	}

	s.setInt("page-size", fc.PageSize, &cfg.PageSize)
	s.setInt("max-attempts", fc.MaxAttempts, &cfg.MaxAttempts)
	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("reduce-workers", fc.ReduceWorkers, &cfg.ReduceWorkers)
	s.setFloat("memory-fraction", fc.MemoryFraction, &cfg.MemoryFraction)

	s.setBool("continue-on-error", fc.ContinueOnError, &cfg.ContinueOnError)
	s.setBool("remove-redundant", fc.RemoveRedundant, &cfg.RemoveRedundant)
	s.setBool("strip-isoform", fc.StripIsoform, &cfg.StripIsoform)
	s.setBool("provenance", fc.Provenance, &cfg.Provenance)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
