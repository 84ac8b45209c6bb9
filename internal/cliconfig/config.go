package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultServiceURL is the base URL of the taxonomy and archive services.
const DefaultServiceURL = "https://rest.uniprot.org"

// Fetch modes accepted by --mode.
const (
	ModePages  = "pages"
	ModeFanOut = "fanout"
)

// Config holds CLI configuration for proteoparc.
type Config struct {
	TaxID     int64
	Genes     []string
	GeneFile  string
	OutputDir string
	Project   string

	ServiceURL     string
	HTTPTimeout    time.Duration
	PageSize       int
	MaxAttempts    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	Mode            string
	Workers         int
	ContinueOnError bool

	RemoveRedundant bool
	StripIsoform    bool
	Provenance      bool
	MemoryFraction  float64
	ReduceWorkers   int

	LogLevel string
	Watch    bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputDir:       ".",
		ServiceURL:      DefaultServiceURL,
		HTTPTimeout:     60 * time.Second,
		PageSize:        500,
		MaxAttempts:     5,
		BackoffInitial:  250 * time.Millisecond,
		BackoffMax:      10 * time.Second,
		Mode:            ModePages,
		Workers:         8,
		RemoveRedundant: true,
		StripIsoform:    true,
		MemoryFraction:  0.5,
		ReduceWorkers:   1,
		LogLevel:        "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.TaxID <= 0 {
		return fmt.Errorf("tax-id is required and must be positive")
	}

	if c.Project == "" {
		c.Project = "taxon_" + strconv.FormatInt(c.TaxID, 10)
	}
	if strings.ContainsAny(c.Project, `/\`) {
		return fmt.Errorf("project name %q must not contain path separators", c.Project)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}

	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")

	switch c.Mode {
	case "":
		c.Mode = ModePages
	case ModePages, ModeFanOut:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModePages, ModeFanOut, c.Mode)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	if c.BackoffInitial <= 0 || c.BackoffMax < c.BackoffInitial {
		return fmt.Errorf("backoff must satisfy 0 < initial <= max")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.MemoryFraction < 0 || c.MemoryFraction > 1 {
		return fmt.Errorf("memory fraction must be within [0, 1]")
	}
	if c.ReduceWorkers <= 0 {
		c.ReduceWorkers = 1
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value if positive and flag not changed.
func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value from a pointer if not nil and flag not changed.
// Zero is a valid value; range checks are left to Validate.
func (s *configSetter) setFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination if valid.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// An explicit "0" is applied. Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
