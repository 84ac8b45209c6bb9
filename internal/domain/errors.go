package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Stage names the pipeline step a hard failure happened in.
type Stage string

const (
	StageTaxonomy  Stage = "taxonomy"
	StageFetch     Stage = "fetch"
	StageSynthesis Stage = "synthesis"
	StageReduce    Stage = "reduce"
)

// Scope identifies one archive query: a taxon and, for gene-scoped
// queries, a gene name.
type Scope struct {
	TaxID int64
	Gene  string
}

// String renders the scope for log lines and error messages.
func (s Scope) String() string {
	if s.Gene == "" {
		return "taxon " + strconv.FormatInt(s.TaxID, 10)
	}
	return "taxon " + strconv.FormatInt(s.TaxID, 10) + ", gene " + s.Gene
}

var (
	// ErrInvalidTaxID is returned when a taxon id is zero or negative.
	ErrInvalidTaxID = errors.New("proteoparc: invalid taxon id")

	// ErrNoCrossReferences is the cause attached to a FormatError for a
	// record that carries no cross-references at all.
	ErrNoCrossReferences = errors.New("record has no cross-references")
)

// TransportError is a network-level failure. It is always retryable.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a non-2xx response from the remote service.
type ServiceError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// FormatError marks a single record that is missing a mandatory field.
// The record is dropped; the batch it came from continues.
type FormatError struct {
	ID    string
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unknown>"
	}
	if e.Err != nil {
		return fmt.Sprintf("record %s: %v", id, e.Err)
	}
	return fmt.Sprintf("record %s: missing %s", id, e.Field)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ResourceExhaustionError is returned when a collection is too large to
// reduce within the configured memory budget.
type ResourceExhaustionError struct {
	Records int
	Needed  int64
	Budget  int64
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("collection of %d records needs ~%d bytes, budget is %d bytes",
		e.Records, e.Needed, e.Budget)
}

// StageError attaches the failing stage and query scope to a hard failure.
type StageError struct {
	Stage Stage
	Scope Scope
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Stage, e.Scope, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
