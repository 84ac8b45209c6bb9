package domain

// Taxon is a resolved clade: the requested root and every descendant id.
// It is immutable once returned by the resolver.
type Taxon struct {
	// Root is the taxon id the user asked for.
	Root int64

	// Name is the scientific name of Root, used when a record carries no
	// cross-reference inside the clade.
	Name string

	descendants map[int64]struct{}
}

// NewTaxon builds a Taxon from a root and its strict descendants.
// The root is always added to the descendant set.
func NewTaxon(root int64, name string, descendants []int64) Taxon {
	set := make(map[int64]struct{}, len(descendants)+1)
	for _, id := range descendants {
		set[id] = struct{}{}
	}
	set[root] = struct{}{}
	return Taxon{Root: root, Name: name, descendants: set}
}

// Contains reports whether id belongs to the clade.
func (t Taxon) Contains(id int64) bool {
	_, ok := t.descendants[id]
	return ok
}

// Size returns the number of ids in the clade, root included.
func (t Taxon) Size() int {
	return len(t.descendants)
}

// Organism describes the species a cross-reference was observed in.
type Organism struct {
	ScientificName string
	TaxID          int64
}

// CrossReference is one repository's association with an archive record.
// ProteinName and GeneName are optional and empty when absent.
type CrossReference struct {
	Database    string
	LastUpdated string
	ProteinName string
	GeneName    string
	Version     int
	Organism    *Organism
}

// RawRecord is one archive entry before header synthesis.
type RawRecord struct {
	ID              string
	CrossReferences []CrossReference
	Sequence        string
}

// SequenceRecord is the canonical unit: a header and a residue sequence.
// Redundancy is judged on Sequence only.
type SequenceRecord struct {
	Header   string
	Sequence string
}

// Len returns the number of residues.
func (r SequenceRecord) Len() int {
	return len(r.Sequence)
}

// Collection is an ordered list of records. Order is discovery order and
// decides tie-breaks during reduction.
type Collection []SequenceRecord

// RedundancyResult is the outcome of reducing a Collection.
// Retained and Removed partition the input; Retained keeps input order.
type RedundancyResult struct {
	Retained       Collection
	Removed        Collection
	ExactCount     int
	SubstringCount int
}
