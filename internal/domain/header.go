package domain

import (
	"slices"
	"strconv"
	"strings"
)

// HeaderOptions tunes header synthesis.
type HeaderOptions struct {
	// StripIsoform removes the word " isoform" from protein names.
	StripIsoform bool
}

// headerCleaner drops characters that would break delimited downstream
// formats and folds line breaks, which would break FASTA itself.
var headerCleaner = strings.NewReplacer(
	",", "",
	";", "",
	":", "",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// Synthesize converts one archive record into a SequenceRecord.
//
// The first cross-reference whose organism lies inside taxon supplies the
// metadata. When none does, the first cross-reference is used with the
// organism replaced by the taxon root and its name. A non-empty geneHint
// marks a gene-scoped fetch: it wins over any gene name on the record and
// is appended to the archive id.
//
// The header layout is
//
//	REPO|ID[_GENE]|DATE[ PROTEIN] OS=SPECIES OX=TAXID[ GN=GENE] SV=VERSION
//
// with commas, semicolons and colons removed.
func Synthesize(raw RawRecord, taxon Taxon, geneHint string, opts HeaderOptions) (SequenceRecord, error) {
	if raw.ID == "" {
		return SequenceRecord{}, &FormatError{Field: "id"}
	}
	if raw.Sequence == "" {
		return SequenceRecord{}, &FormatError{ID: raw.ID, Field: "sequence"}
	}
	if len(raw.CrossReferences) == 0 {
		return SequenceRecord{}, &FormatError{ID: raw.ID, Field: "cross-references", Err: ErrNoCrossReferences}
	}

	xref, ok := firstInClade(raw.CrossReferences, taxon)
	var species string
	var taxID int64
	if ok {
		species = xref.Organism.ScientificName
		taxID = xref.Organism.TaxID
	} else {
		// out-of-clade entries are not ranked
		xref = raw.CrossReferences[0]
		species = taxon.Name
		taxID = taxon.Root
	}
	if species == "" {
		species = strconv.FormatInt(taxID, 10)
	}

	gene := geneHint
	if gene == "" && xref.GeneName != "" {
		gene = strings.ToUpper(xref.GeneName)
	}

	protein := xref.ProteinName
	if opts.StripIsoform {
		protein = strings.ReplaceAll(protein, " isoform", "")
		protein = strings.TrimPrefix(protein, "isoform ")
	}

	var b strings.Builder
	b.WriteString(xref.Database)
	b.WriteByte('|')
	b.WriteString(raw.ID)
	if geneHint != "" {
		b.WriteByte('_')
		b.WriteString(geneHint)
	}
	b.WriteByte('|')
	b.WriteString(xref.LastUpdated)
	if protein != "" {
		b.WriteByte(' ')
		b.WriteString(protein)
	}
	b.WriteString(" OS=")
	b.WriteString(species)
	b.WriteString(" OX=")
	b.WriteString(strconv.FormatInt(taxID, 10))
	if gene != "" {
		b.WriteString(" GN=")
		b.WriteString(gene)
	}
	b.WriteString(" SV=")
	b.WriteString(strconv.Itoa(xref.Version))

	return SequenceRecord{
		Header:   headerCleaner.Replace(b.String()),
		Sequence: raw.Sequence,
	}, nil
}

func firstInClade(xrefs []CrossReference, taxon Taxon) (CrossReference, bool) {
	for _, x := range xrefs {
		if x.Organism == nil {
			continue
		}
		if taxon.Contains(x.Organism.TaxID) {
			return x, true
		}
	}
	return CrossReference{}, false
}

// Provenance lists the distinct sources observed for one archive id inside
// the clade, in first-seen order. It feeds the audit sidecar.
type Provenance struct {
	ID        string
	Databases []string
	Species   []string
	TaxIDs    []int64
}

// Ambiguous reports whether more than one species contributed the record.
func (p Provenance) Ambiguous() bool {
	return len(p.TaxIDs) > 1
}

// CollectProvenance gathers every in-clade cross-reference of raw.
func CollectProvenance(raw RawRecord, taxon Taxon) Provenance {
	p := Provenance{ID: raw.ID}
	seenDB := map[string]bool{}
	seenSpecies := map[string]bool{}
	seenTax := map[int64]bool{}
	for _, x := range raw.CrossReferences {
		if x.Organism == nil || !taxon.Contains(x.Organism.TaxID) {
			continue
		}
		if x.Database != "" && !seenDB[x.Database] {
			seenDB[x.Database] = true
			p.Databases = append(p.Databases, x.Database)
		}
		if name := x.Organism.ScientificName; name != "" && !seenSpecies[name] {
			seenSpecies[name] = true
			p.Species = append(p.Species, name)
		}
		if !seenTax[x.Organism.TaxID] {
			seenTax[x.Organism.TaxID] = true
			p.TaxIDs = append(p.TaxIDs, x.Organism.TaxID)
		}
	}
	return p
}

// Merge folds o into p, keeping first-seen order and skipping duplicates.
// It is used when the same archive id is returned by several gene scopes.
func (p *Provenance) Merge(o Provenance) {
	p.Databases = appendMissing(p.Databases, o.Databases)
	p.Species = appendMissing(p.Species, o.Species)
	for _, id := range o.TaxIDs {
		if !slices.Contains(p.TaxIDs, id) {
			p.TaxIDs = append(p.TaxIDs, id)
		}
	}
}

func appendMissing(dst, src []string) []string {
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
