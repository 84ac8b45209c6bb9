package uniprot

import "github.com/proteoparc/proteoparc/internal/domain"

// entryJSON is the UniParc entry shape. Optional fields decode to their
// zero value; mandatory ones are checked during synthesis.
type entryJSON struct {
	UniParcID       string        `json:"uniParcId"`
	CrossReferences []xrefJSON    `json:"uniParcCrossReferences"`
	Sequence        *sequenceJSON `json:"sequence"`
}

type sequenceJSON struct {
	Value  string `json:"value"`
	Length int    `json:"length"`
}

type xrefJSON struct {
	Database    string        `json:"database"`
	ID          string        `json:"id"`
	LastUpdated string        `json:"lastUpdated"`
	ProteinName string        `json:"proteinName"`
	GeneName    string        `json:"geneName"`
	VersionI    int           `json:"versionI"`
	Organism    *organismJSON `json:"organism"`
}

type organismJSON struct {
	ScientificName string `json:"scientificName"`
	TaxonID        int64  `json:"taxonId"`
}

type searchJSON struct {
	Results []entryJSON `json:"results"`
}

type taxonomyJSON struct {
	Results []struct {
		TaxonID        int64  `json:"taxonId"`
		ScientificName string `json:"scientificName"`
	} `json:"results"`
}

// ToRecord converts the wire entry to a domain RawRecord.
func (e entryJSON) ToRecord() domain.RawRecord {
	rec := domain.RawRecord{
		ID:              e.UniParcID,
		CrossReferences: make([]domain.CrossReference, 0, len(e.CrossReferences)),
	}
	if e.Sequence != nil {
		rec.Sequence = e.Sequence.Value
	}
	for _, x := range e.CrossReferences {
		xr := domain.CrossReference{
			Database:    x.Database,
			LastUpdated: x.LastUpdated,
			ProteinName: x.ProteinName,
			GeneName:    x.GeneName,
			Version:     x.VersionI,
		}
		if x.Organism != nil {
			xr.Organism = &domain.Organism{
				ScientificName: x.Organism.ScientificName,
				TaxID:          x.Organism.TaxonID,
			}
		}
		rec.CrossReferences = append(rec.CrossReferences, xr)
	}
	return rec
}
