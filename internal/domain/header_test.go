package domain

import (
	"errors"
	"strings"
	"testing"
)

func hominidae() Taxon {
	return NewTaxon(9604, "Hominidae", []int64{9605, 9606, 9598})
}

func TestNewTaxon_IncludesRoot(t *testing.T) {
	tx := NewTaxon(9604, "Hominidae", []int64{9606})
	if !tx.Contains(9604) {
		t.Error("root missing from descendant set")
	}
	if !tx.Contains(9606) {
		t.Error("descendant 9606 missing")
	}
	if tx.Contains(10090) {
		t.Error("unexpected member 10090")
	}
	if tx.Size() != 2 {
		t.Errorf("Size() = %d, want 2", tx.Size())
	}

	empty := NewTaxon(1, "", nil)
	if !empty.Contains(1) || empty.Size() != 1 {
		t.Error("root-only taxon should contain exactly its root")
	}
}

func TestSynthesize(t *testing.T) {
	human := &Organism{ScientificName: "Homo sapiens", TaxID: 9606}
	mouse := &Organism{ScientificName: "Mus musculus", TaxID: 10090}

	tests := []struct {
		name     string
		raw      RawRecord
		gene     string
		opts     HeaderOptions
		want     string
		wantSeq  string
	}{
		{
			name: "whole clade with gene on record",
			raw: RawRecord{
				ID:       "UPI0000000001",
				Sequence: "MPIVCLGLLVFGLT",
				CrossReferences: []CrossReference{
					{Database: "RefSeq", LastUpdated: "2023-05-03", ProteinName: "hemoglobin subunit beta", GeneName: "hbb", Version: 2, Organism: human},
				},
			},
			want:    "RefSeq|UPI0000000001|2023-05-03 hemoglobin subunit beta OS=Homo sapiens OX=9606 GN=HBB SV=2",
			wantSeq: "MPIVCLGLLVFGLT",
		},
		{
			name: "gene hint wins and suffixes id",
			raw: RawRecord{
				ID:       "UPI0000000002",
				Sequence: "MKV",
				CrossReferences: []CrossReference{
					{Database: "EMBL", LastUpdated: "2020-01-01", GeneName: "other", Version: 1, Organism: human},
				},
			},
			gene:    "TP53",
			want:    "EMBL|UPI0000000002_TP53|2020-01-01 OS=Homo sapiens OX=9606 GN=TP53 SV=1",
			wantSeq: "MKV",
		},
		{
			name: "skips out of clade and organism-less entries",
			raw: RawRecord{
				ID:       "UPI0000000003",
				Sequence: "MAAA",
				CrossReferences: []CrossReference{
					{Database: "PDB", LastUpdated: "2019-02-02", Version: 1},
					{Database: "TrEMBL", LastUpdated: "2018-03-03", ProteinName: "mouse thing", Version: 4, Organism: mouse},
					{Database: "SwissProt", LastUpdated: "2021-04-04", ProteinName: "human thing", Version: 3, Organism: human},
				},
			},
			want:    "SwissProt|UPI0000000003|2021-04-04 human thing OS=Homo sapiens OX=9606 SV=3",
			wantSeq: "MAAA",
		},
		{
			name: "falls back to requested taxon",
			raw: RawRecord{
				ID:       "UPI0000000004",
				Sequence: "MCCC",
				CrossReferences: []CrossReference{
					{Database: "TrEMBL", LastUpdated: "2018-03-03", ProteinName: "mouse thing", Version: 4, Organism: mouse},
				},
			},
			want:    "TrEMBL|UPI0000000004|2018-03-03 mouse thing OS=Hominidae OX=9604 SV=4",
			wantSeq: "MCCC",
		},
		{
			name: "strips delimiters from every field",
			raw: RawRecord{
				ID:       "UPI0000000005",
				Sequence: "MDDD",
				CrossReferences: []CrossReference{
					{Database: "Ref:Seq", LastUpdated: "2023-05-03", ProteinName: "protein, putative; fragment: N-term", Version: 1,
						Organism: &Organism{ScientificName: "Homo sapiens; neanderthal", TaxID: 9606}},
				},
			},
			want:    "RefSeq|UPI0000000005|2023-05-03 protein putative fragment N-term OS=Homo sapiens neanderthal OX=9606 SV=1",
			wantSeq: "MDDD",
		},
		{
			name: "strips isoform word when asked",
			raw: RawRecord{
				ID:       "UPI0000000006",
				Sequence: "MEEE",
				CrossReferences: []CrossReference{
					{Database: "RefSeq", LastUpdated: "2023-05-03", ProteinName: "kinase isoform X2", Version: 1, Organism: human},
				},
			},
			opts:    HeaderOptions{StripIsoform: true},
			want:    "RefSeq|UPI0000000006|2023-05-03 kinase X2 OS=Homo sapiens OX=9606 SV=1",
			wantSeq: "MEEE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Synthesize(tt.raw, hominidae(), tt.gene, tt.opts)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			if got.Header != tt.want {
				t.Errorf("Header =\n  %q\nwant\n  %q", got.Header, tt.want)
			}
			if got.Sequence != tt.wantSeq {
				t.Errorf("Sequence = %q, want %q", got.Sequence, tt.wantSeq)
			}
		})
	}
}

func TestSynthesize_NeverEmitsDelimiters(t *testing.T) {
	nasty := "a,b;c:d\ne"
	raw := RawRecord{
		ID:       "UPI,1;2:3",
		Sequence: "MK",
		CrossReferences: []CrossReference{
			{Database: nasty, LastUpdated: nasty, ProteinName: nasty, GeneName: nasty, Version: 1,
				Organism: &Organism{ScientificName: nasty, TaxID: 9606}},
		},
	}
	for _, gene := range []string{"", "G:1,2;3"} {
		got, err := Synthesize(raw, hominidae(), gene, HeaderOptions{})
		if err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
		if strings.ContainsAny(got.Header, ",;:\n") {
			t.Errorf("header %q contains a forbidden character", got.Header)
		}
	}
}

func TestSynthesize_MissingMandatoryFields(t *testing.T) {
	xref := []CrossReference{{Database: "RefSeq", Organism: &Organism{TaxID: 9606}}}

	tests := []struct {
		name      string
		raw       RawRecord
		wantField string
	}{
		{"no id", RawRecord{Sequence: "MK", CrossReferences: xref}, "id"},
		{"no sequence", RawRecord{ID: "UPI1", CrossReferences: xref}, "sequence"},
		{"no cross-references", RawRecord{ID: "UPI1", Sequence: "MK"}, "cross-references"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Synthesize(tt.raw, hominidae(), "", HeaderOptions{})
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FormatError", err)
			}
			if fe.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", fe.Field, tt.wantField)
			}
		})
	}
}

func TestCollectProvenance(t *testing.T) {
	raw := RawRecord{
		ID: "UPI9",
		CrossReferences: []CrossReference{
			{Database: "RefSeq", Organism: &Organism{ScientificName: "Homo sapiens", TaxID: 9606}},
			{Database: "EMBL", Organism: &Organism{ScientificName: "Pan troglodytes", TaxID: 9598}},
			{Database: "RefSeq", Organism: &Organism{ScientificName: "Homo sapiens", TaxID: 9606}},
			{Database: "TrEMBL", Organism: &Organism{ScientificName: "Mus musculus", TaxID: 10090}},
			{Database: "PDB"},
		},
	}

	p := CollectProvenance(raw, hominidae())
	if strings.Join(p.Databases, ",") != "RefSeq,EMBL" {
		t.Errorf("Databases = %v", p.Databases)
	}
	if strings.Join(p.Species, ",") != "Homo sapiens,Pan troglodytes" {
		t.Errorf("Species = %v", p.Species)
	}
	if len(p.TaxIDs) != 2 || p.TaxIDs[0] != 9606 || p.TaxIDs[1] != 9598 {
		t.Errorf("TaxIDs = %v", p.TaxIDs)
	}
	if !p.Ambiguous() {
		t.Error("record seen in two species should be ambiguous")
	}
}

func TestProvenance_Merge(t *testing.T) {
	p := Provenance{ID: "UPI9", Databases: []string{"RefSeq"}, Species: []string{"Homo sapiens"}, TaxIDs: []int64{9606}}
	p.Merge(Provenance{ID: "UPI9", Databases: []string{"EMBL", "RefSeq"}, Species: []string{"Homo sapiens"}, TaxIDs: []int64{9606, 9598}})

	if strings.Join(p.Databases, ",") != "RefSeq,EMBL" {
		t.Errorf("Databases = %v", p.Databases)
	}
	if len(p.Species) != 1 {
		t.Errorf("Species = %v", p.Species)
	}
	if len(p.TaxIDs) != 2 || p.TaxIDs[1] != 9598 {
		t.Errorf("TaxIDs = %v", p.TaxIDs)
	}
}
