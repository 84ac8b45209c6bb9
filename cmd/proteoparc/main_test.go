package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/proteoparc/proteoparc"
	"github.com/proteoparc/proteoparc/internal/domain"
)

func init() {
	color.NoColor = true
}

func TestReduceCmd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "combined.fasta")
	if err := os.WriteFile(input, []byte(">a\nMKVL\n>b\nKV\n>c\nMKVL\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newReduceCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--input", input, "--output-dir", dir, "--memory-fraction", "0", "--log-level", "error"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, want := range []string{"exact duplicates removed: 1", "contained sequences removed: 1", "records retained: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, proteoparc.FilteredFileName)); err != nil {
		t.Errorf("filtered file: %v", err)
	}
}

func TestReduceCmd_RequiresInput(t *testing.T) {
	cmd := newReduceCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err == nil {
		t.Error("expected error without --input")
	}
}

func TestScopePrinter(t *testing.T) {
	var out bytes.Buffer
	p := &scopePrinter{out: &out}
	p.OnScopeDone(domain.Scope{TaxID: 9604, Gene: "TP53"}, 12)
	p.OnScopeDone(domain.Scope{TaxID: 9604, Gene: "NOPE"}, 0)
	p.OnScopeError(domain.Scope{TaxID: 9604, Gene: "BRCA1"}, errors.New("server returned 503"))

	want := "taxon 9604, gene TP53: 12 records\n" +
		"taxon 9604, gene NOPE: no records\n" +
		"taxon 9604, gene BRCA1: server returned 503\n"
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}
}
