package fs

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/proteoparc/proteoparc/internal/domain"
)

var provenanceColumns = []string{"id", "databases", "species", "tax_ids", "ambiguous"}

// fieldCleaner keeps a value inside its column and list item.
var fieldCleaner = strings.NewReplacer(
	"\t", " ",
	";", ",",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

func joinList(items []string) string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fieldCleaner.Replace(item)
	}
	return strings.Join(out, ";")
}

// WriteProvenance writes one tab-separated row per archive id. List
// columns are joined with ';'.
func WriteProvenance(w io.Writer, rows []domain.Provenance) error {
	if _, err := io.WriteString(w, strings.Join(provenanceColumns, "\t")+"\n"); err != nil {
		return err
	}
	for _, p := range rows {
		taxIDs := make([]string, len(p.TaxIDs))
		for i, id := range p.TaxIDs {
			taxIDs[i] = strconv.FormatInt(id, 10)
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
			fieldCleaner.Replace(p.ID),
			joinList(p.Databases),
			joinList(p.Species),
			strings.Join(taxIDs, ";"),
			p.Ambiguous(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteProvenanceFile writes rows to path atomically.
func WriteProvenanceFile(path string, rows []domain.Provenance) error {
	if err := writeAtomic(path, func(w io.Writer) error { return WriteProvenance(w, rows) }); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
