package ports

import "context"

// TaxonomyService answers questions about the external taxonomy.
type TaxonomyService interface {
	// Descendants returns every strict descendant of root.
	// The root itself is not part of the answer.
	Descendants(ctx context.Context, root int64) ([]int64, error)

	// ScientificName returns the display name of id, or "" if unknown.
	ScientificName(ctx context.Context, id int64) (string, error)
}
