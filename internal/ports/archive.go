package ports

import (
	"context"

	"github.com/proteoparc/proteoparc/internal/domain"
)

// Page is one page of a paginated archive search.
type Page struct {
	// Records holds the full entries of this page.
	Records []domain.RawRecord

	// Total is the total result count reported for the whole query.
	Total int
}

// IDPage is one page of a paginated identifier listing.
type IDPage struct {
	IDs   []string
	Total int
}

// ArchiveService queries the sequence archive.
// Implementations own pagination and retries; a query scope either yields
// every page or returns an error.
type ArchiveService interface {
	// Search walks every page of the query for scope and calls visit once
	// per page, in page order. A query with no hits yields one page with
	// Total 0. Returning an error from visit stops the walk.
	Search(ctx context.Context, scope domain.Scope, visit func(Page) error) error

	// SearchIDs is the compact variant of Search that lists identifiers only.
	SearchIDs(ctx context.Context, scope domain.Scope, visit func(IDPage) error) error

	// Entry fetches the full record for one archive identifier.
	Entry(ctx context.Context, id string) (domain.RawRecord, error)
}
