// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [TaxonomyService]: lists the descendants of a taxon and names it
//   - [ArchiveService]: searches the sequence archive page by page and
//     fetches single entries
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// internal/adapters/uniprot implements them over the UniProt REST API.
package ports
