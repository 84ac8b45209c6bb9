// Package domain contains the core entities and pure transforms of proteoparc.
//
// This package is the innermost layer. It has no dependencies on HTTP, the
// file system or logging, and every function in it is safe to call from
// multiple goroutines at once.
//
// # Entities
//
//   - [Taxon]: a root taxon id and its resolved descendant set
//   - [RawRecord]: one archive entry as returned by the remote service
//   - [SequenceRecord]: a canonical header plus amino-acid sequence
//   - [Collection]: records in discovery order
//   - [RedundancyResult]: retained and removed records after reduction
//
// # Transforms
//
//   - [Synthesize]: builds a [SequenceRecord] from a [RawRecord]
//   - [CollectProvenance]: lists every repository, species and taxon id a
//     record was observed with inside the clade
package domain
