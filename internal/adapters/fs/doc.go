// Package fs reads and writes the files a build produces: FASTA
// collections and the provenance sidecar.
package fs
