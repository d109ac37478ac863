// Package graph loads knowledge-graph snapshots into an immutable in-memory
// index with O(1) node and outgoing-edge lookup. The index is shared
// read-only across concurrent queries; refreshing a snapshot swaps the whole
// index through an atomic Handle. A missing or corrupt snapshot degrades to
// an empty graph instead of failing the process.
package graph
