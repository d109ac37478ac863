// Package types defines the shared data model for the retrieval engine:
// knowledge-graph nodes, edges, and paths, the opaque document records
// returned by source search adapters, and the fused search results the
// engine produces. Node and relationship kinds are closed string enums so
// unrecognized values surface at the type level instead of as silent
// default weights.
package types
