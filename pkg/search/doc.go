// Package search implements graph-side retrieval: recognizing knowledge
// graph entities in a free-text query and expanding outward from them with a
// depth-bounded breadth-first traversal. Every traversal step is scored by a
// bounded [0,1] heuristic combining node-type weight, relationship-type
// weight, and name-match strength, and multi-entity results are merged with
// deterministic deduplication rules.
package search
