// Package fusion combines ranked document lists from several search sources
// into one scored, deduplicated result set.
//
// A query fans out concurrently to four adapter-backed searches (vector,
// bm25, keyword, title) and one graph search, each under its own timeout and
// circuit breaker. Contributions are fused additively: a document's final
// score is the sum of its per-source scores multiplied by that source's
// weight, so documents surfaced by several sources rank above equally-scored
// single-source hits. Source failures degrade the result instead of failing
// the query.
package fusion
