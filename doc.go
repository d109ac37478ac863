// Package docsonar is a hybrid multi-source retrieval engine for synced
// documentation. It fuses vector, lexical, keyword, and title search from a
// remote document index with traversal of an in-memory knowledge graph of
// business functions, systems, keywords, pages, and labels.
//
// The entry point is NewClient, which wires the graph index, the index
// adapter, the fusion engine, and the optional reranker and evaluator from
// a single configuration. The Engine interface is the stable surface the
// HTTP server and CLI build on.
package docsonar
