package search

import (
	"log/slog"

	"github.com/docsonar/docsonar/pkg/graph"
	"github.com/docsonar/docsonar/pkg/types"
)

// entityNodeTypes are the node kinds entity extraction scans. Pages and
// labels are targets of traversal, not query entities.
var entityNodeTypes = []types.NodeType{
	types.FunctionNodeType,
	types.KeywordNodeType,
	types.SystemItemNodeType,
}

// Searcher maps free-text queries onto the knowledge graph and expands
// outward from the recognized entities. The graph handle is injected so a
// snapshot swap is invisible to callers and tests never touch globals.
type Searcher struct {
	handle *graph.Handle
	log    *slog.Logger
	mode   TraversalMode
}

// NewSearcher creates a graph searcher over the given handle. mode selects
// the visited-set semantics for multi-start traversals; empty means
// FirstWins.
func NewSearcher(handle *graph.Handle, mode TraversalMode, log *slog.Logger) *Searcher {
	if log == nil {
		log = slog.Default()
	}
	if mode == "" {
		mode = FirstWins
	}
	return &Searcher{
		handle: handle,
		log:    log,
		mode:   mode,
	}
}

// ExtractQueryEntities returns the deduplicated names of every Function,
// Keyword, and SystemItem node whose name partially matches the query in
// either direction. An empty slice means no known entity was recognized;
// traversal then degrades to empty results for this query.
func (s *Searcher) ExtractQueryEntities(query string) []string {
	idx := s.handle.Index()

	var names []string
	seen := make(map[string]bool)

	for _, entityType := range entityNodeTypes {
		for _, node := range idx.Nodes() {
			if node.Type != entityType {
				continue
			}
			if !partialNameMatch(node.Name, query) {
				continue
			}
			if seen[node.Name] {
				continue
			}
			seen[node.Name] = true
			names = append(names, node.Name)
		}
	}
	return names
}

// SearchGraph extracts entities from the query, explores from each of them,
// and merges the partial results: entities deduplicated by id (first
// occurrence wins), relationships by (source, target, relationship), paths
// by their ordered node-id chain. The merged entity list is re-sorted
// against the original query string, not the per-entity sub-queries.
func (s *Searcher) SearchGraph(query string, opts ExploreOptions) *Result {
	if opts.Mode == "" {
		opts.Mode = s.mode
	}
	opts = opts.WithDefaults()

	entities := s.ExtractQueryEntities(query)
	if len(entities) == 0 {
		s.log.Debug("no graph entities recognized in query", "query", query)
		return &Result{Query: query}
	}

	merged := &Result{Query: query}
	seenEntity := make(map[string]bool)
	seenEdge := make(map[string]bool)
	seenPath := make(map[string]bool)

	for _, entity := range entities {
		partial := s.ExploreFromEntity(entity, opts)

		for _, node := range partial.Entities {
			if seenEntity[node.ID] {
				continue
			}
			seenEntity[node.ID] = true
			merged.Entities = append(merged.Entities, node)
		}
		for _, edge := range partial.Relationships {
			key := edge.Key()
			if seenEdge[key] {
				continue
			}
			seenEdge[key] = true
			merged.Relationships = append(merged.Relationships, edge)
		}
		for _, path := range partial.Paths {
			key := path.Key()
			if seenPath[key] {
				continue
			}
			seenPath[key] = true
			merged.Paths = append(merged.Paths, path)
		}
	}

	sortEntitiesByRelevance(merged.Entities, query)
	merged.RelevanceScore = averageNodeRelevance(query, merged.Entities)

	s.log.Debug("graph search merged",
		"query", query,
		"query_entities", len(entities),
		"entities", len(merged.Entities),
		"relationships", len(merged.Relationships),
		"paths", len(merged.Paths))

	return merged
}

// FindRelatedPages returns the Page nodes reachable within two hops of the
// named function.
func (s *Searcher) FindRelatedPages(functionName string) []types.GraphNode {
	result := s.SearchGraph(functionName, ExploreOptions{
		MaxDepth:  2,
		NodeTypes: []types.NodeType{types.PageNodeType},
	})
	return filterByType(result.Entities, types.PageNodeType)
}

// FindRelatedFunctions is the structural mirror of FindRelatedPages:
// Function nodes reachable within two hops of the given page.
func (s *Searcher) FindRelatedFunctions(pageID string) []types.GraphNode {
	seed := pageID
	if node, ok := s.handle.Index().GetNode(pageID); ok {
		seed = node.Name
	}
	result := s.SearchGraph(seed, ExploreOptions{
		MaxDepth:  2,
		NodeTypes: []types.NodeType{types.FunctionNodeType},
	})
	return filterByType(result.Entities, types.FunctionNodeType)
}

func filterByType(nodes []types.GraphNode, t types.NodeType) []types.GraphNode {
	var out []types.GraphNode
	for _, n := range nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}
