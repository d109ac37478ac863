package search

import (
	"testing"

	"github.com/docsonar/docsonar/pkg/graph"
	"github.com/docsonar/docsonar/pkg/types"
)

func newTestSearcher(t *testing.T, mode TraversalMode, nodes []types.GraphNode, edges []types.GraphEdge) *Searcher {
	t.Helper()
	idx := graph.NewIndex(&graph.Snapshot{Nodes: nodes, Edges: edges})
	return NewSearcher(graph.NewHandle(idx, nil), mode, nil)
}

func TestExploreFromEntityDirectNeighbor(t *testing.T) {
	s := newTestSearcher(t, FirstWins,
		[]types.GraphNode{
			{ID: "fn-1", Type: types.FunctionNodeType, Name: "教室管理"},
			{ID: "page-1", Type: types.PageNodeType, Name: "教室管理ページ"},
		},
		[]types.GraphEdge{
			{Source: "fn-1", Target: "page-1", Relationship: types.Describes},
		})

	result := s.ExploreFromEntity("教室管理", ExploreOptions{})

	if len(result.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(result.Entities))
	}
	if len(result.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(result.Relationships))
	}
	if len(result.Paths) != 1 {
		t.Fatalf("expected exactly 1 path, got %d", len(result.Paths))
	}

	path := result.Paths[0]
	if path.Length != 2 {
		t.Errorf("expected path length 2, got %d", path.Length)
	}
	if path.Nodes[0].ID != "fn-1" || path.Nodes[1].ID != "page-1" {
		t.Errorf("unexpected path: %s", path.Key())
	}
	// 0.9 + 1.0 + 0.3*0.6 caps at 1.0.
	if path.RelevanceScore != 1.0 {
		t.Errorf("expected path relevance 1.0, got %v", path.RelevanceScore)
	}
	if result.RelevanceScore < 0 || result.RelevanceScore > 1 {
		t.Errorf("relevance score out of bounds: %v", result.RelevanceScore)
	}
}

func TestExploreFromEntityUnknownEntity(t *testing.T) {
	s := newTestSearcher(t, FirstWins,
		[]types.GraphNode{{ID: "fn-1", Type: types.FunctionNodeType, Name: "billing"}},
		nil)

	result := s.ExploreFromEntity("zzz-nothing-matches", ExploreOptions{})

	if len(result.Entities) != 0 || len(result.Paths) != 0 {
		t.Error("expected empty result for unknown entity")
	}
	if result.RelevanceScore != 0 {
		t.Errorf("expected zero relevance, got %v", result.RelevanceScore)
	}
}

func TestExploreFromEntityDepthBound(t *testing.T) {
	s := newTestSearcher(t, FirstWins,
		[]types.GraphNode{
			{ID: "n0", Type: types.FunctionNodeType, Name: "alpha"},
			{ID: "n1", Type: types.PageNodeType, Name: "beta"},
			{ID: "n2", Type: types.PageNodeType, Name: "gamma"},
			{ID: "n3", Type: types.PageNodeType, Name: "delta"},
		},
		[]types.GraphEdge{
			{Source: "n0", Target: "n1", Relationship: types.Describes},
			{Source: "n1", Target: "n2", Relationship: types.RelatesTo},
			{Source: "n2", Target: "n3", Relationship: types.RelatesTo},
		})

	result := s.ExploreFromEntity("alpha", ExploreOptions{MaxDepth: 2})

	for _, e := range result.Entities {
		if e.ID == "n3" {
			t.Error("n3 is beyond the depth bound and must not be returned")
		}
	}
	if len(result.Entities) != 3 {
		t.Errorf("expected n0..n2, got %d entities", len(result.Entities))
	}

	if len(result.Paths) != 2 {
		t.Errorf("expected 2 paths, got %d", len(result.Paths))
	}
	for _, p := range result.Paths {
		if hops := p.Length - 1; hops > 2 {
			t.Errorf("path %s has %d hops, exceeding the depth bound", p.Key(), hops)
		}
		for _, n := range p.Nodes {
			if n.ID == "n3" {
				t.Errorf("path %s crosses the depth bound", p.Key())
			}
		}
	}
	for _, r := range result.Relationships {
		if r.Target == "n3" {
			t.Errorf("relationship %s reaches beyond the depth bound", r.Key())
		}
	}
}

func TestExploreFromEntityMinRelevanceFilter(t *testing.T) {
	s := newTestSearcher(t, FirstWins,
		[]types.GraphNode{
			{ID: "n0", Type: types.FunctionNodeType, Name: "alpha"},
			{ID: "n1", Type: types.LabelNodeType, Name: "unrelated"},
		},
		[]types.GraphEdge{
			// 0.4 + 0.5 + 0 = 0.9 stays below the threshold.
			{Source: "n0", Target: "n1", Relationship: types.Relationship("MENTIONS")},
		})

	result := s.ExploreFromEntity("alpha", ExploreOptions{MinRelevanceScore: 0.95})

	if len(result.Relationships) != 0 || len(result.Paths) != 0 {
		t.Error("expected low-relevance expansion to be filtered out")
	}
	if len(result.Entities) != 1 {
		t.Errorf("expected only the start node, got %d entities", len(result.Entities))
	}
}

func TestExploreFromEntityNodeTypeFilter(t *testing.T) {
	s := newTestSearcher(t, FirstWins,
		[]types.GraphNode{
			{ID: "fn-1", Type: types.FunctionNodeType, Name: "alpha"},
			{ID: "page-1", Type: types.PageNodeType, Name: "beta"},
			{ID: "kw-1", Type: types.KeywordNodeType, Name: "gamma"},
		},
		[]types.GraphEdge{
			{Source: "fn-1", Target: "page-1", Relationship: types.Describes},
			{Source: "page-1", Target: "kw-1", Relationship: types.TaggedWith},
		})

	result := s.ExploreFromEntity("alpha", ExploreOptions{
		NodeTypes: []types.NodeType{types.PageNodeType},
	})

	if len(result.Entities) != 1 || result.Entities[0].ID != "page-1" {
		t.Errorf("expected only page-1, got %v", result.Entities)
	}
	// Traversal still passes through filtered-out nodes.
	if len(result.Relationships) != 2 {
		t.Errorf("expected traversal to continue through filtered nodes, got %d relationships", len(result.Relationships))
	}
}

func TestExploreFromEntityMaxResultsTruncation(t *testing.T) {
	nodes := []types.GraphNode{{ID: "hub", Type: types.FunctionNodeType, Name: "alpha"}}
	var edges []types.GraphEdge
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		nodes = append(nodes, types.GraphNode{ID: id, Type: types.PageNodeType, Name: "page " + id})
		edges = append(edges, types.GraphEdge{Source: "hub", Target: id, Relationship: types.Describes})
	}
	s := newTestSearcher(t, FirstWins, nodes, edges)

	result := s.ExploreFromEntity("alpha", ExploreOptions{MaxResults: 3})

	if len(result.Entities) != 3 {
		t.Errorf("expected 3 entities after truncation, got %d", len(result.Entities))
	}
	if len(result.Relationships) > 6 {
		t.Errorf("expected at most 6 relationships, got %d", len(result.Relationships))
	}
	if len(result.Paths) > 3 {
		t.Errorf("expected at most 3 paths, got %d", len(result.Paths))
	}
}

// visitedModeGraph reaches x from two directions: directly from s1 with a
// low score, and through m from s2 with a higher score.
func visitedModeGraph() ([]types.GraphNode, []types.GraphEdge) {
	nodes := []types.GraphNode{
		{ID: "s1", Type: types.FunctionNodeType, Name: "query term"},
		{ID: "s2", Type: types.FunctionNodeType, Name: "query term two"},
		{ID: "m", Type: types.SystemItemNodeType, Name: "middle"},
		{ID: "x", Type: types.LabelNodeType, Name: "target x"},
		{ID: "y", Type: types.KeywordNodeType, Name: "leaf y"},
	}
	edges := []types.GraphEdge{
		{Source: "s1", Target: "x", Relationship: types.Relationship("MENTIONS")},
		{Source: "s2", Target: "m", Relationship: types.RelatesTo},
		{Source: "m", Target: "x", Relationship: types.Describes},
		{Source: "x", Target: "y", Relationship: types.TaggedWith},
	}
	return nodes, edges
}

func TestTraversalModeFirstWins(t *testing.T) {
	nodes, edges := visitedModeGraph()
	s := newTestSearcher(t, FirstWins, nodes, edges)

	result := s.ExploreFromEntity("query term", ExploreOptions{})

	// x is claimed by s1's frontier first; the higher-scoring route through
	// m is never recorded.
	for _, p := range result.Paths {
		if p.Key() == "s2>m>x" {
			t.Error("first-wins must not record the second route to x")
		}
	}
	if len(result.Paths) != 3 {
		t.Errorf("expected 3 paths, got %d", len(result.Paths))
	}
}

func TestTraversalModeBestScore(t *testing.T) {
	nodes, edges := visitedModeGraph()
	s := newTestSearcher(t, BestScore, nodes, edges)

	result := s.ExploreFromEntity("query term", ExploreOptions{})

	found := false
	for _, p := range result.Paths {
		if p.Key() == "s2>m>x" {
			found = true
		}
	}
	if !found {
		t.Error("best-score must record the higher-scoring route to x")
	}
	if len(result.Paths) != 4 {
		t.Errorf("expected 4 paths, got %d", len(result.Paths))
	}

	// Entities stay deduplicated even though x is expanded twice.
	seen := make(map[string]int)
	for _, e := range result.Entities {
		seen[e.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("entity %s appears %d times", id, n)
		}
	}
}

func TestPathsSortedByRelevance(t *testing.T) {
	nodes, edges := visitedModeGraph()
	s := newTestSearcher(t, FirstWins, nodes, edges)

	result := s.ExploreFromEntity("query term", ExploreOptions{})
	for i := 1; i < len(result.Paths); i++ {
		if result.Paths[i-1].RelevanceScore < result.Paths[i].RelevanceScore {
			t.Errorf("paths not sorted: %v < %v",
				result.Paths[i-1].RelevanceScore, result.Paths[i].RelevanceScore)
		}
	}
}
