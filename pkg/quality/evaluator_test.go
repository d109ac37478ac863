package quality

import (
	"context"
	"math"
	"testing"

	"github.com/docsonar/docsonar/pkg/config"
	"github.com/docsonar/docsonar/pkg/fusion"
	"github.com/docsonar/docsonar/pkg/graph"
	"github.com/docsonar/docsonar/pkg/search"
	"github.com/docsonar/docsonar/pkg/types"
)

type stubAdapter struct {
	byMode map[types.SearchMode][]types.DocumentRecord
	byID   map[string]types.DocumentRecord
}

func (s *stubAdapter) Search(_ context.Context, _ string, _ int, mode types.SearchMode) ([]types.DocumentRecord, error) {
	return s.byMode[mode], nil
}

func (s *stubAdapter) GetByID(_ context.Context, id string) (*types.DocumentRecord, error) {
	if rec, ok := s.byID[id]; ok {
		return &rec, nil
	}
	return nil, nil
}

func newEvaluator(t *testing.T, a *stubAdapter, s *search.Searcher) *Evaluator {
	t.Helper()
	engine := fusion.NewEngine(a, s, config.CircuitBreakerConfig{}, nil, nil, nil)
	e, err := NewEvaluator(engine, s, WithPoolSize(2))
	if err != nil {
		t.Fatalf("failed to create evaluator: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func emptyGraphSearcher() *search.Searcher {
	return search.NewSearcher(graph.NewHandle(graph.NewEmptyIndex(), nil), search.FirstWins, nil)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateMetricsWithoutGraph(t *testing.T) {
	a := &stubAdapter{
		byMode: map[types.SearchMode][]types.DocumentRecord{
			types.VectorMode: {
				{ID: "doc-1", Score: 1.0},
				{ID: "doc-2", Score: 0.5},
			},
		},
	}
	e := newEvaluator(t, a, emptyGraphSearcher())

	report, err := e.Evaluate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Fused scores are 0.4 and 0.2 with the default vector weight.
	if !almostEqual(report.Relevance, 0.3) {
		t.Errorf("expected relevance 0.3, got %v", report.Relevance)
	}
	if !almostEqual(report.Diversity, 0.2) {
		t.Errorf("expected diversity 1/5, got %v", report.Diversity)
	}
	// The empty graph expects no pages, so completeness collapses to 0.
	if report.Completeness != 0 {
		t.Errorf("expected completeness 0, got %v", report.Completeness)
	}
	want := (0.3 + 0.2 + 0) / 3
	if !almostEqual(report.Overall, want) {
		t.Errorf("expected overall %v, got %v", want, report.Overall)
	}
	if report.ResultCount != 2 {
		t.Errorf("expected 2 results, got %d", report.ResultCount)
	}
}

func TestEvaluateCompletenessAgainstGraph(t *testing.T) {
	idx := graph.NewIndex(&graph.Snapshot{
		Nodes: []types.GraphNode{
			{ID: "fn-1", Type: types.FunctionNodeType, Name: "classroom management"},
			{ID: "page-1", Type: types.PageNodeType, Name: "classroom management page"},
		},
		Edges: []types.GraphEdge{
			{Source: "fn-1", Target: "page-1", Relationship: types.Describes},
		},
	})
	searcher := search.NewSearcher(graph.NewHandle(idx, nil), search.FirstWins, nil)

	// The adapter never returns page-1, so the graph-expected page is missed.
	a := &stubAdapter{
		byMode: map[types.SearchMode][]types.DocumentRecord{
			types.VectorMode: {{ID: "unrelated-doc", Score: 0.5}},
		},
	}
	e := newEvaluator(t, a, searcher)

	report, err := e.Evaluate(context.Background(), "classroom management")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Completeness != 0 {
		t.Errorf("expected completeness 0, got %v", report.Completeness)
	}
}

func TestEvaluateEmptyResults(t *testing.T) {
	e := newEvaluator(t, &stubAdapter{}, emptyGraphSearcher())

	report, err := e.Evaluate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Relevance != 0 || report.Diversity != 0 {
		t.Errorf("expected zero relevance and diversity: %+v", report)
	}
	if report.Completeness != 0 {
		t.Errorf("empty expectation set means completeness 0: %+v", report)
	}
	if report.Overall != 0 {
		t.Errorf("empty result set scores zero overall, got %v", report.Overall)
	}
}

func TestScoreSuppliedResults(t *testing.T) {
	idx := graph.NewIndex(&graph.Snapshot{
		Nodes: []types.GraphNode{
			{ID: "fn-1", Type: types.FunctionNodeType, Name: "classroom management"},
			{ID: "page-1", Type: types.PageNodeType, Name: "classroom management page"},
		},
		Edges: []types.GraphEdge{
			{Source: "fn-1", Target: "page-1", Relationship: types.Describes},
		},
	})
	searcher := search.NewSearcher(graph.NewHandle(idx, nil), search.FirstWins, nil)
	e := newEvaluator(t, &stubAdapter{}, searcher)

	// A ranking captured elsewhere is scored without re-running the search.
	results := []types.SearchResult{
		{DocumentID: "page-1", Score: 0.6, Source: "vector,graph"},
		{DocumentID: "doc-other", Score: 0.4, Source: "bm25"},
	}
	report := e.Score("classroom management", results)

	if !almostEqual(report.Relevance, 0.5) {
		t.Errorf("expected relevance 0.5, got %v", report.Relevance)
	}
	if !almostEqual(report.Diversity, 0.6) {
		t.Errorf("expected diversity 3/5, got %v", report.Diversity)
	}
	if report.Completeness != 1.0 {
		t.Errorf("expected page-1 found, completeness 1, got %v", report.Completeness)
	}
	want := (0.5 + 0.6 + 1.0) / 3
	if !almostEqual(report.Overall, want) {
		t.Errorf("expected overall %v, got %v", want, report.Overall)
	}
}

func TestEvaluateBatchPreservesOrder(t *testing.T) {
	a := &stubAdapter{
		byMode: map[types.SearchMode][]types.DocumentRecord{
			types.VectorMode: {{ID: "doc-1", Score: 1.0}},
		},
	}
	e := newEvaluator(t, a, emptyGraphSearcher())

	queries := []string{"first query", "second query", "third query"}
	batch, err := e.EvaluateBatch(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(batch.Reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(batch.Reports))
	}
	for i, q := range queries {
		if batch.Reports[i].Query != q {
			t.Errorf("slot %d: expected %q, got %q", i, q, batch.Reports[i].Query)
		}
	}
	if batch.Mean <= 0 {
		t.Errorf("expected positive mean, got %v", batch.Mean)
	}
}
