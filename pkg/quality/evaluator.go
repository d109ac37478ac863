package quality

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/docsonar/docsonar/pkg/fusion"
	"github.com/docsonar/docsonar/pkg/search"
	"github.com/docsonar/docsonar/pkg/types"
)

// Report holds the quality metrics for one evaluated query. All metrics are
// in [0, 1]; Overall is their unweighted mean.
type Report struct {
	Query        string  `json:"query"`
	Relevance    float64 `json:"relevance"`
	Diversity    float64 `json:"diversity"`
	Completeness float64 `json:"completeness"`
	Overall      float64 `json:"overall"`
	ResultCount  int     `json:"result_count"`
}

// BatchReport pairs each evaluated query with its report. Entries keep the
// order of the input queries.
type BatchReport struct {
	Reports []Report `json:"reports"`
	Mean    float64  `json:"mean_overall"`
}

// Evaluator scores fused search results against the knowledge graph. It runs
// the same engine callers use, so a report reflects production ranking.
type Evaluator struct {
	engine   *fusion.Engine
	searcher *search.Searcher
	pool     *ants.Pool
	log      *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator) error

// WithPoolSize sets the worker pool size for batch evaluation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Evaluator) error {
		if size < 1 {
			size = 1
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Evaluator) error {
		if log == nil {
			log = slog.Default()
		}
		e.log = log
		return nil
	}
}

// NewEvaluator creates an evaluator over the given engine and searcher.
func NewEvaluator(engine *fusion.Engine, searcher *search.Searcher, opts ...Option) (*Evaluator, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Evaluator{
		engine:   engine,
		searcher: searcher,
		pool:     pool,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return e, nil
}

// Close releases the worker pool.
func (e *Evaluator) Close() error {
	if e.pool != nil {
		e.pool.Release()
	}
	return nil
}

// Evaluate runs the query through the fusion engine and scores the outcome.
func (e *Evaluator) Evaluate(ctx context.Context, query string) (*Report, error) {
	result, err := e.engine.Search(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	report := e.Score(query, result.Results)
	return &report, nil
}

// EvaluateBatch evaluates every query on the worker pool. A query whose
// search fails scores zero; the batch never fails as a whole.
func (e *Evaluator) EvaluateBatch(ctx context.Context, queries []string) (*BatchReport, error) {
	reports := make([]Report, len(queries))
	var wg sync.WaitGroup

	for i, query := range queries {
		i, query := i, query
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			report, err := e.Evaluate(ctx, query)
			if err != nil {
				e.log.Warn("evaluation failed", "query", query, "error", err)
				reports[i] = Report{Query: query}
				return
			}
			reports[i] = *report
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	batch := &BatchReport{Reports: reports}
	if len(reports) > 0 {
		sum := 0.0
		for _, r := range reports {
			sum += r.Overall
		}
		batch.Mean = sum / float64(len(reports))
	}
	return batch, nil
}

// Score computes the three metrics over an already-produced result set, so a
// ranking captured elsewhere can be evaluated offline without re-running the
// search.
//
// Relevance is the mean fused score. Diversity is the fraction of the five
// sources that contributed to at least one result. Completeness compares the
// returned document ids against the Page nodes the graph expects for this
// query; when the graph expects no pages it is 0.
func (e *Evaluator) Score(query string, results []types.SearchResult) Report {
	report := Report{Query: query, ResultCount: len(results)}
	if len(results) == 0 {
		report.Completeness = completeness(nil, e.expectedPages(query))
		return report
	}

	sum := 0.0
	sources := make(map[string]bool)
	ids := make(map[string]bool)
	for _, r := range results {
		sum += r.Score
		ids[r.DocumentID] = true
		for _, s := range r.Sources() {
			sources[s] = true
		}
	}

	report.Relevance = clamp01(sum / float64(len(results)))
	report.Diversity = float64(len(sources)) / float64(len(types.AllSources))
	report.Completeness = completeness(ids, e.expectedPages(query))
	report.Overall = (report.Relevance + report.Diversity + report.Completeness) / 3
	return report
}

// expectedPages returns the ids of the Page nodes a shallow graph search
// considers relevant to the query.
func (e *Evaluator) expectedPages(query string) map[string]bool {
	result := e.searcher.SearchGraph(query, search.ExploreOptions{
		MaxDepth:   2,
		MaxResults: 20,
		NodeTypes:  []types.NodeType{types.PageNodeType},
	})

	expected := make(map[string]bool)
	for _, entity := range result.Entities {
		if entity.Type == types.PageNodeType {
			expected[entity.ID] = true
		}
	}
	return expected
}

func completeness(got, expected map[string]bool) float64 {
	if len(expected) == 0 {
		return 0
	}
	hits := 0
	for id := range expected {
		if got[id] {
			hits++
		}
	}
	return float64(hits) / float64(len(expected))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
