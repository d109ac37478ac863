package fusion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/docsonar/docsonar/pkg/adapter"
	"github.com/docsonar/docsonar/pkg/alert"
	"github.com/docsonar/docsonar/pkg/config"
	"github.com/docsonar/docsonar/pkg/search"
	"github.com/docsonar/docsonar/pkg/telemetry"
	"github.com/docsonar/docsonar/pkg/types"
	"github.com/docsonar/docsonar/pkg/utils"
)

// Per-source result budgets requested from the adapter.
const (
	vectorTopK  = 100
	lexicalTopK = 100
	keywordTopK = 50
	titleTopK   = 20
	graphLimit  = 50
)

// Options tunes one fused search. Use DefaultOptions as the starting point;
// WithDefaults only fills numeric zero values, booleans keep what the
// caller set.
type Options struct {
	MaxResults          int
	IncludeGraphContext bool
	EnrichPerResult     bool
	GraphSearchDepth    int

	VectorWeight  float64
	BM25Weight    float64
	GraphWeight   float64
	KeywordWeight float64
	TitleWeight   float64

	// SourceTimeout bounds each per-source dispatch independently, so a
	// stalled backend contributes nothing instead of stalling the query.
	SourceTimeout time.Duration
}

// DefaultOptions returns the standard fusion tuning.
func DefaultOptions() *Options {
	return &Options{
		MaxResults:          20,
		IncludeGraphContext: true,
		GraphSearchDepth:    3,
		VectorWeight:        0.4,
		BM25Weight:          0.3,
		GraphWeight:         0.2,
		KeywordWeight:       0.05,
		TitleWeight:         0.05,
		SourceTimeout:       3 * time.Second,
	}
}

// WithDefaults fills unset numeric fields from DefaultOptions.
func (o *Options) WithDefaults() *Options {
	if o == nil {
		return DefaultOptions()
	}
	def := DefaultOptions()
	out := *o
	if out.MaxResults <= 0 {
		out.MaxResults = def.MaxResults
	}
	if out.GraphSearchDepth <= 0 {
		out.GraphSearchDepth = def.GraphSearchDepth
	}
	if out.VectorWeight == 0 && out.BM25Weight == 0 && out.GraphWeight == 0 && out.KeywordWeight == 0 && out.TitleWeight == 0 {
		out.VectorWeight = def.VectorWeight
		out.BM25Weight = def.BM25Weight
		out.GraphWeight = def.GraphWeight
		out.KeywordWeight = def.KeywordWeight
		out.TitleWeight = def.TitleWeight
	}
	if out.SourceTimeout <= 0 {
		out.SourceTimeout = def.SourceTimeout
	}
	return &out
}

// Result is a fused, ranked, deduplicated result set with explicit partial
// failure reporting: FailedSources lists the sources that contributed
// nothing because they failed, and Degraded is true only when every source
// failed — distinguishing a total outage from a legitimately empty answer.
type Result struct {
	Results       []types.SearchResult `json:"results"`
	Query         string               `json:"query"`
	FailedSources []string             `json:"failed_sources,omitempty"`
	Degraded      bool                 `json:"degraded"`
	Duration      time.Duration        `json:"-"`
}

// Engine fans a query out to the four adapter-backed searches and the graph
// search concurrently, then fuses the partial lists into one ranking. All
// collaborators are constructor-injected; the engine holds no globals.
type Engine struct {
	adapter  adapter.Adapter
	searcher *search.Searcher
	breakers map[types.SourceName]*gobreaker.CircuitBreaker
	alerter  alert.Alerter
	queryLog *telemetry.QueryLog
	log      *slog.Logger
}

// NewEngine wires a fusion engine. alerter and queryLog may be nil;
// breakers are created per source when cbCfg.Enabled is set.
func NewEngine(a adapter.Adapter, searcher *search.Searcher, cbCfg config.CircuitBreakerConfig, alerter alert.Alerter, queryLog *telemetry.QueryLog, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if alerter == nil {
		alerter = &alert.NoOpAlerter{}
	}

	e := &Engine{
		adapter:  a,
		searcher: searcher,
		breakers: make(map[types.SourceName]*gobreaker.CircuitBreaker),
		alerter:  alerter,
		queryLog: queryLog,
		log:      log,
	}

	if cbCfg.Enabled {
		for _, source := range types.AllSources {
			e.breakers[source] = newSourceBreaker(string(source), cbCfg, alerter, log)
		}
	}

	return e
}

func newSourceBreaker(name string, cfg config.CircuitBreakerConfig, alerter alert.Alerter, log *slog.Logger) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				msg := fmt.Sprintf("Search source '%s' circuit breaker changed from %s to %s. Too many failures detected.", name, from, to)
				log.Warn("search source circuit breaker tripped", "source", name)
				_ = alerter.Alert(fmt.Sprintf("URGENT: Search Source Tripped - %s", name), msg)
			}
		},
	}
	return gobreaker.NewCircuitBreaker(st)
}

type branch struct {
	source types.SourceName
	weight float64
	run    func(ctx context.Context) ([]types.SearchResult, error)
}

// Search runs the fused query. A blank query yields an empty result; a
// failed source yields an empty contribution for that source; only a total
// outage marks the result degraded. The error return is reserved for
// programming errors, not source failures.
func (e *Engine) Search(ctx context.Context, query string, opts *Options) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return &Result{Query: query}, nil
	}
	o := opts.WithDefaults()
	start := time.Now()

	branches := []branch{
		{types.VectorSource, o.VectorWeight, func(ctx context.Context) ([]types.SearchResult, error) {
			return e.adapterSearch(ctx, query, vectorTopK, types.VectorMode, types.VectorSource)
		}},
		{types.BM25Source, o.BM25Weight, func(ctx context.Context) ([]types.SearchResult, error) {
			return e.adapterSearch(ctx, query, lexicalTopK, types.LexicalMode, types.BM25Source)
		}},
		{types.GraphSource, o.GraphWeight, func(ctx context.Context) ([]types.SearchResult, error) {
			return e.graphSearch(ctx, query, o.GraphSearchDepth)
		}},
		{types.KeywordSource, o.KeywordWeight, func(ctx context.Context) ([]types.SearchResult, error) {
			return e.adapterSearch(ctx, query, keywordTopK, types.KeywordMode, types.KeywordSource)
		}},
		{types.TitleSource, o.TitleWeight, func(ctx context.Context) ([]types.SearchResult, error) {
			return e.adapterSearch(ctx, query, titleTopK, types.TitleMode, types.TitleSource)
		}},
	}

	functions := make([]func() ([]types.SearchResult, error), len(branches))
	for i, b := range branches {
		b := b
		functions[i] = func() ([]types.SearchResult, error) {
			branchCtx, cancel := context.WithTimeout(ctx, o.SourceTimeout)
			defer cancel()
			return e.dispatch(branchCtx, b)
		}
	}

	lists, errs := utils.GatherWithResults(ctx, len(branches), functions...)

	var failed []string
	for i, err := range errs {
		if err != nil {
			failed = append(failed, string(branches[i].source))
			e.log.Warn("search source failed, continuing without it",
				"source", branches[i].source, "query", query, "error", err)
			lists[i] = nil
		}
	}

	merged := mergeWeighted(branches, lists)

	degraded := len(failed) == len(branches)
	if degraded {
		e.log.Error("all search sources failed", "query", query)
		_ = e.alerter.Alert("URGENT: Search Total Outage",
			fmt.Sprintf("All search sources failed for query %q: %s", query, strings.Join(failed, ", ")))
	}

	if o.IncludeGraphContext && len(merged) > 0 {
		e.attachGraphContext(query, merged, o.EnrichPerResult)
	}

	sortByScore(merged)
	if len(merged) > o.MaxResults {
		merged = merged[:o.MaxResults]
	}

	result := &Result{
		Results:       merged,
		Query:         query,
		FailedSources: failed,
		Degraded:      degraded,
		Duration:      time.Since(start),
	}

	e.observe(result)
	return result, nil
}

// dispatch runs one branch, through its circuit breaker when configured. A
// tripped breaker reports the same way as any failed source.
func (e *Engine) dispatch(ctx context.Context, b branch) ([]types.SearchResult, error) {
	cb, ok := e.breakers[b.source]
	if !ok {
		return b.run(ctx)
	}

	out, err := cb.Execute(func() (interface{}, error) {
		return b.run(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]types.SearchResult), nil
}

func (e *Engine) adapterSearch(ctx context.Context, query string, topK int, mode types.SearchMode, source types.SourceName) ([]types.SearchResult, error) {
	records, err := e.adapter.Search(ctx, query, topK, mode)
	if err != nil {
		return nil, err
	}
	results := make([]types.SearchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, types.NewDocumentResult(rec, source))
	}
	return results, nil
}

// graphSearch resolves the Page entities of a graph exploration into
// concrete document records. Every resolved record carries the overall
// graph relevance as its raw score.
func (e *Engine) graphSearch(ctx context.Context, query string, depth int) ([]types.SearchResult, error) {
	graphResult := e.searcher.SearchGraph(query, search.ExploreOptions{
		MaxDepth:          depth,
		MaxResults:        graphLimit,
		NodeTypes:         []types.NodeType{types.PageNodeType, types.FunctionNodeType},
		MinRelevanceScore: 0.3,
	})

	var results []types.SearchResult
	for _, entity := range graphResult.Entities {
		if entity.Type != types.PageNodeType {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := e.adapter.GetByID(ctx, entity.ID)
		if err != nil {
			e.log.Warn("failed to resolve graph page", "page_id", entity.ID, "error", err)
			continue
		}
		if record == nil {
			continue
		}

		result := types.NewDocumentResult(*record, types.GraphSource)
		result.Score = graphResult.RelevanceScore
		results = append(results, result)
	}
	return results, nil
}

func (e *Engine) observe(result *Result) {
	if e.queryLog == nil {
		return
	}

	seen := make(map[string]bool)
	var sources []string
	topScore := 0.0
	for i, r := range result.Results {
		if i == 0 {
			topScore = r.Score
		}
		for _, s := range r.Sources() {
			if !seen[s] {
				seen[s] = true
				sources = append(sources, s)
			}
		}
	}

	e.queryLog.Observe(result.Query, sources, result.FailedSources,
		len(result.Results), topScore, result.Duration, result.Degraded)
}
