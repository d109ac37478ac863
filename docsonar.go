package docsonar

import (
	"context"
	"log/slog"
	"time"

	"github.com/docsonar/docsonar/pkg/adapter"
	"github.com/docsonar/docsonar/pkg/alert"
	"github.com/docsonar/docsonar/pkg/config"
	"github.com/docsonar/docsonar/pkg/fusion"
	"github.com/docsonar/docsonar/pkg/graph"
	"github.com/docsonar/docsonar/pkg/quality"
	"github.com/docsonar/docsonar/pkg/rerank"
	"github.com/docsonar/docsonar/pkg/search"
	"github.com/docsonar/docsonar/pkg/telemetry"
	"github.com/docsonar/docsonar/pkg/types"
)

// Engine is the main interface for querying the documentation search
// service. It combines fused multi-source search, graph navigation, and
// offline quality evaluation behind one facade.
type Engine interface {
	// Search runs a fused multi-source query and returns ranked,
	// deduplicated documents. opts may be nil for configured defaults.
	Search(ctx context.Context, query string, opts *fusion.Options) (*fusion.Result, error)

	// FindRelatedPages returns the documentation pages reachable within two
	// graph hops of the named business function.
	FindRelatedPages(ctx context.Context, functionName string) ([]types.GraphNode, error)

	// FindRelatedFunctions returns the business functions reachable within
	// two graph hops of the given page.
	FindRelatedFunctions(ctx context.Context, pageID string) ([]types.GraphNode, error)

	// GraphStats reports the size and health of the loaded knowledge graph.
	GraphStats() graph.Stats

	// EvaluateSearchQuality scores the given queries against the current
	// ranking and graph.
	EvaluateSearchQuality(ctx context.Context, queries []string) (*quality.BatchReport, error)

	// ScoreSearchResults computes quality metrics for an already-produced
	// result set without re-running the search.
	ScoreSearchResults(query string, results []types.SearchResult) quality.Report

	// ReloadGraph reloads the knowledge graph from its configured source
	// and swaps it in atomically. In-flight queries keep the old snapshot.
	ReloadGraph(ctx context.Context) error

	// Close flushes telemetry and releases resources.
	Close(ctx context.Context) error
}

// Client is the main implementation of the Engine interface. All
// collaborators are built once at construction and injected downward;
// nothing in the client is global.
type Client struct {
	cfg      *config.Config
	log      *slog.Logger
	handle   *graph.Handle
	searcher *search.Searcher
	adapter  adapter.Adapter
	engine   *fusion.Engine
	reranker *rerank.Reranker
	eval     *quality.Evaluator
	queryLog *telemetry.QueryLog
	cache    *adapter.CachedAdapter
}

var _ Engine = (*Client)(nil)

// NewClient wires a complete client from configuration. Graph loading is
// degraded, not fatal: a missing or corrupt snapshot yields an empty graph
// and a warning, and the adapter-backed sources keep working.
func NewClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	handle := graph.NewHandle(loadIndex(ctx, cfg, log), log)
	searcher := search.NewSearcher(handle, search.TraversalMode(cfg.Graph.TraversalMode), log)

	var docAdapter adapter.Adapter = adapter.NewHTTPAdapter(adapter.HTTPConfig{
		BaseURL: cfg.Adapter.BaseURL,
		APIKey:  cfg.Adapter.APIKey,
		Timeout: time.Duration(cfg.Adapter.TimeoutSeconds) * time.Second,
	})
	var cache *adapter.CachedAdapter
	if cfg.Adapter.Cache.Enabled {
		cached, err := adapter.NewCachedAdapter(docAdapter, adapter.CacheConfig{
			Dir: cfg.Adapter.Cache.Dir,
			TTL: time.Duration(cfg.Adapter.Cache.TTLMinutes) * time.Minute,
		}, log)
		if err != nil {
			log.Warn("record cache unavailable, continuing without it", "error", err)
		} else {
			cache = cached
			docAdapter = cached
		}
	}

	var alerter alert.Alerter = &alert.NoOpAlerter{}
	if cfg.Alert.Enabled {
		alerter = alert.NewEmailAlerter(cfg.Alert)
	}

	var queryLog *telemetry.QueryLog
	if cfg.Telemetry.ParquetPath != "" {
		ql, err := telemetry.NewQueryLog(cfg.Telemetry.ParquetPath, log)
		if err != nil {
			log.Warn("query telemetry unavailable, continuing without it", "error", err)
		} else {
			queryLog = ql
		}
	}

	engine := fusion.NewEngine(docAdapter, searcher, cfg.CircuitBreaker, alerter, queryLog, log)

	eval, err := quality.NewEvaluator(engine, searcher, quality.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:      cfg,
		log:      log,
		handle:   handle,
		searcher: searcher,
		adapter:  docAdapter,
		engine:   engine,
		reranker: rerank.NewReranker(cfg.Rerank, log),
		eval:     eval,
		queryLog: queryLog,
		cache:    cache,
	}, nil
}

// loadIndex builds the initial graph index from the configured source.
// Failures degrade to an empty index so search stays available.
func loadIndex(ctx context.Context, cfg *config.Config, log *slog.Logger) *graph.Index {
	if cfg.Graph.Source == "neo4j" {
		idx, err := graph.LoadNeo4j(ctx, graph.Neo4jConfig{
			URI:      cfg.Graph.Neo4j.URI,
			Username: cfg.Graph.Neo4j.Username,
			Password: cfg.Graph.Neo4j.Password,
			Database: cfg.Graph.Neo4j.Database,
		}, log)
		if err != nil {
			log.Warn("neo4j graph load failed, starting with empty graph",
				"uri", cfg.Graph.Neo4j.URI, "error", err)
			return graph.NewEmptyIndex()
		}
		return idx
	}
	return graph.Load(cfg.Graph.SnapshotPath, log)
}

// DefaultSearchOptions translates the fusion section of the configuration
// into engine options.
func (c *Client) DefaultSearchOptions() *fusion.Options {
	f := c.cfg.Fusion
	opts := &fusion.Options{
		MaxResults:          f.MaxResults,
		IncludeGraphContext: f.IncludeGraphContext,
		EnrichPerResult:     f.EnrichPerResult,
		GraphSearchDepth:    f.GraphSearchDepth,
		VectorWeight:        f.Weights.Vector,
		BM25Weight:          f.Weights.BM25,
		GraphWeight:         f.Weights.Graph,
		KeywordWeight:       f.Weights.Keyword,
		TitleWeight:         f.Weights.Title,
		SourceTimeout:       time.Duration(f.SourceTimeoutMS) * time.Millisecond,
	}
	return opts.WithDefaults()
}

// Close flushes telemetry and releases the cache and worker pools.
func (c *Client) Close(ctx context.Context) error {
	if c.queryLog != nil {
		if err := c.queryLog.Close(); err != nil {
			c.log.Warn("failed to close query telemetry", "error", err)
		}
	}
	if c.eval != nil {
		_ = c.eval.Close()
	}
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}
