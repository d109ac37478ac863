package docsonar

import (
	"context"
	"strings"

	"github.com/docsonar/docsonar/pkg/fusion"
	"github.com/docsonar/docsonar/pkg/graph"
	"github.com/docsonar/docsonar/pkg/quality"
	"github.com/docsonar/docsonar/pkg/types"
)

// Search runs a fused multi-source query. A nil opts uses the configured
// defaults; the optional reranker refines the final order when enabled.
func (c *Client) Search(ctx context.Context, query string, opts *fusion.Options) (*fusion.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if opts == nil {
		opts = c.DefaultSearchOptions()
	}

	result, err := c.engine.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	if c.reranker != nil {
		result.Results = c.reranker.Rerank(ctx, query, result.Results)
	}
	return result, nil
}

// FindRelatedPages returns the documentation pages reachable within two
// graph hops of the named business function.
func (c *Client) FindRelatedPages(_ context.Context, functionName string) ([]types.GraphNode, error) {
	if strings.TrimSpace(functionName) == "" {
		return nil, types.ErrEmptyQuery
	}
	return c.searcher.FindRelatedPages(functionName), nil
}

// FindRelatedFunctions returns the business functions reachable within two
// graph hops of the given page.
func (c *Client) FindRelatedFunctions(_ context.Context, pageID string) ([]types.GraphNode, error) {
	if strings.TrimSpace(pageID) == "" {
		return nil, types.ErrEmptyDocumentID
	}
	return c.searcher.FindRelatedFunctions(pageID), nil
}

// GraphStats reports the size and health of the loaded knowledge graph.
func (c *Client) GraphStats() graph.Stats {
	return c.handle.Index().Stats()
}

// EvaluateSearchQuality scores the given queries against the current
// ranking and graph.
func (c *Client) EvaluateSearchQuality(ctx context.Context, queries []string) (*quality.BatchReport, error) {
	return c.eval.EvaluateBatch(ctx, queries)
}

// ScoreSearchResults computes quality metrics for an already-produced result
// set, so a ranking captured elsewhere can be evaluated offline.
func (c *Client) ScoreSearchResults(query string, results []types.SearchResult) quality.Report {
	return c.eval.Score(query, results)
}

// ReloadGraph rebuilds the graph index from its configured source and swaps
// it in atomically. A failed reload keeps the previous snapshot.
func (c *Client) ReloadGraph(ctx context.Context) error {
	if c.cfg.Graph.Source == "neo4j" {
		idx, err := graph.LoadNeo4j(ctx, graph.Neo4jConfig{
			URI:      c.cfg.Graph.Neo4j.URI,
			Username: c.cfg.Graph.Neo4j.Username,
			Password: c.cfg.Graph.Neo4j.Password,
			Database: c.cfg.Graph.Neo4j.Database,
		}, c.log)
		if err != nil {
			c.log.Warn("graph reload failed, keeping previous snapshot", "error", err)
			return err
		}
		c.handle.Swap(idx)
		return nil
	}

	c.handle.Reload(c.cfg.Graph.SnapshotPath)
	return nil
}
