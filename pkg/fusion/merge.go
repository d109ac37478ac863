package fusion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docsonar/docsonar/pkg/search"
	"github.com/docsonar/docsonar/pkg/types"
)

// mergeWeighted accumulates every (result, weight) pair into one entry per
// document id. A document returned by k sources ends up with the sum of its
// k weighted contributions and a comma-joined, deduplicated source field;
// a document absent from every source never appears. Encounter order is
// preserved so equal fused scores sort deterministically.
func mergeWeighted(branches []branch, lists [][]types.SearchResult) []types.SearchResult {
	byID := make(map[string]int)
	var merged []types.SearchResult

	for i, list := range lists {
		weight := branches[i].weight
		for _, r := range list {
			contribution := r.Score * weight

			pos, exists := byID[r.DocumentID]
			if !exists {
				fused := r
				fused.Score = contribution
				fused.Source = string(branches[i].source)
				byID[r.DocumentID] = len(merged)
				merged = append(merged, fused)
				continue
			}

			merged[pos].Score += contribution
			merged[pos].Source = appendSource(merged[pos].Source, string(branches[i].source))
		}
	}

	return merged
}

// appendSource adds name to the comma-joined source list unless present.
func appendSource(joined, name string) string {
	for _, existing := range strings.Split(joined, ",") {
		if existing == name {
			return joined
		}
	}
	return joined + "," + name
}

// sortByScore orders by fused score descending; ties keep their original
// encounter order so repeated queries produce identical rankings.
func sortByScore(results []types.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// attachGraphContext enriches merged results with graph-derived context.
// The reference behavior derives one context from a single query-wide
// exploration and attaches it to every row; perResult instead traverses
// from each result's own page node.
func (e *Engine) attachGraphContext(query string, results []types.SearchResult, perResult bool) {
	if perResult {
		for i := range results {
			partial := e.searcher.ExploreFromEntity(results[i].DocumentID, search.ExploreOptions{
				MaxDepth:   2,
				MaxResults: 100,
			})
			if gc := deriveGraphContext(partial); gc != nil {
				results[i].GraphContext = gc
			}
		}
		return
	}

	shared := e.searcher.SearchGraph(query, search.ExploreOptions{
		MaxDepth:   2,
		MaxResults: 100,
	})
	gc := deriveGraphContext(shared)
	if gc == nil {
		return
	}
	for i := range results {
		clone := *gc
		results[i].GraphContext = &clone
	}
}

// deriveGraphContext projects an exploration result onto the deduplicated
// function names, keyword names, and relationship descriptions a caller
// can display next to a document.
func deriveGraphContext(result *search.Result) *types.GraphContext {
	if result == nil || (len(result.Entities) == 0 && len(result.Relationships) == 0) {
		return nil
	}

	gc := &types.GraphContext{}
	seenFn := make(map[string]bool)
	seenKw := make(map[string]bool)
	seenRel := make(map[string]bool)

	for _, entity := range result.Entities {
		switch entity.Type {
		case types.FunctionNodeType:
			if !seenFn[entity.Name] {
				seenFn[entity.Name] = true
				gc.RelatedFunctions = append(gc.RelatedFunctions, entity.Name)
			}
		case types.KeywordNodeType:
			if !seenKw[entity.Name] {
				seenKw[entity.Name] = true
				gc.RelatedKeywords = append(gc.RelatedKeywords, entity.Name)
			}
		}
	}

	for _, edge := range result.Relationships {
		desc := fmt.Sprintf("%s %s %s", edge.Source, edge.Relationship, edge.Target)
		if !seenRel[desc] {
			seenRel[desc] = true
			gc.Relationships = append(gc.Relationships, desc)
		}
	}

	if len(gc.RelatedFunctions) == 0 && len(gc.RelatedKeywords) == 0 && len(gc.Relationships) == 0 {
		return nil
	}
	return gc
}
