package search

import (
	"strings"

	"github.com/docsonar/docsonar/pkg/types"
)

// typeWeight ranks node kinds by how likely they are to answer a question.
func typeWeight(t types.NodeType) float64 {
	switch t {
	case types.FunctionNodeType:
		return 1.0
	case types.PageNodeType:
		return 0.9
	case types.SystemItemNodeType:
		return 0.8
	case types.KeywordNodeType:
		return 0.6
	case types.LabelNodeType:
		return 0.4
	default:
		return 0.5
	}
}

// relationshipWeight ranks edge kinds by semantic strength.
func relationshipWeight(r types.Relationship) float64 {
	switch r {
	case types.Describes:
		return 1.0
	case types.Contains:
		return 0.9
	case types.AssociatedWith:
		return 0.8
	case types.RelatesTo:
		return 0.7
	case types.TaggedWith:
		return 0.6
	default:
		return 0.5
	}
}

// nameMatch measures textual similarity between a query term and a node
// name: 1.0 for a case-insensitive exact match, 0.8 when the term contains
// the name, 0.6 when the name contains the term, otherwise the fraction of
// whitespace-delimited words of the term that partially match a word of the
// name.
func nameMatch(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	if la == lb {
		return 1.0
	}
	if lb != "" && strings.Contains(la, lb) {
		return 0.8
	}
	if la != "" && strings.Contains(lb, la) {
		return 0.6
	}

	aWords := strings.Fields(la)
	if len(aWords) == 0 {
		return 0.0
	}
	bWords := strings.Fields(lb)

	matched := 0
	for _, aw := range aWords {
		for _, bw := range bWords {
			if strings.Contains(aw, bw) || strings.Contains(bw, aw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(aWords))
}

// edgeRelevance scores the step across an edge onto a neighbor, capped at 1.
func edgeRelevance(entity string, edge types.GraphEdge, neighbor types.GraphNode) float64 {
	score := typeWeight(neighbor.Type) + relationshipWeight(edge.Relationship) + 0.3*nameMatch(entity, neighbor.Name)
	if score > 1.0 {
		return 1.0
	}
	return score
}

// nodeRelevance scores how relevant a node is to a query term, capped at 1.
func nodeRelevance(query string, node types.GraphNode) float64 {
	score := nameMatch(query, node.Name) + typeWeight(node.Type)
	if score > 1.0 {
		return 1.0
	}
	return score
}

// partialNameMatch is the bidirectional substring rule used both by entity
// extraction and start-node resolution.
func partialNameMatch(name, query string) bool {
	if name == "" || query == "" {
		return false
	}
	ln := strings.ToLower(name)
	lq := strings.ToLower(query)
	return strings.Contains(lq, ln) || strings.Contains(ln, lq)
}
