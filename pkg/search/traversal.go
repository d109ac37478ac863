package search

import (
	"sort"

	"github.com/docsonar/docsonar/pkg/graph"
	"github.com/docsonar/docsonar/pkg/types"
)

// TraversalMode selects how repeat visits are handled when a single
// exploration fans out from several start nodes.
type TraversalMode string

const (
	// FirstWins uses one shared visited set: a node is scored by whichever
	// start node's frontier reaches it first. This is the reference
	// behavior and the default.
	FirstWins TraversalMode = "first-wins"
	// BestScore tracks the best relevance seen per node and re-enqueues a
	// node when a later path beats its recorded best, so a shorter or
	// higher-relevance path from another start node is not silently lost.
	BestScore TraversalMode = "best-score"
)

// ExploreOptions bounds a traversal.
type ExploreOptions struct {
	MaxDepth          int
	MaxResults        int
	NodeTypes         []types.NodeType
	Relationships     []types.Relationship
	MinRelevanceScore float64
	Mode              TraversalMode
}

// WithDefaults fills unset fields with the standard bounds.
func (o ExploreOptions) WithDefaults() ExploreOptions {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 3
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 50
	}
	if o.MinRelevanceScore == 0 {
		o.MinRelevanceScore = 0.1
	}
	if o.Mode == "" {
		o.Mode = FirstWins
	}
	return o
}

// Result is the outcome of one graph exploration or of a merged multi-entity
// search. Entities are sorted by node relevance, paths by path relevance.
type Result struct {
	Entities       []types.GraphNode `json:"entities"`
	Relationships  []types.GraphEdge `json:"relationships"`
	Paths          []types.GraphPath `json:"paths"`
	RelevanceScore float64           `json:"relevance_score"`
	Query          string            `json:"query"`
}

type queueItem struct {
	node      types.GraphNode
	depth     int
	pathNodes []types.GraphNode
	pathEdges []types.GraphEdge
}

// ExploreFromEntity resolves the entity to start nodes by the same name
// rule extraction uses, then runs a bounded breadth-first search outward
// from each of them. One visited set (or best-score map) is shared across
// all start nodes within the call.
func (s *Searcher) ExploreFromEntity(entity string, opts ExploreOptions) *Result {
	opts = opts.WithDefaults()
	idx := s.handle.Index()

	starts := resolveStartNodes(idx, entity)
	if len(starts) == 0 {
		return &Result{Query: entity}
	}

	visited := make(map[string]bool)
	bestScore := make(map[string]float64)
	seenEntity := make(map[string]bool)

	var entities []types.GraphNode
	var relationships []types.GraphEdge
	var paths []types.GraphPath

	queue := make([]queueItem, 0, len(starts))
	for _, start := range starts {
		queue = append(queue, queueItem{
			node:      start,
			depth:     0,
			pathNodes: []types.GraphNode{start},
		})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if opts.Mode == FirstWins {
			if visited[item.node.ID] {
				continue
			}
			visited[item.node.ID] = true
		}

		if matchesNodeType(item.node, opts.NodeTypes) && !seenEntity[item.node.ID] {
			seenEntity[item.node.ID] = true
			entities = append(entities, item.node)
		}

		// Nodes at the depth bound are collected but not expanded, so no
		// recorded path exceeds MaxDepth hops.
		if item.depth >= opts.MaxDepth {
			continue
		}

		for _, edge := range idx.OutgoingEdges(item.node.ID) {
			neighbor, ok := idx.GetNode(edge.Target)
			if !ok {
				continue
			}
			if opts.Mode == FirstWins && visited[neighbor.ID] {
				continue
			}
			if !matchesRelationship(edge, opts.Relationships) {
				continue
			}

			score := edgeRelevance(entity, edge, neighbor)
			if score < opts.MinRelevanceScore {
				continue
			}
			if opts.Mode == BestScore {
				if prev, ok := bestScore[neighbor.ID]; ok && prev >= score {
					continue
				}
				bestScore[neighbor.ID] = score
			}

			relationships = append(relationships, edge)

			nextNodes := append(append([]types.GraphNode{}, item.pathNodes...), neighbor)
			nextEdges := append(append([]types.GraphEdge{}, item.pathEdges...), edge)
			paths = append(paths, types.GraphPath{
				Nodes:          nextNodes,
				Edges:          nextEdges,
				Length:         len(nextNodes),
				RelevanceScore: score,
			})

			queue = append(queue, queueItem{
				node:      neighbor,
				depth:     item.depth + 1,
				pathNodes: nextNodes,
				pathEdges: nextEdges,
			})
		}
	}

	sortEntitiesByRelevance(entities, entity)
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].RelevanceScore > paths[j].RelevanceScore
	})

	entities = truncateNodes(entities, opts.MaxResults)
	relationships = truncateEdges(relationships, opts.MaxResults*2)
	paths = truncatePaths(paths, opts.MaxResults)

	return &Result{
		Entities:       entities,
		Relationships:  relationships,
		Paths:          paths,
		RelevanceScore: averageNodeRelevance(entity, entities),
		Query:          entity,
	}
}

// resolveStartNodes matches the entity against node names with the
// bidirectional partial rule; an exact id hit is also accepted so callers
// can seed a traversal from a known page id.
func resolveStartNodes(idx *graph.Index, entity string) []types.GraphNode {
	var starts []types.GraphNode
	seen := make(map[string]bool)

	if node, ok := idx.GetNode(entity); ok {
		starts = append(starts, node)
		seen[node.ID] = true
	}
	for _, node := range idx.Nodes() {
		if seen[node.ID] {
			continue
		}
		if partialNameMatch(node.Name, entity) {
			starts = append(starts, node)
			seen[node.ID] = true
		}
	}
	return starts
}

func matchesNodeType(node types.GraphNode, filter []types.NodeType) bool {
	if len(filter) == 0 {
		return true
	}
	for _, t := range filter {
		if node.Type == t {
			return true
		}
	}
	return false
}

func matchesRelationship(edge types.GraphEdge, filter []types.Relationship) bool {
	if len(filter) == 0 {
		return true
	}
	for _, r := range filter {
		if edge.Relationship == r {
			return true
		}
	}
	return false
}

func sortEntitiesByRelevance(entities []types.GraphNode, query string) {
	sort.SliceStable(entities, func(i, j int) bool {
		return nodeRelevance(query, entities[i]) > nodeRelevance(query, entities[j])
	})
}

func averageNodeRelevance(query string, entities []types.GraphNode) float64 {
	if len(entities) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range entities {
		sum += nodeRelevance(query, e)
	}
	return sum / float64(len(entities))
}

func truncateNodes(nodes []types.GraphNode, limit int) []types.GraphNode {
	if len(nodes) > limit {
		return nodes[:limit]
	}
	return nodes
}

func truncateEdges(edges []types.GraphEdge, limit int) []types.GraphEdge {
	if len(edges) > limit {
		return edges[:limit]
	}
	return edges
}

func truncatePaths(paths []types.GraphPath, limit int) []types.GraphPath {
	if len(paths) > limit {
		return paths[:limit]
	}
	return paths
}
