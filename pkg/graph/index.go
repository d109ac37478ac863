package graph

import (
	"log/slog"
	"sync/atomic"

	"github.com/docsonar/docsonar/pkg/types"
)

// Stats summarizes a loaded index.
type Stats struct {
	TotalNodes           int            `json:"total_nodes"`
	TotalEdges           int            `json:"total_edges"`
	AverageConnections   float64        `json:"average_connections"`
	NodeTypeDistribution map[string]int `json:"node_type_distribution"`
	Degraded             bool           `json:"degraded"`
	DroppedEdges         int            `json:"dropped_edges,omitempty"`
}

// Index is the immutable in-memory knowledge graph. It is built once and
// shared read-only across every concurrent query; swapping in a fresh
// snapshot goes through Handle, never through mutation.
type Index struct {
	nodes []types.GraphNode
	edges []types.GraphEdge

	nodeMap   map[string]types.GraphNode
	adjacency map[string][]string
	edgeMap   map[string][]types.GraphEdge

	degraded bool
	dropped  int
}

// NewIndex builds an index from a snapshot in one pass. Edges whose source
// or target does not resolve to a known node id are dropped and counted;
// the snapshot job does not guarantee referential integrity.
func NewIndex(snap *Snapshot) *Index {
	idx := &Index{
		nodes:     snap.Nodes,
		nodeMap:   make(map[string]types.GraphNode, len(snap.Nodes)),
		adjacency: make(map[string][]string),
		edgeMap:   make(map[string][]types.GraphEdge),
	}

	for _, n := range snap.Nodes {
		idx.nodeMap[n.ID] = n
	}

	idx.edges = make([]types.GraphEdge, 0, len(snap.Edges))
	for _, e := range snap.Edges {
		if _, ok := idx.nodeMap[e.Source]; !ok {
			idx.dropped++
			continue
		}
		if _, ok := idx.nodeMap[e.Target]; !ok {
			idx.dropped++
			continue
		}
		idx.edges = append(idx.edges, e)
		idx.adjacency[e.Source] = append(idx.adjacency[e.Source], e.Target)
		idx.edgeMap[e.Source] = append(idx.edgeMap[e.Source], e)
	}

	return idx
}

// NewEmptyIndex returns a degraded index with zero nodes and edges. Every
// graph operation on it yields empty results, never an error.
func NewEmptyIndex() *Index {
	idx := NewIndex(&Snapshot{})
	idx.degraded = true
	return idx
}

// Load reads a snapshot file and builds an index. A missing or unparsable
// file puts the index into degraded mode instead of failing: the engine
// keeps serving adapter-backed results without graph contributions.
func Load(path string, log *slog.Logger) *Index {
	if log == nil {
		log = slog.Default()
	}

	snap, err := ReadSnapshot(path)
	if err != nil {
		log.Warn("graph snapshot unavailable, continuing with empty graph",
			"path", path, "error", err)
		return NewEmptyIndex()
	}

	idx := NewIndex(snap)
	if idx.dropped > 0 {
		log.Warn("dropped edges referencing unknown nodes",
			"path", path, "dropped", idx.dropped)
	}
	log.Info("graph snapshot loaded",
		"path", path,
		"nodes", len(idx.nodes),
		"edges", len(idx.edges),
		"generated_at", snap.Metadata.GeneratedAt)
	return idx
}

// Degraded reports whether the index was built without a usable snapshot.
func (idx *Index) Degraded() bool {
	return idx.degraded
}

// DroppedEdges reports how many edges failed referential validation at load.
func (idx *Index) DroppedEdges() int {
	return idx.dropped
}

// GetNode returns the node with the given id, if present.
func (idx *Index) GetNode(id string) (types.GraphNode, bool) {
	n, ok := idx.nodeMap[id]
	return n, ok
}

// Nodes returns all nodes in snapshot order. Callers must not mutate.
func (idx *Index) Nodes() []types.GraphNode {
	return idx.nodes
}

// Edges returns all validated edges. Callers must not mutate.
func (idx *Index) Edges() []types.GraphEdge {
	return idx.edges
}

// Neighbors returns the target ids of all outgoing edges from id.
func (idx *Index) Neighbors(id string) []string {
	return idx.adjacency[id]
}

// OutgoingEdges returns all outgoing edges from id.
func (idx *Index) OutgoingEdges(id string) []types.GraphEdge {
	return idx.edgeMap[id]
}

// Stats computes summary statistics for the loaded graph.
func (idx *Index) Stats() Stats {
	dist := make(map[string]int)
	for _, n := range idx.nodes {
		dist[string(n.Type)]++
	}

	avg := 0.0
	if len(idx.nodes) > 0 {
		avg = float64(len(idx.edges)) / float64(len(idx.nodes))
	}

	return Stats{
		TotalNodes:           len(idx.nodes),
		TotalEdges:           len(idx.edges),
		AverageConnections:   avg,
		NodeTypeDistribution: dist,
		Degraded:             idx.degraded,
		DroppedEdges:         idx.dropped,
	}
}

// Handle holds the current index and supports atomic replacement, so a
// snapshot refresh never disturbs in-flight queries: each query pins the
// index it started with via Index().
type Handle struct {
	ptr atomic.Pointer[Index]
	log *slog.Logger
}

// NewHandle wraps an already-built index.
func NewHandle(idx *Index, log *slog.Logger) *Handle {
	if log == nil {
		log = slog.Default()
	}
	h := &Handle{log: log}
	if idx == nil {
		idx = NewEmptyIndex()
	}
	h.ptr.Store(idx)
	return h
}

// Index returns the current index. The returned value stays consistent for
// the lifetime of the query that obtained it.
func (h *Handle) Index() *Index {
	return h.ptr.Load()
}

// Reload builds a fresh index from the snapshot path and swaps it in. A
// load failure keeps the previous index in place rather than degrading.
func (h *Handle) Reload(path string) {
	idx := Load(path, h.log)
	if idx.Degraded() && !h.Index().Degraded() {
		h.log.Warn("snapshot reload failed, keeping previous index", "path", path)
		return
	}
	h.ptr.Store(idx)
}

// Swap replaces the current index directly, for callers that built one
// through another loader (for example LoadNeo4j).
func (h *Handle) Swap(idx *Index) {
	if idx == nil {
		return
	}
	h.ptr.Store(idx)
}
