package graph

import (
	"encoding/json"
	"os"
	"time"

	"github.com/docsonar/docsonar/pkg/types"
)

// SnapshotMetadata describes the batch run that produced a snapshot.
type SnapshotMetadata struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	TotalNodes  int            `json:"totalNodes"`
	TotalEdges  int            `json:"totalEdges"`
	NodeTypes   map[string]int `json:"nodeTypes,omitempty"`
}

// Snapshot is the on-disk graph document produced out-of-band by the
// graph-building batch job.
type Snapshot struct {
	Nodes    []types.GraphNode `json:"nodes"`
	Edges    []types.GraphEdge `json:"edges"`
	Metadata SnapshotMetadata  `json:"metadata"`
}

// ReadSnapshot parses a snapshot file. Unlike Load it reports errors to the
// caller; Load is the degraded-mode entry point used on the serving path.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
