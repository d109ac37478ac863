package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/docsonar/docsonar/pkg/types"
)

// Neo4jConfig connects the loader to the graph database the snapshot batch
// job writes into.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// LoadNeo4j pulls the full knowledge graph out of Neo4j and builds the same
// in-memory Index the file loader produces. Unlike Load, connectivity
// problems are returned to the caller: pulling from a live database is an
// explicit operator action, not the serving path.
func LoadNeo4j(ctx context.Context, cfg Neo4jConfig, log *slog.Logger) (*Index, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Database == "" {
		cfg.Database = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	defer driver.Close(ctx)

	session := driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: cfg.Database})
	defer session.Close(ctx)

	snap := &Snapshot{}

	_, err = session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n) RETURN n`, nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			node, err := nodeFromRecord(record)
			if err != nil {
				return nil, err
			}
			snap.Nodes = append(snap.Nodes, node)
		}

		res, err = tx.Run(ctx, `MATCH (a)-[r]->(b) RETURN a.id AS source, b.id AS target, type(r) AS relationship, properties(r) AS properties`, nil)
		if err != nil {
			return nil, err
		}
		records, err = res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			edge, err := edgeFromRecord(record)
			if err != nil {
				return nil, err
			}
			snap.Edges = append(snap.Edges, edge)
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read graph from neo4j: %w", err)
	}

	idx := NewIndex(snap)
	if idx.dropped > 0 {
		log.Warn("dropped edges referencing unknown nodes", "dropped", idx.dropped)
	}
	log.Info("graph loaded from neo4j",
		"uri", cfg.URI, "nodes", len(idx.nodes), "edges", len(idx.edges))
	return idx, nil
}

func nodeFromRecord(record *db.Record) (types.GraphNode, error) {
	value, found := record.Get("n")
	if !found {
		return types.GraphNode{}, fmt.Errorf("record has no node column")
	}
	dbNode, ok := value.(dbtype.Node)
	if !ok {
		return types.GraphNode{}, fmt.Errorf("unexpected type for node: got %T", value)
	}

	node := types.GraphNode{Properties: make(map[string]interface{})}
	for k, v := range dbNode.Props {
		switch k {
		case "id":
			if s, ok := v.(string); ok {
				node.ID = s
			}
		case "name":
			if s, ok := v.(string); ok {
				node.Name = s
			}
		case "type":
			if s, ok := v.(string); ok {
				node.Type = types.NodeType(s)
			}
		default:
			node.Properties[k] = v
		}
	}
	if node.Type == "" && len(dbNode.Labels) > 0 {
		node.Type = types.NodeType(dbNode.Labels[0])
	}
	if node.ID == "" {
		return types.GraphNode{}, fmt.Errorf("node %d has no id property", dbNode.GetId())
	}
	return node, nil
}

func edgeFromRecord(record *db.Record) (types.GraphEdge, error) {
	edge := types.GraphEdge{}
	if v, ok := record.Get("source"); ok {
		if s, ok := v.(string); ok {
			edge.Source = s
		}
	}
	if v, ok := record.Get("target"); ok {
		if s, ok := v.(string); ok {
			edge.Target = s
		}
	}
	if v, ok := record.Get("relationship"); ok {
		if s, ok := v.(string); ok {
			edge.Relationship = types.Relationship(s)
		}
	}
	if v, ok := record.Get("properties"); ok {
		if m, ok := v.(map[string]interface{}); ok && len(m) > 0 {
			edge.Properties = m
		}
	}
	if edge.Source == "" || edge.Target == "" {
		return types.GraphEdge{}, fmt.Errorf("relationship record missing source or target id")
	}
	return edge, nil
}
