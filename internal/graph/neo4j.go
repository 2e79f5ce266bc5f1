package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/facultykb/facultygraph/internal/models"
)

// Neo4jMirror implements Mirror on a Neo4j server. The driver is owned
// by the caller's lifecycle: constructed once at startup, closed at
// shutdown.
type Neo4jMirror struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// NewNeo4jMirror connects to the graph store and verifies connectivity.
func NewNeo4jMirror(ctx context.Context, uri, username, password string, logger *slog.Logger) (*Neo4jMirror, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}
	return &Neo4jMirror{driver: driver, logger: logger}, nil
}

func (m *Neo4jMirror) run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, m.driver, cypher, params, neo4j.EagerResultTransformer)
}

// SyncEntity merges the node for e and stamps its store ID.
func (m *Neo4jMirror) SyncEntity(ctx context.Context, e *models.Entity) error {
	_, err := m.run(ctx, `
		MERGE (n:Entity {name: $name})
		SET n.type = $type,
		    n.description = $description,
		    n.photo_url = $photo_url,
		    n.store_id = $store_id
	`, map[string]any{
		"name":        e.Name,
		"type":        string(e.EntityType),
		"description": e.Description,
		"photo_url":   e.PhotoURL,
		"store_id":    e.ID,
	})
	if err != nil {
		return fmt.Errorf("syncing entity %q: %w", e.Name, err)
	}
	return nil
}

// DeleteEntity detaches and deletes the node by store ID, with a name
// fallback for nodes mirrored before their ID was known.
func (m *Neo4jMirror) DeleteEntity(ctx context.Context, id int64, name string) error {
	res, err := m.run(ctx,
		`MATCH (n:Entity {store_id: $store_id}) DETACH DELETE n RETURN count(n) AS c`,
		map[string]any{"store_id": id})
	if err != nil {
		return fmt.Errorf("deleting entity node %d: %w", id, err)
	}
	if countValue(res) > 0 {
		return nil
	}
	_, err = m.run(ctx,
		`MATCH (n:Entity {name: $name}) DETACH DELETE n`,
		map[string]any{"name": name})
	if err != nil {
		return fmt.Errorf("deleting entity node %q by name: %w", name, err)
	}
	return nil
}

// SyncRelationship deletes any edge carrying r's store ID and merges the
// new one. Deleting first keeps edge identity attached to the row ID
// when the label changes: MERGE on a new type would otherwise leave the
// old edge behind.
func (m *Neo4jMirror) SyncRelationship(ctx context.Context, r *models.Relationship, sourceName, targetName string) error {
	_, err := m.run(ctx,
		`MATCH ()-[rel:RELATION {store_id: $store_id}]->() DELETE rel`,
		map[string]any{"store_id": r.ID})
	if err != nil {
		return fmt.Errorf("clearing old edge %d: %w", r.ID, err)
	}

	_, err = m.run(ctx, `
		MATCH (source:Entity {name: $source_name})
		MATCH (target:Entity {name: $target_name})
		MERGE (source)-[rel:RELATION {store_id: $store_id}]->(target)
		SET rel.type = $type,
		    rel.description = $description,
		    rel.confidence = $confidence
	`, map[string]any{
		"source_name": sourceName,
		"target_name": targetName,
		"store_id":    r.ID,
		"type":        string(r.RelationshipType),
		"description": r.Description,
		"confidence":  r.Confidence,
	})
	if err != nil {
		return fmt.Errorf("syncing relationship %d (%s-[%s]->%s): %w",
			r.ID, sourceName, r.RelationshipType, targetName, err)
	}
	return nil
}

// DeleteRelationship removes the edge by store ID.
func (m *Neo4jMirror) DeleteRelationship(ctx context.Context, id int64) error {
	_, err := m.run(ctx,
		`MATCH ()-[rel:RELATION {store_id: $store_id}]->() DELETE rel`,
		map[string]any{"store_id": id})
	if err != nil {
		return fmt.Errorf("deleting edge %d: %w", id, err)
	}
	return nil
}

// HasSubject reports whether a node with the given name exists.
func (m *Neo4jMirror) HasSubject(ctx context.Context, name string) (bool, error) {
	res, err := m.run(ctx,
		`MATCH (n:Entity {name: $name}) RETURN count(n) AS c`,
		map[string]any{"name": name})
	if err != nil {
		return false, fmt.Errorf("checking subject %q: %w", name, err)
	}
	return countValue(res) > 0, nil
}

// Stats returns node and edge counts.
func (m *Neo4jMirror) Stats(ctx context.Context) (int64, int64, error) {
	res, err := m.run(ctx,
		`MATCH (n:Entity) RETURN count(n) AS c`, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("counting nodes: %w", err)
	}
	nodes := countValue(res)

	res, err = m.run(ctx,
		`MATCH ()-[rel:RELATION]->() RETURN count(rel) AS c`, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("counting edges: %w", err)
	}
	return nodes, countValue(res), nil
}

// Close releases the driver.
func (m *Neo4jMirror) Close(ctx context.Context) error {
	return m.driver.Close(ctx)
}

// countValue pulls the single count column out of an eager result.
func countValue(res *neo4j.EagerResult) int64 {
	if res == nil || len(res.Records) == 0 {
		return 0
	}
	if v, ok := res.Records[0].Get("c"); ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return 0
}
