// Package graph mirrors the relational store into Neo4j. The mirror is
// secondary: callers treat every operation as best-effort and the
// relational store remains authoritative when mirroring fails.
package graph

import (
	"context"

	"github.com/facultykb/facultygraph/internal/models"
)

// Mirror is the graph-store side of the dual-store setup. Nodes are
// keyed by name and carry the relational row ID once established; edge
// identity is the relational row ID, not the (source, target) pair.
type Mirror interface {
	// SyncEntity merges the node for e and stamps its store ID.
	SyncEntity(ctx context.Context, e *models.Entity) error

	// DeleteEntity detaches and deletes the node by store ID, falling
	// back to the name for nodes whose ID was never mirrored.
	DeleteEntity(ctx context.Context, id int64, name string) error

	// SyncRelationship deletes any edge carrying r's store ID and merges
	// the new one between the named endpoints.
	SyncRelationship(ctx context.Context, r *models.Relationship, sourceName, targetName string) error

	// DeleteRelationship removes the edge by store ID.
	DeleteRelationship(ctx context.Context, id int64) error

	// HasSubject reports whether a node with the given name exists; used
	// by the ingest pre-filter to skip already-known subjects.
	HasSubject(ctx context.Context, name string) (bool, error)

	// Stats returns node and edge counts.
	Stats(ctx context.Context) (nodes, edges int64, err error)

	// Close releases the driver.
	Close(ctx context.Context) error
}
