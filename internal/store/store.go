// Package store persists entities, relationships and documents in the
// relational store, which is the authoritative side of the dual-store
// setup.
package store

import (
	"context"
	"errors"

	"github.com/facultykb/facultygraph/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DeletedEntity reports what a cascade delete removed, so the caller can
// clean up the graph mirror and media storage afterwards.
type DeletedEntity struct {
	Entity          models.Entity
	RelationshipIDs []int64
}

// Store defines the relational persistence interface.
type Store interface {
	// EnsureSchema creates tables and indexes if they don't exist.
	EnsureSchema(ctx context.Context) error

	// UpsertEntity creates or updates an entity keyed by name. Later
	// writes overwrite type, description and photo; identity and the
	// numeric ID are stable. The model's ID is populated on return.
	UpsertEntity(ctx context.Context, e *models.Entity) error

	// EnsureEntity creates an entity if absent and returns the stored
	// row. Unlike UpsertEntity it never overwrites existing attributes.
	EnsureEntity(ctx context.Context, name string, et models.EntityType) (*models.Entity, error)

	// GetEntityByName retrieves a single entity by its natural key.
	GetEntityByName(ctx context.Context, name string) (*models.Entity, error)

	// ListEntities returns all entities ordered by name.
	ListEntities(ctx context.Context) ([]models.Entity, error)

	// SearchEntities returns entities whose name contains the substring.
	SearchEntities(ctx context.Context, name string) ([]models.Entity, error)

	// DeleteEntity removes an entity and every relationship where it is
	// source or target, in one transaction.
	DeleteEntity(ctx context.Context, name string) (*DeletedEntity, error)

	// UpsertRelationship creates or updates the relationship for the
	// ordered (source, target) pair. A new label replaces the stored one;
	// the row ID is stable across label changes.
	UpsertRelationship(ctx context.Context, sourceID, targetID int64, rt models.RelationType) (*models.Relationship, error)

	// ListRelationships returns relationships touching the entity, with
	// Source and Target populated.
	ListRelationships(ctx context.Context, entityID int64) ([]models.Relationship, error)

	// CreateDocument inserts a new document row in pending state.
	CreateDocument(ctx context.Context, d *models.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id int64) (*models.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]models.Document, error)

	// MarkDocumentProcessing transitions pending → processing and stamps
	// the start time.
	MarkDocumentProcessing(ctx context.Context, id int64) error

	// FinishDocument records the terminal status and result and stamps
	// the end time.
	FinishDocument(ctx context.Context, id int64, status models.DocumentStatus, result *models.IngestResult) error

	// Stats returns aggregate knowledge-base counts.
	Stats(ctx context.Context) (*models.KBStats, error)

	// Close releases the underlying connection pool.
	Close() error
}
