package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/facultykb/facultygraph/internal/models"
)

// PostgresStore implements Store on Postgres through bun.
type PostgresStore struct {
	db     *bun.DB
	logger *slog.Logger
}

// NewPostgresStore opens a connection pool for the given DSN.
func NewPostgresStore(dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

// EnsureSchema creates tables and indexes if they don't exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, model := range []any{
		(*models.Entity)(nil),
		(*models.Relationship)(nil),
		(*models.Document)(nil),
	} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	// One relationship per ordered (source, target) pair: the replace
	// semantics hang off this index.
	_, err := s.db.NewCreateIndex().
		Model((*models.Relationship)(nil)).
		Index("relationships_source_target_key").
		Unique().
		IfNotExists().
		Column("source_id", "target_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("creating relationship index: %w", err)
	}
	return nil
}

// UpsertEntity creates or updates an entity keyed by name.
func (s *PostgresStore) UpsertEntity(ctx context.Context, e *models.Entity) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().
		Model(e).
		On("CONFLICT (name) DO UPDATE").
		Set("entity_type = EXCLUDED.entity_type").
		Set("description = EXCLUDED.description").
		Set("photo_url = EXCLUDED.photo_url").
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upserting entity %q: %w", e.Name, err)
	}
	return nil
}

// EnsureEntity creates an entity if absent and returns the stored row.
func (s *PostgresStore) EnsureEntity(ctx context.Context, name string, et models.EntityType) (*models.Entity, error) {
	e := &models.Entity{Name: name, EntityType: et, CreatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(e).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensuring entity %q: %w", name, err)
	}
	// DO NOTHING skips RETURNING on conflict, so read the row back
	// either way.
	return s.GetEntityByName(ctx, name)
}

// GetEntityByName retrieves a single entity by its natural key.
func (s *PostgresStore) GetEntityByName(ctx context.Context, name string) (*models.Entity, error) {
	e := new(models.Entity)
	err := s.db.NewSelect().Model(e).Where("name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity %q: %w", name, err)
	}
	return e, nil
}

// ListEntities returns all entities ordered by name.
func (s *PostgresStore) ListEntities(ctx context.Context) ([]models.Entity, error) {
	var entities []models.Entity
	if err := s.db.NewSelect().Model(&entities).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	return entities, nil
}

// SearchEntities returns entities whose name contains the substring.
func (s *PostgresStore) SearchEntities(ctx context.Context, name string) ([]models.Entity, error) {
	var entities []models.Entity
	q := s.db.NewSelect().Model(&entities).Order("name ASC")
	if name != "" {
		q = q.Where("name LIKE ?", "%"+name+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}
	return entities, nil
}

// DeleteEntity removes an entity and its relationships in one transaction.
func (s *PostgresStore) DeleteEntity(ctx context.Context, name string) (*DeletedEntity, error) {
	var deleted DeletedEntity
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		e := new(models.Entity)
		err := tx.NewSelect().Model(e).Where("name = ?", name).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading entity %q: %w", name, err)
		}
		deleted.Entity = *e

		var rels []models.Relationship
		err = tx.NewSelect().Model(&rels).
			Where("source_id = ? OR target_id = ?", e.ID, e.ID).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("loading relationships of %q: %w", name, err)
		}
		for i := range rels {
			deleted.RelationshipIDs = append(deleted.RelationshipIDs, rels[i].ID)
		}

		_, err = tx.NewDelete().Model((*models.Relationship)(nil)).
			Where("source_id = ? OR target_id = ?", e.ID, e.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("deleting relationships of %q: %w", name, err)
		}

		_, err = tx.NewDelete().Model((*models.Entity)(nil)).
			Where("id = ?", e.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("deleting entity %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// UpsertRelationship creates or updates the relationship for the ordered
// (source, target) pair.
func (s *PostgresStore) UpsertRelationship(ctx context.Context, sourceID, targetID int64, rt models.RelationType) (*models.Relationship, error) {
	r := &models.Relationship{
		SourceID:         sourceID,
		TargetID:         targetID,
		RelationshipType: rt,
		Confidence:       1.0,
	}
	_, err := s.db.NewInsert().
		Model(r).
		On("CONFLICT (source_id, target_id) DO UPDATE").
		Set("relationship_type = EXCLUDED.relationship_type").
		Returning("id, confidence").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("upserting relationship %d->%d: %w", sourceID, targetID, err)
	}
	return r, nil
}

// ListRelationships returns relationships touching the entity.
func (s *PostgresStore) ListRelationships(ctx context.Context, entityID int64) ([]models.Relationship, error) {
	var rels []models.Relationship
	err := s.db.NewSelect().Model(&rels).
		Relation("Source").
		Relation("Target").
		Where("source_id = ? OR target_id = ?", entityID, entityID).
		Order("r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing relationships of %d: %w", entityID, err)
	}
	return rels, nil
}

// CreateDocument inserts a new document row in pending state.
func (s *PostgresStore) CreateDocument(ctx context.Context, d *models.Document) error {
	if d.Status == "" {
		d.Status = models.DocumentPending
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(d).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("creating document %q: %w", d.Title, err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *PostgresStore) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	d := new(models.Document)
	err := s.db.NewSelect().Model(d).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %d: %w", id, err)
	}
	return d, nil
}

// ListDocuments returns all documents, newest first.
func (s *PostgresStore) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.NewSelect().Model(&docs).Order("uploaded_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// MarkDocumentProcessing transitions pending → processing.
func (s *PostgresStore) MarkDocumentProcessing(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.db.NewUpdate().
		Model((*models.Document)(nil)).
		Set("status = ?", models.DocumentProcessing).
		Set("processing_started_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("marking document %d processing: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FinishDocument records the terminal status and result.
func (s *PostgresStore) FinishDocument(ctx context.Context, id int64, status models.DocumentStatus, result *models.IngestResult) error {
	now := time.Now().UTC()
	d := &models.Document{ID: id, Status: status, Result: result, ProcessingEndedAt: &now}
	res, err := s.db.NewUpdate().
		Model(d).
		Column("status", "result", "processing_ended_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("finishing document %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns aggregate knowledge-base counts.
func (s *PostgresStore) Stats(ctx context.Context) (*models.KBStats, error) {
	stats := &models.KBStats{
		ByEntityType: map[string]int64{},
		ByRelation:   map[string]int64{},
	}

	entities, err := s.db.NewSelect().Model((*models.Entity)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	rels, err := s.db.NewSelect().Model((*models.Relationship)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting relationships: %w", err)
	}
	docs, err := s.db.NewSelect().Model((*models.Document)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	stats.Entities = int64(entities)
	stats.Relationships = int64(rels)
	stats.Documents = int64(docs)

	var typeCounts []struct {
		EntityType string `bun:"entity_type"`
		Count      int64  `bun:"count"`
	}
	err = s.db.NewSelect().Model((*models.Entity)(nil)).
		ColumnExpr("entity_type, count(*) AS count").
		GroupExpr("entity_type").
		Scan(ctx, &typeCounts)
	if err != nil {
		return nil, fmt.Errorf("grouping entity types: %w", err)
	}
	for _, tc := range typeCounts {
		stats.ByEntityType[tc.EntityType] = tc.Count
	}

	var relCounts []struct {
		RelationshipType string `bun:"relationship_type"`
		Count            int64  `bun:"count"`
	}
	err = s.db.NewSelect().Model((*models.Relationship)(nil)).
		ColumnExpr("relationship_type, count(*) AS count").
		GroupExpr("relationship_type").
		Scan(ctx, &relCounts)
	if err != nil {
		return nil, fmt.Errorf("grouping relationships: %w", err)
	}
	for _, rc := range relCounts {
		stats.ByRelation[rc.RelationshipType] = rc.Count
	}

	return stats, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
