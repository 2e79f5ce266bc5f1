// Package upsert coordinates writes across the relational store and the
// graph mirror. The relational write happens first and is authoritative;
// mirroring runs after it commits and is best-effort, so the pipeline
// never aborts because the graph store is down.
package upsert

import (
	"context"
	"log/slog"
	"strings"

	"github.com/facultykb/facultygraph/internal/graph"
	"github.com/facultykb/facultygraph/internal/media"
	"github.com/facultykb/facultygraph/internal/metrics"
	"github.com/facultykb/facultygraph/internal/models"
	"github.com/facultykb/facultygraph/internal/store"
)

// Keyword heuristics for typing object-side entities discovered through
// triples.
var (
	organizationHints = []string{"大学", "学院", "系", "所", "中心", "实验室", "委员会", "学会"}
	locationHints     = []string{"省", "市", "区", "路", "街", "室"}
)

// Upserter writes entities and relationships to both stores.
type Upserter struct {
	store  store.Store
	mirror graph.Mirror
	media  *media.Dir
	logger *slog.Logger
}

// New creates an Upserter. The media dir may be nil when photo handling
// is not needed.
func New(st store.Store, mirror graph.Mirror, mediaDir *media.Dir, logger *slog.Logger) *Upserter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Upserter{store: st, mirror: mirror, media: mediaDir, logger: logger}
}

// UpsertSubject creates or refreshes the person entity for a biography
// row, then mirrors it.
func (u *Upserter) UpsertSubject(ctx context.Context, name, description, photoURL string) (*models.Entity, error) {
	e := &models.Entity{
		Name:        name,
		EntityType:  models.EntityTypePerson,
		Description: description,
		PhotoURL:    photoURL,
	}
	if err := u.store.UpsertEntity(ctx, e); err != nil {
		return nil, err
	}
	u.mirrorEntity(ctx, e)
	return e, nil
}

// UpsertTriple reflects one extracted fact: both endpoint entities exist
// afterwards and the (source, target) pair carries the triple's relation
// label, replacing any previous label for that pair.
func (u *Upserter) UpsertTriple(ctx context.Context, t models.Triple) error {
	src, err := u.store.EnsureEntity(ctx, t.Subject, models.EntityTypePerson)
	if err != nil {
		return err
	}
	tgt, err := u.store.EnsureEntity(ctx, t.Object, InferObjectType(t.Object, t.Relation))
	if err != nil {
		return err
	}
	rel, err := u.store.UpsertRelationship(ctx, src.ID, tgt.ID, t.Relation)
	if err != nil {
		return err
	}

	// Relational state is committed; mirror best-effort.
	u.mirrorEntity(ctx, src)
	u.mirrorEntity(ctx, tgt)
	if err := u.mirror.SyncRelationship(ctx, rel, src.Name, tgt.Name); err != nil {
		metrics.Inc(metrics.MirrorFailures)
		u.logger.Warn("mirroring relationship failed",
			"source", src.Name, "target", tgt.Name, "error", err)
	}
	return nil
}

// DeleteEntity removes an entity everywhere: relational cascade first,
// then graph node and edges, then any photo file. Mirror and file
// cleanup failures are logged and swallowed.
func (u *Upserter) DeleteEntity(ctx context.Context, name string) error {
	deleted, err := u.store.DeleteEntity(ctx, name)
	if err != nil {
		return err
	}

	for _, relID := range deleted.RelationshipIDs {
		if err := u.mirror.DeleteRelationship(ctx, relID); err != nil {
			metrics.Inc(metrics.MirrorFailures)
			u.logger.Warn("deleting mirrored edge failed", "edge", relID, "error", err)
		}
	}
	if err := u.mirror.DeleteEntity(ctx, deleted.Entity.ID, name); err != nil {
		metrics.Inc(metrics.MirrorFailures)
		u.logger.Warn("deleting mirrored node failed", "entity", name, "error", err)
	}

	if u.media != nil && deleted.Entity.PhotoURL != "" {
		if err := u.media.Remove(deleted.Entity.PhotoURL); err != nil {
			u.logger.Warn("removing photo failed",
				"entity", name, "photo", deleted.Entity.PhotoURL, "error", err)
		}
	}
	return nil
}

func (u *Upserter) mirrorEntity(ctx context.Context, e *models.Entity) {
	if err := u.mirror.SyncEntity(ctx, e); err != nil {
		metrics.Inc(metrics.MirrorFailures)
		u.logger.Warn("mirroring entity failed", "entity", e.Name, "error", err)
	}
}

// InferObjectType guesses the type of a newly discovered object-side
// entity from its value and the relation that produced it.
func InferObjectType(value string, rel models.RelationType) models.EntityType {
	for _, hint := range organizationHints {
		if strings.Contains(value, hint) {
			return models.EntityTypeOrganization
		}
	}
	for _, hint := range locationHints {
		if strings.Contains(value, hint) {
			return models.EntityTypeLocation
		}
	}
	if rel == models.RelationTeaches || rel == models.RelationResearches {
		return models.EntityTypeSubject
	}
	return models.EntityTypeEvent
}
