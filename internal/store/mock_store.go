package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/facultykb/facultygraph/internal/models"
)

// MockStore is an in-memory Store for tests and local development.
type MockStore struct {
	mu sync.Mutex

	entities  map[int64]*models.Entity
	rels      map[int64]*models.Relationship
	documents map[int64]*models.Document

	nextEntityID int64
	nextRelID    int64
	nextDocID    int64
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		entities:  map[int64]*models.Entity{},
		rels:      map[int64]*models.Relationship{},
		documents: map[int64]*models.Document{},
	}
}

// EnsureSchema is a no-op for the in-memory store.
func (m *MockStore) EnsureSchema(context.Context) error { return nil }

func (m *MockStore) findByName(name string) *models.Entity {
	for _, e := range m.entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// UpsertEntity creates or updates an entity keyed by name.
func (m *MockStore) UpsertEntity(_ context.Context, e *models.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.findByName(e.Name); existing != nil {
		existing.EntityType = e.EntityType
		existing.Description = e.Description
		existing.PhotoURL = e.PhotoURL
		*e = *existing
		return nil
	}
	m.nextEntityID++
	e.ID = m.nextEntityID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	stored := *e
	m.entities[e.ID] = &stored
	return nil
}

// EnsureEntity creates an entity if absent and returns the stored row.
func (m *MockStore) EnsureEntity(_ context.Context, name string, et models.EntityType) (*models.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.findByName(name); existing != nil {
		out := *existing
		return &out, nil
	}
	m.nextEntityID++
	e := &models.Entity{ID: m.nextEntityID, Name: name, EntityType: et, CreatedAt: time.Now().UTC()}
	m.entities[e.ID] = e
	out := *e
	return &out, nil
}

// GetEntityByName retrieves a single entity by its natural key.
func (m *MockStore) GetEntityByName(_ context.Context, name string) (*models.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e := m.findByName(name); e != nil {
		out := *e
		return &out, nil
	}
	return nil, ErrNotFound
}

// ListEntities returns all entities ordered by name.
func (m *MockStore) ListEntities(ctx context.Context) ([]models.Entity, error) {
	return m.SearchEntities(ctx, "")
}

// SearchEntities returns entities whose name contains the substring.
func (m *MockStore) SearchEntities(_ context.Context, name string) ([]models.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Entity
	for _, e := range m.entities {
		if name == "" || strings.Contains(e.Name, name) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteEntity removes an entity and its relationships.
func (m *MockStore) DeleteEntity(_ context.Context, name string) (*DeletedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.findByName(name)
	if e == nil {
		return nil, ErrNotFound
	}
	deleted := &DeletedEntity{Entity: *e}
	for id, r := range m.rels {
		if r.SourceID == e.ID || r.TargetID == e.ID {
			deleted.RelationshipIDs = append(deleted.RelationshipIDs, id)
			delete(m.rels, id)
		}
	}
	sort.Slice(deleted.RelationshipIDs, func(i, j int) bool {
		return deleted.RelationshipIDs[i] < deleted.RelationshipIDs[j]
	})
	delete(m.entities, e.ID)
	return deleted, nil
}

// UpsertRelationship creates or updates the relationship for the ordered
// (source, target) pair.
func (m *MockStore) UpsertRelationship(_ context.Context, sourceID, targetID int64, rt models.RelationType) (*models.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rels {
		if r.SourceID == sourceID && r.TargetID == targetID {
			r.RelationshipType = rt
			out := *r
			return &out, nil
		}
	}
	m.nextRelID++
	r := &models.Relationship{
		ID:               m.nextRelID,
		SourceID:         sourceID,
		TargetID:         targetID,
		RelationshipType: rt,
		Confidence:       1.0,
	}
	m.rels[r.ID] = r
	out := *r
	return &out, nil
}

// ListRelationships returns relationships touching the entity.
func (m *MockStore) ListRelationships(_ context.Context, entityID int64) ([]models.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Relationship
	for _, r := range m.rels {
		if r.SourceID == entityID || r.TargetID == entityID {
			cp := *r
			if src, ok := m.entities[r.SourceID]; ok {
				s := *src
				cp.Source = &s
			}
			if tgt, ok := m.entities[r.TargetID]; ok {
				t := *tgt
				cp.Target = &t
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateDocument inserts a new document row in pending state.
func (m *MockStore) CreateDocument(_ context.Context, d *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextDocID++
	d.ID = m.nextDocID
	if d.Status == "" {
		d.Status = models.DocumentPending
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	stored := *d
	m.documents[d.ID] = &stored
	return nil
}

// GetDocument retrieves a document by ID.
func (m *MockStore) GetDocument(_ context.Context, id int64) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *d
	return &out, nil
}

// ListDocuments returns all documents, newest first.
func (m *MockStore) ListDocuments(_ context.Context) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Document
	for _, d := range m.documents {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

// MarkDocumentProcessing transitions pending → processing.
func (m *MockStore) MarkDocumentProcessing(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.documents[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	d.Status = models.DocumentProcessing
	d.ProcessingStartedAt = &now
	return nil
}

// FinishDocument records the terminal status and result.
func (m *MockStore) FinishDocument(_ context.Context, id int64, status models.DocumentStatus, result *models.IngestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.documents[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	d.Status = status
	d.Result = result
	d.ProcessingEndedAt = &now
	return nil
}

// Stats returns aggregate knowledge-base counts.
func (m *MockStore) Stats(context.Context) (*models.KBStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &models.KBStats{
		Entities:      int64(len(m.entities)),
		Relationships: int64(len(m.rels)),
		Documents:     int64(len(m.documents)),
		ByEntityType:  map[string]int64{},
		ByRelation:    map[string]int64{},
	}
	for _, e := range m.entities {
		stats.ByEntityType[string(e.EntityType)]++
	}
	for _, r := range m.rels {
		stats.ByRelation[string(r.RelationshipType)]++
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (m *MockStore) Close() error { return nil }
