package graph

import (
	"context"
	"sync"

	"github.com/facultykb/facultygraph/internal/models"
)

// RecordingMirror is an in-memory Mirror for tests. It keeps nodes and
// edges in maps and can be told to fail, to exercise best-effort
// mirroring paths.
type RecordingMirror struct {
	mu sync.Mutex

	Nodes map[string]models.Entity // keyed by name
	Edges map[int64]RecordedEdge   // keyed by store ID

	// FailAll makes every operation return an error.
	FailAll bool

	SyncCalls   int
	DeleteCalls int
}

// RecordedEdge is an edge as the mirror saw it.
type RecordedEdge struct {
	SourceName string
	TargetName string
	Type       models.RelationType
	Confidence float64
}

// NewRecordingMirror creates an empty recording mirror.
func NewRecordingMirror() *RecordingMirror {
	return &RecordingMirror{
		Nodes: map[string]models.Entity{},
		Edges: map[int64]RecordedEdge{},
	}
}

type mirrorError struct{}

func (mirrorError) Error() string { return "mirror unavailable" }

// SyncEntity records the node.
func (m *RecordingMirror) SyncEntity(_ context.Context, e *models.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return mirrorError{}
	}
	m.SyncCalls++
	m.Nodes[e.Name] = *e
	return nil
}

// DeleteEntity removes the node and every edge touching it.
func (m *RecordingMirror) DeleteEntity(_ context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return mirrorError{}
	}
	m.DeleteCalls++
	delete(m.Nodes, name)
	for eid, e := range m.Edges {
		if e.SourceName == name || e.TargetName == name {
			delete(m.Edges, eid)
		}
	}
	return nil
}

// SyncRelationship records the edge under its store ID.
func (m *RecordingMirror) SyncRelationship(_ context.Context, r *models.Relationship, sourceName, targetName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return mirrorError{}
	}
	m.SyncCalls++
	m.Edges[r.ID] = RecordedEdge{
		SourceName: sourceName,
		TargetName: targetName,
		Type:       r.RelationshipType,
		Confidence: r.Confidence,
	}
	return nil
}

// DeleteRelationship removes the edge by store ID.
func (m *RecordingMirror) DeleteRelationship(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return mirrorError{}
	}
	m.DeleteCalls++
	delete(m.Edges, id)
	return nil
}

// HasSubject reports whether the node exists.
func (m *RecordingMirror) HasSubject(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return false, mirrorError{}
	}
	_, ok := m.Nodes[name]
	return ok, nil
}

// Stats returns node and edge counts.
func (m *RecordingMirror) Stats(context.Context) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return 0, 0, mirrorError{}
	}
	return int64(len(m.Nodes)), int64(len(m.Edges)), nil
}

// Close is a no-op.
func (m *RecordingMirror) Close(context.Context) error { return nil }
