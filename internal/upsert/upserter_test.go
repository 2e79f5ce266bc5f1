package upsert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultykb/facultygraph/internal/graph"
	"github.com/facultykb/facultygraph/internal/models"
	"github.com/facultykb/facultygraph/internal/store"
)

func newTestUpserter() (*Upserter, *store.MockStore, *graph.RecordingMirror) {
	st := store.NewMockStore()
	mirror := graph.NewRecordingMirror()
	return New(st, mirror, nil, nil), st, mirror
}

func TestUpsertSubjectMirrorsEntity(t *testing.T) {
	u, st, mirror := newTestUpserter()
	ctx := context.Background()

	e, err := u.UpsertSubject(ctx, "张三", "地质工程方向教授", "teacher_photos/张三.png")
	require.NoError(t, err)
	assert.NotZero(t, e.ID)

	stored, err := st.GetEntityByName(ctx, "张三")
	require.NoError(t, err)
	assert.Equal(t, models.EntityTypePerson, stored.EntityType)

	node, ok := mirror.Nodes["张三"]
	require.True(t, ok)
	assert.Equal(t, e.ID, node.ID)
	assert.Equal(t, "地质工程方向教授", node.Description)
}

func TestUpsertSubjectOverwritesDescription(t *testing.T) {
	u, st, _ := newTestUpserter()
	ctx := context.Background()

	first, err := u.UpsertSubject(ctx, "张三", "旧简介", "")
	require.NoError(t, err)
	second, err := u.UpsertSubject(ctx, "张三", "新简介", "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	stored, err := st.GetEntityByName(ctx, "张三")
	require.NoError(t, err)
	assert.Equal(t, "新简介", stored.Description)
}

func TestUpsertTripleCreatesBothEndpoints(t *testing.T) {
	u, st, mirror := newTestUpserter()
	ctx := context.Background()

	err := u.UpsertTriple(ctx, models.Triple{
		Subject:  "张三",
		Relation: models.RelationBelongsTo,
		Object:   "地质工程学院",
	})
	require.NoError(t, err)

	src, err := st.GetEntityByName(ctx, "张三")
	require.NoError(t, err)
	assert.Equal(t, models.EntityTypePerson, src.EntityType)

	tgt, err := st.GetEntityByName(ctx, "地质工程学院")
	require.NoError(t, err)
	assert.Equal(t, models.EntityTypeOrganization, tgt.EntityType)

	rels, err := st.ListRelationships(ctx, src.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, models.RelationBelongsTo, rels[0].RelationshipType)

	edge, ok := mirror.Edges[rels[0].ID]
	require.True(t, ok)
	assert.Equal(t, "张三", edge.SourceName)
	assert.Equal(t, "地质工程学院", edge.TargetName)
}

func TestUpsertTripleDoesNotOverwriteExistingObject(t *testing.T) {
	u, st, _ := newTestUpserter()
	ctx := context.Background()

	// 李四 already exists as a person; a 相关于 triple pointing at them
	// must not retype them as an event.
	_, err := u.UpsertSubject(ctx, "李四", "教授", "")
	require.NoError(t, err)

	err = u.UpsertTriple(ctx, models.Triple{
		Subject:  "张三",
		Relation: models.RelationRelatedTo,
		Object:   "李四",
	})
	require.NoError(t, err)

	stored, err := st.GetEntityByName(ctx, "李四")
	require.NoError(t, err)
	assert.Equal(t, models.EntityTypePerson, stored.EntityType)
	assert.Equal(t, "教授", stored.Description)
}

func TestUpsertTripleReplacesRelationLabel(t *testing.T) {
	u, st, mirror := newTestUpserter()
	ctx := context.Background()

	require.NoError(t, u.UpsertTriple(ctx, models.Triple{
		Subject: "张三", Relation: models.RelationBelongsTo, Object: "地质工程学院",
	}))
	require.NoError(t, u.UpsertTriple(ctx, models.Triple{
		Subject: "张三", Relation: models.RelationOwns, Object: "地质工程学院",
	}))

	src, err := st.GetEntityByName(ctx, "张三")
	require.NoError(t, err)
	rels, err := st.ListRelationships(ctx, src.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, models.RelationOwns, rels[0].RelationshipType)

	// Same pair, same edge identity in the mirror, new label.
	require.Len(t, mirror.Edges, 1)
	assert.Equal(t, models.RelationOwns, mirror.Edges[rels[0].ID].Type)
}

func TestUpsertTripleSurvivesMirrorOutage(t *testing.T) {
	u, st, mirror := newTestUpserter()
	mirror.FailAll = true
	ctx := context.Background()

	err := u.UpsertTriple(ctx, models.Triple{
		Subject: "张三", Relation: models.RelationResearches, Object: "地质工程",
	})
	require.NoError(t, err)

	// Relational side is intact despite every mirror call failing.
	src, err := st.GetEntityByName(ctx, "张三")
	require.NoError(t, err)
	rels, err := st.ListRelationships(ctx, src.ID)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
	assert.Empty(t, mirror.Edges)
}

func TestDeleteEntityCascadesAcrossStores(t *testing.T) {
	u, st, mirror := newTestUpserter()
	ctx := context.Background()

	require.NoError(t, u.UpsertTriple(ctx, models.Triple{
		Subject: "张三", Relation: models.RelationRelatedTo, Object: "李四",
	}))
	require.NoError(t, u.UpsertTriple(ctx, models.Triple{
		Subject: "李四", Relation: models.RelationRelatedTo, Object: "王五",
	}))

	require.NoError(t, u.DeleteEntity(ctx, "李四"))

	_, err := st.GetEntityByName(ctx, "李四")
	assert.ErrorIs(t, err, store.ErrNotFound)

	zhang, err := st.GetEntityByName(ctx, "张三")
	require.NoError(t, err)
	rels, err := st.ListRelationships(ctx, zhang.ID)
	require.NoError(t, err)
	assert.Empty(t, rels)

	wang, err := st.GetEntityByName(ctx, "王五")
	require.NoError(t, err)
	rels, err = st.ListRelationships(ctx, wang.ID)
	require.NoError(t, err)
	assert.Empty(t, rels)

	assert.NotContains(t, mirror.Nodes, "李四")
	assert.Empty(t, mirror.Edges)
}

func TestDeleteEntityMissing(t *testing.T) {
	u, _, _ := newTestUpserter()
	err := u.DeleteEntity(context.Background(), "不存在的人")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInferObjectType(t *testing.T) {
	cases := []struct {
		value string
		rel   models.RelationType
		want  models.EntityType
	}{
		{"成都理工大学", models.RelationGraduatedFrom, models.EntityTypeOrganization},
		{"地质工程学院", models.RelationBelongsTo, models.EntityTypeOrganization},
		{"国家重点实验室", models.RelationOwns, models.EntityTypeOrganization},
		{"四川省", models.RelationRelatedTo, models.EntityTypeLocation},
		{"工程地质学", models.RelationTeaches, models.EntityTypeSubject},
		{"地质灾害防治", models.RelationResearches, models.EntityTypeSubject},
		{"优秀教师", models.RelationAwarded, models.EntityTypeEvent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, InferObjectType(tc.value, tc.rel), tc.value)
	}
}
