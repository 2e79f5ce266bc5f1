package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultykb/facultygraph/internal/extract"
	"github.com/facultykb/facultygraph/internal/models"
)

func TestSynthesizeExampleScenario(t *testing.T) {
	res := extract.Result{
		models.CategoryPersonName:   {"张三"},
		models.CategoryTitle:        {"教授"},
		models.CategoryAlmaMater:    {"成都理工大学"},
		models.CategoryResearchArea: {"地质工程"},
	}

	triples := Synthesize(res, "张三")
	assert.ElementsMatch(t, []models.Triple{
		{Subject: "张三", Relation: models.RelationOwns, Object: "教授"},
		{Subject: "张三", Relation: models.RelationGraduatedFrom, Object: "成都理工大学"},
		{Subject: "张三", Relation: models.RelationResearches, Object: "地质工程"},
	}, triples)
}

func TestSynthesizeOneTriplePerValue(t *testing.T) {
	res := extract.Result{
		models.CategoryResearchArea: {"地质灾害防治", "岩土体稳定性评价", "工程地质"},
	}

	triples := Synthesize(res, "李四")
	require.Len(t, triples, 3)
	for _, tr := range triples {
		assert.Equal(t, models.RelationResearches, tr.Relation)
	}
}

func TestSynthesizeNeverInventsObjects(t *testing.T) {
	res := extract.Result{
		models.CategoryTitle:      {"教授"},
		models.CategoryDepartment: {"地球科学学院"},
		models.CategoryDuty:       {"研究生招生工作"},
	}

	for _, tr := range Synthesize(res, "王五") {
		cat := models.RelationMapping[tr.Relation]
		assert.Contains(t, res.Values(cat), tr.Object,
			"object %q must come from category %s", tr.Object, cat)
	}
}

func TestSynthesizeSkipsSelfReference(t *testing.T) {
	res := extract.Result{
		models.CategoryDepartment: {"张三"},
	}
	assert.Empty(t, Synthesize(res, "张三"))
}

func TestSynthesizeEmptyInputs(t *testing.T) {
	assert.Empty(t, Synthesize(extract.Result{}, "张三"))
	assert.Empty(t, Synthesize(extract.Result{models.CategoryTitle: {"教授"}}, "  "))
}

func TestSynthesizeDeterministicOrder(t *testing.T) {
	res := extract.Result{
		models.CategoryTitle:      {"教授"},
		models.CategoryDepartment: {"地球科学学院"},
	}

	first := Synthesize(res, "张三")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Synthesize(res, "张三"))
	}
	// 属于 precedes 拥有 in the fixed relation order.
	require.Len(t, first, 2)
	assert.Equal(t, models.RelationBelongsTo, first[0].Relation)
}

func TestDedupe(t *testing.T) {
	a := models.Triple{Subject: "张三", Relation: models.RelationOwns, Object: "教授"}
	b := models.Triple{Subject: "李四", Relation: models.RelationOwns, Object: "教授"}

	out := Dedupe([]models.Triple{a, b, a, a, b})
	assert.Equal(t, []models.Triple{a, b}, out)

	assert.Empty(t, Dedupe(nil))
}
