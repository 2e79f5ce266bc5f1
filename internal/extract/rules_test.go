package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultykb/facultygraph/internal/models"
)

func ruleExtract(t *testing.T, subject, text string) Result {
	t.Helper()
	res, err := NewRuleStrategy().Extract(context.Background(), subject, text)
	require.NoError(t, err)
	return res
}

func TestRulesExampleBiography(t *testing.T) {
	res := ruleExtract(t, "张三", "张三教授，成都理工大毕业，研究方向为地质工程")

	assert.Equal(t, []string{"张三"}, res.Values(models.CategoryPersonName))
	assert.Equal(t, []string{"教授"}, res.Values(models.CategoryTitle))
	assert.Equal(t, []string{"成都理工大学"}, res.Values(models.CategoryAlmaMater))
	assert.Equal(t, []string{"地质工程"}, res.Values(models.CategoryResearchArea))
}

func TestRulesSubjectAlwaysIncluded(t *testing.T) {
	res := ruleExtract(t, "李四", "")
	assert.Equal(t, []string{"李四"}, res.Values(models.CategoryPersonName))

	// One-rune names are not valid subjects.
	res = ruleExtract(t, "李", "某个介绍")
	assert.Empty(t, res.Values(models.CategoryPersonName))

	res = ruleExtract(t, "  王五  ", "")
	assert.Equal(t, []string{"王五"}, res.Values(models.CategoryPersonName))
}

func TestRulesTitleVariants(t *testing.T) {
	res := ruleExtract(t, "张三", "张三，副教授，兼职高级实验师")
	assert.Contains(t, res.Values(models.CategoryTitle), "副教授")
	assert.Contains(t, res.Values(models.CategoryTitle), "高级实验师")
	// 副教授 must not additionally yield a bare 教授.
	assert.NotContains(t, res.Values(models.CategoryTitle), "教授")
}

func TestRulesDepartment(t *testing.T) {
	res := ruleExtract(t, "张三", "张三隶属于地球物理学院，曾任职能源系")
	assert.Contains(t, res.Values(models.CategoryDepartment), "地球物理学院")
}

func TestRulesDepartmentLengthBound(t *testing.T) {
	// Below four runes the match is discarded.
	res := ruleExtract(t, "张三", "曾在（医院）工作")
	assert.Empty(t, res.Values(models.CategoryDepartment))
}

func TestRulesDutySplitting(t *testing.T) {
	long := "负责学院本科教学管理、研究生招生工作、实验室安全管理、青年教师培养和国际交流合作事务"
	res := ruleExtract(t, "张三", long)

	duties := res.Values(models.CategoryDuty)
	require.NotEmpty(t, duties)
	assert.Contains(t, duties, "研究生招生工作")
	for _, d := range duties {
		n := len([]rune(d))
		assert.GreaterOrEqual(t, n, 3)
		assert.LessOrEqual(t, n, 20)
	}
}

func TestRulesDutyShortKeptWhole(t *testing.T) {
	res := ruleExtract(t, "张三", "负责学院研究生教学管理")
	assert.Equal(t, []string{"学院研究生教学管理"}, res.Values(models.CategoryDuty))
}

func TestRulesResearchAreasSplit(t *testing.T) {
	res := ruleExtract(t, "张三", "研究方向为地质灾害防治、岩土体稳定性评价；研究领域为工程地质")
	areas := res.Values(models.CategoryResearchArea)
	assert.Contains(t, areas, "地质灾害防治")
	assert.Contains(t, areas, "岩土体稳定性评价")
}

func TestRulesCourses(t *testing.T) {
	res := ruleExtract(t, "张三", "主讲《工程地质分析原理》等课程，另主讲水文地质学课")
	courses := res.Values(models.CategoryCourse)
	assert.Contains(t, courses, "工程地质分析原理")
	assert.Contains(t, courses, "水文地质学")
}

func TestRulesAlmaMater(t *testing.T) {
	res := ruleExtract(t, "张三", "1998年毕业于西南交通大学，获博士学位于日本九州大学")
	schools := res.Values(models.CategoryAlmaMater)
	assert.Contains(t, schools, "西南交通大学")
	assert.Contains(t, schools, "日本九州大学")
}

func TestRulesHonors(t *testing.T) {
	res := ruleExtract(t, "张三", "获得全国优秀教师称号，入选国家高层次人才特殊支持计划")
	honors := res.Values(models.CategoryHonor)
	assert.Contains(t, honors, "全国优秀教师称号")
	assert.NotEmpty(t, honors)
}

func TestRulesDeduplicatesWithinCall(t *testing.T) {
	res := ruleExtract(t, "张三", "张三教授，教授，还是教授")
	assert.Equal(t, []string{"教授"}, res.Values(models.CategoryTitle))
}

func TestExpandSchoolNames(t *testing.T) {
	assert.Equal(t, "毕业于成都理工大学", ExpandSchoolNames("毕业于成都理工大"))
	// Already-full names must not grow an extra 学.
	assert.Equal(t, "毕业于成都理工大学", ExpandSchoolNames("毕业于成都理工大学"))
	assert.False(t, strings.Contains(ExpandSchoolNames("四川大学和四川大"), "四川大学学"))
}
