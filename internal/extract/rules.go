package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/facultykb/facultygraph/internal/models"
)

// schoolExpansion maps truncated institution names, as they appear in the
// source documents, to their full form. Applied as a pre-pass before
// pattern matching so the alma-mater rule sees complete names.
var schoolExpansion = []struct{ short, full string }{
	{"成都理工大", "成都理工大学"},
	{"四川大", "四川大学"},
	{"电子科技大", "电子科技大学"},
	{"日本九州大", "日本九州大学"},
	{"西南交通大", "西南交通大学"},
	{"成都理工学", "成都理工大学"},
	{"清华大", "清华大学"},
	{"北京大", "北京大学"},
	{"复旦大", "复旦大学"},
}

// Clause boundary class shared by most rules: stop at punctuation and
// brackets so a match never spans clauses.
const boundary = `[^，。；：\(\)（）]`

var (
	titlePattern = regexp.MustCompile(`(副教授|教授|副研究员|研究员|高级实验师|讲师|助教|工程师)`)

	deptPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(` + boundary + `{2,10}(?:学院|院|系))`),
		regexp.MustCompile(`隶属于(` + boundary + `{2,10}(?:学院|院|系))`),
		regexp.MustCompile(`主持(` + boundary + `{2,10}(?:学院|院|系))`),
	}

	dutyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`负责(` + boundary + `{5,80})`),
		regexp.MustCompile(`主持(` + boundary + `{5,80}工作)`),
		regexp.MustCompile(`分管(` + boundary + `{5,80})`),
	}
	dutySplit = regexp.MustCompile(`[、，]`)

	researchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`研究方向[为：:\s]*(` + boundary + `{3,50})`),
		regexp.MustCompile(`研究领域[为：:\s]*(` + boundary + `{3,50})`),
	}
	researchSplit = regexp.MustCompile(`[,，、;；]`)

	coursePatterns = []*regexp.Regexp{
		regexp.MustCompile(`主讲[《\s]*([^》，。；：]{3,20})》?课`),
		regexp.MustCompile(`《([^》]{3,20})》`),
	}

	schoolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`毕业于(` + boundary + `{4,20}(?:大学|学院|研究院))`),
		regexp.MustCompile(`(` + boundary + `{4,20}(?:大学|学院|研究院))毕业`),
		regexp.MustCompile(`获[硕博]士学位于(` + boundary + `{4,20}(?:大学|学院))`),
	}

	honorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`获得(` + boundary + `{4,30}称号)`),
		regexp.MustCompile(`入选(` + boundary + `{4,30}计划)`),
		regexp.MustCompile(`(` + boundary + `{4,30}人才)`),
	}
)

// RuleStrategy extracts entities with a fixed ordered set of pattern
// rules. It is the terminal fallback of every chain: it never returns an
// error.
type RuleStrategy struct{}

// NewRuleStrategy creates the rule-based extraction strategy.
func NewRuleStrategy() *RuleStrategy {
	return &RuleStrategy{}
}

// Name identifies the strategy in logs.
func (*RuleStrategy) Name() string { return "rules" }

// Extract applies every rule independently and unions the matches.
func (*RuleStrategy) Extract(_ context.Context, subject, text string) (Result, error) {
	res := Result{}

	text = ExpandSchoolNames(text)

	// Subject name is always included when at least two runes survive
	// trimming.
	subject = strings.TrimSpace(subject)
	if len([]rune(subject)) >= 2 {
		res.Add(models.CategoryPersonName, subject)
	}

	for _, m := range titlePattern.FindAllString(text, -1) {
		res.Add(models.CategoryTitle, m)
	}

	for _, p := range deptPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			dept := strings.TrimSpace(m[1])
			if runeLen(dept) >= 4 && (strings.Contains(dept, "院") || strings.Contains(dept, "系")) {
				res.Add(models.CategoryDepartment, dept)
			}
		}
	}

	for _, p := range dutyPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			duty := strings.TrimSpace(m[1])
			if runeLen(duty) > 30 {
				// Long duty runs are itemized lists; split and keep the
				// items of sensible length.
				for _, part := range dutySplit.Split(duty, -1) {
					part = strings.TrimSpace(part)
					if n := runeLen(part); n >= 3 && n <= 20 {
						res.Add(models.CategoryDuty, part)
					}
				}
			} else if runeLen(duty) >= 3 {
				res.Add(models.CategoryDuty, duty)
			}
		}
	}

	for _, p := range researchPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			for _, part := range researchSplit.Split(m[1], -1) {
				part = strings.TrimSpace(part)
				if runeLen(part) >= 3 {
					res.Add(models.CategoryResearchArea, part)
				}
			}
		}
	}

	for _, p := range coursePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			course := strings.TrimSpace(m[1])
			if runeLen(course) >= 3 {
				res.Add(models.CategoryCourse, course)
			}
		}
	}

	for _, p := range schoolPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			school := strings.TrimSpace(m[1])
			if strings.Contains(school, "大学") || strings.Contains(school, "学院") || strings.Contains(school, "研究院") {
				res.Add(models.CategoryAlmaMater, school)
			}
		}
	}

	for _, p := range honorPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			honor := strings.TrimSpace(m[1])
			if runeLen(honor) >= 4 {
				res.Add(models.CategoryHonor, honor)
			}
		}
	}

	return res, nil
}

// ExpandSchoolNames rewrites truncated institution names to their full
// form. Names already in full form are left untouched: each pair is
// first normalized down to the short form so expansion applies exactly
// once.
func ExpandSchoolNames(text string) string {
	for _, e := range schoolExpansion {
		text = strings.ReplaceAll(text, e.full, e.short)
		text = strings.ReplaceAll(text, e.short, e.full)
	}
	return text
}

func runeLen(s string) int { return len([]rune(s)) }
