package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/facultykb/facultygraph/internal/models"
	"github.com/facultykb/facultygraph/pkg/jsonblock"
)

// extractionPromptTemplate demands strict JSON keyed by the taxonomy
// categories. Duty phrases are called out explicitly because models like
// to file them under honors.
const extractionPromptTemplate = `仅返回合法的JSON格式，不要包含任何Markdown标记或多余解释！
任务：从文本中提取以下类型的实体：%s。修正不完整实体，补充遗漏实体。
注意：包含"负责"、"主持"、"分管"等词的内容归类为"工作职责"，不要归类为"荣誉称号"！
已知导师姓名：%s
文本内容：
%s
输出格式：%s`

// systemPrompt steers chat-style endpoints toward JSON-only output.
const systemPrompt = "你是一个精确的实体提取系统，只输出合法的JSON。"

// buildPrompt renders the extraction prompt for the given subject and
// biography text.
func buildPrompt(subject, text string) string {
	names := make([]string, len(models.Categories))
	skeleton := make(map[string][]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
		skeleton[string(c)] = []string{}
	}
	skeleton[string(models.CategoryPersonName)] = []string{subject}

	shape, _ := json.Marshal(skeleton)
	return fmt.Sprintf(extractionPromptTemplate,
		strings.Join(names, "、"), subject, text, string(shape))
}

// parseResponse rescues and decodes a model reply into a Result. Unknown
// category keys are dropped; values are trimmed and deduplicated.
func parseResponse(raw string) (Result, error) {
	block, err := jsonblock.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("locating JSON in response: %w", err)
	}

	var decoded map[string][]string
	if err := json.Unmarshal([]byte(block), &decoded); err != nil {
		return nil, fmt.Errorf("decoding response JSON: %w", err)
	}

	res := Result{}
	for _, cat := range models.Categories {
		for _, v := range decoded[string(cat)] {
			res.Add(cat, v)
		}
	}
	return res, nil
}
