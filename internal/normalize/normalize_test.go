package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixPunctuationEmail(t *testing.T) {
	in := "联系方式：zhangsan@cdut。edu。cn，欢迎咨询"
	out := FixPunctuation(in)
	assert.Contains(t, out, "zhangsan@cdut.edu.cn")
	assert.NotContains(t, out, "edu。cn")
}

func TestFixPunctuationURL(t *testing.T) {
	in := "主页 https://www。cdut。edu。cn/geo 常年更新"
	out := FixPunctuation(in)
	assert.Contains(t, out, "https://www.cdut.edu.cn/geo")
}

func TestFixPunctuationDomainSuffix(t *testing.T) {
	out := FixPunctuation("代码仓库在github。com上")
	assert.Contains(t, out, "github.com")
}

func TestFixPunctuationLeavesProseAlone(t *testing.T) {
	in := "张三教授。研究方向为地质工程。"
	assert.Equal(t, in, FixPunctuation(in))
}

func TestFixPunctuationEmpty(t *testing.T) {
	assert.Equal(t, "", FixPunctuation(""))
}

func TestStripBoilerplate(t *testing.T) {
	in := "张三，男，1975年3月生，邮箱：zs@x.cn，教授"
	out := StripBoilerplate(in)
	assert.NotContains(t, out, "1975年")
	assert.NotContains(t, out, "邮箱")
	assert.Contains(t, out, "教授")
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "张三", CleanName("  张 三　"))
	assert.Equal(t, "", CleanName("   "))
}

func TestTruncateRuneSafe(t *testing.T) {
	s := strings.Repeat("研", 10)
	assert.Equal(t, strings.Repeat("研", 4), Truncate(s, 4))
	assert.Equal(t, s, Truncate(s, 100))
	assert.Equal(t, s, Truncate(s, 0))
}

func TestCleanWholePass(t *testing.T) {
	in := "  张三，1980年生，研究方向为地质工程，邮箱：zs@cdut。edu。cn。  "
	out := Clean(in, 2500)
	assert.Contains(t, out, "地质工程")
	assert.NotContains(t, out, "1980年")

	assert.Equal(t, "", Clean("   ", 2500))
	assert.Equal(t, "", Clean("", 2500))
}
