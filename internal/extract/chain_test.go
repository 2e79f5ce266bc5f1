package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultykb/facultygraph/internal/models"
)

// failingStrategy always errors, standing in for an unreachable model
// endpoint.
type failingStrategy struct{ calls int }

func (*failingStrategy) Name() string { return "failing" }

func (f *failingStrategy) Extract(context.Context, string, string) (Result, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

// cannedStrategy returns a fixed result.
type cannedStrategy struct{ res Result }

func (*cannedStrategy) Name() string { return "canned" }

func (c *cannedStrategy) Extract(context.Context, string, string) (Result, error) {
	return c.res, nil
}

func TestChainFallsBackOnError(t *testing.T) {
	failing := &failingStrategy{}
	chain := NewChain(nil, failing, NewRuleStrategy())

	res := chain.Extract(context.Background(), "张三", "张三教授，研究方向为地质工程")

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, []string{"张三"}, res.Values(models.CategoryPersonName))
	assert.Equal(t, []string{"教授"}, res.Values(models.CategoryTitle))
}

func TestChainFirstSuccessWins(t *testing.T) {
	canned := &cannedStrategy{res: Result{
		models.CategoryTitle: []string{"副教授"},
	}}
	chain := NewChain(nil, canned, NewRuleStrategy())

	res := chain.Extract(context.Background(), "张三", "张三教授")

	// The canned result is used as-is; the rule engine never runs.
	assert.Equal(t, []string{"副教授"}, res.Values(models.CategoryTitle))
}

func TestChainEnsuresSubjectName(t *testing.T) {
	// A strategy that forgets the subject still yields it in the result.
	canned := &cannedStrategy{res: Result{
		models.CategoryTitle: []string{"教授"},
	}}
	chain := NewChain(nil, canned)

	res := chain.Extract(context.Background(), "张三", "")
	assert.Equal(t, []string{"张三"}, res.Values(models.CategoryPersonName))
}

func TestChainSkipsEmptyResults(t *testing.T) {
	canned := &cannedStrategy{res: Result{}}
	chain := NewChain(nil, canned, NewRuleStrategy())

	res := chain.Extract(context.Background(), "张三", "张三教授")
	assert.Equal(t, []string{"教授"}, res.Values(models.CategoryTitle))
}

func TestChainAllStrategiesFail(t *testing.T) {
	chain := NewChain(nil, &failingStrategy{}, &failingStrategy{})

	res := chain.Extract(context.Background(), "张三", "任何文本")
	// Catastrophic failure still reports the subject.
	assert.Equal(t, []string{"张三"}, res.Values(models.CategoryPersonName))
	assert.Equal(t, 1, res.Total())
}

func TestOllamaStrategyParsesNoisyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		// The model wraps its JSON in prose; the strategy must still
		// recover it.
		_, _ = w.Write([]byte(`{"response": "好的，以下是结果：{\"教师姓名\": [\"张三\"], \"职称\": [\"教授\"]} 希望对你有帮助"}`))
	}))
	defer srv.Close()

	s := NewOllamaStrategy(srv.URL, "qwen2:7b", 0.1, 300, 5*time.Second, nil)
	res, err := s.Extract(context.Background(), "张三", "张三教授")
	require.NoError(t, err)

	assert.Equal(t, []string{"张三"}, res.Values(models.CategoryPersonName))
	assert.Equal(t, []string{"教授"}, res.Values(models.CategoryTitle))
}

func TestOllamaStrategyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewOllamaStrategy(srv.URL, "qwen2:7b", 0.1, 300, 5*time.Second, nil)
	_, err := s.Extract(context.Background(), "张三", "文本")
	assert.Error(t, err)
}

func TestParseResponseDropsUnknownCategories(t *testing.T) {
	res, err := parseResponse(`{"教师姓名": ["张三"], "星座": ["处女座"], "职称": ["教授", "教授", ""]}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"张三"}, res.Values(models.CategoryPersonName))
	assert.Equal(t, []string{"教授"}, res.Values(models.CategoryTitle))
	assert.Equal(t, 2, res.Total())
}

func TestParseResponseRejectsNonJSON(t *testing.T) {
	_, err := parseResponse("抱歉，我无法完成这个任务。")
	assert.Error(t, err)
}
