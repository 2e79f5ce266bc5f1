package jsonblock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainObject(t *testing.T) {
	out, err := Extract(`{"a": 1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestExtractSurroundedByProse(t *testing.T) {
	in := "Sure! Here is the JSON you asked for:\n```json\n{\"教师姓名\": [\"张三\"], \"职称\": [\"教授\"]}\n```\nLet me know if you need anything else."
	out, err := Extract(in)
	require.NoError(t, err)

	var m map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, []string{"张三"}, m["教师姓名"])
}

func TestExtractNestedObjects(t *testing.T) {
	in := `noise {"outer": {"inner": [1, 2]}} trailing {"second": true}`
	out, err := Extract(in)
	require.NoError(t, err)
	assert.Equal(t, `{"outer": {"inner": [1, 2]}}`, out)
}

func TestExtractBracesInsideStrings(t *testing.T) {
	in := `{"note": "a } inside a string", "ok": true}`
	out, err := Extract(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExtractEscapedQuote(t *testing.T) {
	in := `{"note": "quote \" then } brace", "n": 1}`
	out, err := Extract(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExtractNoObject(t *testing.T) {
	_, err := Extract("no json here")
	assert.ErrorIs(t, err, ErrNoObject)

	_, err = Extract("unbalanced { opening")
	assert.ErrorIs(t, err, ErrNoObject)
}
