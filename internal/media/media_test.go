package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	assert.Equal(t, "张三", SafeName("张三"))
	assert.Equal(t, "张三", SafeName("  张三  "))
	assert.Equal(t, "zhang-san_01", SafeName("zhang-san_01"))
	assert.Equal(t, "张三", SafeName("张三？*"))
	assert.Equal(t, "", SafeName("未知"))
	assert.Equal(t, "", SafeName("补充中"))
	assert.Equal(t, "", SafeName(""))
}

func TestSavePhotoByName(t *testing.T) {
	d := NewDir(t.TempDir())

	rel, err := d.SavePhoto("张三", 2, []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("teacher_photos", "张三.png"), rel)

	data, err := os.ReadFile(d.Path(rel))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestSavePhotoRowFallback(t *testing.T) {
	d := NewDir(t.TempDir())

	rel, err := d.SavePhoto("未知", 7, []byte{1})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("teacher_photos", "teacher_row_7.png"), rel)
}

func TestRemoveTolerant(t *testing.T) {
	d := NewDir(t.TempDir())

	rel, err := d.SavePhoto("李四", 3, []byte{1})
	require.NoError(t, err)
	require.NoError(t, d.Remove(rel))

	// Removing again, or removing nothing, is fine.
	assert.NoError(t, d.Remove(rel))
	assert.NoError(t, d.Remove(""))
}
