package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReadWriteTitle(t *testing.T) {
	root := t.TempDir()
	s := New(root, false)

	p, err := s.WriteTitle("movies/matrix.html", []byte(`{"title":"The Matrix"}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cache", "titles", "movies", "matrix.html.json"), p)

	b, ok, err := s.ReadTitle("movies/matrix.html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"title":"The Matrix"}`, string(b))

	p, err = s.WriteTitleNFO("movies/matrix.html", []byte("<movie/>"))
	require.NoError(t, err)
	assert.FileExists(t, p)

	require.NoError(t, s.WriteReport([]byte("{}")))
	assert.FileExists(t, s.ReportPath())
}

func TestStore_ReadMissing(t *testing.T) {
	_, ok, err := New(t.TempDir(), true).ReadTitle("nope.html")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReadOnlyRejectWrite(t *testing.T) {
	root := t.TempDir()
	s := New(root, true)

	_, err := s.WriteTitle("a.html", []byte("{}"))
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, s.WriteReport([]byte("{}")), ErrReadOnly)

	_, err = os.Stat(s.Dir())
	assert.True(t, os.IsNotExist(err), "只读模式不应创建 cache 目录")
}

func TestStore_RejectsEscapingPaths(t *testing.T) {
	s := New(t.TempDir(), false)
	for _, rel := range []string{"", "../x.html", "a/../../x.html", "/etc/passwd"} {
		_, err := s.TitlePath(rel, ".json")
		assert.Error(t, err, "路径 %q", rel)
	}
	p, err := s.TitlePath("a/./b.html", ".json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "cache", "titles", "a", "b.html.json"), p)
}
