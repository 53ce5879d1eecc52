package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relPaths(t *testing.T, root string, exclude []string) []string {
	t.Helper()
	got, err := ScanPages(root, exclude)
	require.NoError(t, err)
	out := make([]string, 0, len(got))
	for _, f := range got {
		out = append(out, f.RelPath)
	}
	return out
}

func TestScanPages_ExcludeCache(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "cache", "titles", "x.html"))
	touch(t, filepath.Join(root, "movies", "matrix.html"))
	touch(t, filepath.Join(root, "movies", "notes.txt"))

	assert.Equal(t, []string{"movies/matrix.html"}, relPaths(t, root, nil))
}

func TestScanPages_ExcludeDirsFromConfig(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "drafts", "a.html"))
	touch(t, filepath.Join(root, "ok", "b.htm"))
	touch(t, filepath.Join(root, "ok", "drafts", "c.html"))

	assert.Equal(t, []string{"ok/b.htm", "ok/drafts/c.html"}, relPaths(t, root, []string{"drafts", " "}),
		"排除路径相对 root，不按目录名匹配")
}

func TestScanPages_StableOrderAndCaseInsensitiveExt(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.HTML"))
	touch(t, filepath.Join(root, "a", "z.html"))
	touch(t, filepath.Join(root, "a.htm"))

	got, err := ScanPages(root, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a.htm", got[0].RelPath)
	assert.Equal(t, "a/z.html", got[1].RelPath)
	assert.Equal(t, "b.HTML", got[2].RelPath)
	assert.Equal(t, filepath.Join(root, "b.HTML"), got[2].AbsPath)
	assert.EqualValues(t, 1, got[2].Size)
}

func TestScanPages_MissingRoot(t *testing.T) {
	_, err := ScanPages(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}
