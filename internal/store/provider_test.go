package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	templerrors "github.com/harusame/templight/internal/errors"
)

func newTestFileSource(t *testing.T) (*FileSource, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileSource(dir, ".md"), dir
}

func TestFileSource_ReadAndModTime(t *testing.T) {
	fs, dir := newTestFileSource(t)
	path := filepath.Join(dir, "report.md")
	require.NoError(t, os.WriteFile(path, []byte("# 概要\n"), 0o644))

	text, err := fs.Read("report")
	require.NoError(t, err)
	assert.Equal(t, "# 概要\n", text)

	mt, err := fs.ModTime("report")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), mt)
}

func TestFileSource_NotFound(t *testing.T) {
	fs, _ := newTestFileSource(t)

	_, err := fs.Read("missing")
	assert.True(t, templerrors.IsNotFound(err))

	_, err = fs.ModTime("missing")
	assert.True(t, templerrors.IsNotFound(err))
}

func TestFileSource_RejectsUnsafeNames(t *testing.T) {
	fs, _ := newTestFileSource(t)

	for _, name := range []string{"", "../etc/passwd", "a/b", `a\b`} {
		_, err := fs.Read(name)
		assert.Error(t, err, "name %q must be rejected", name)
	}
}

func TestFileSource_Names(t *testing.T) {
	fs, dir := newTestFileSource(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	names, err := fs.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names, "sorted, extension-filtered, directories skipped")
}

func TestFileSource_NameForPath(t *testing.T) {
	fs, dir := newTestFileSource(t)

	assert.Equal(t, "report", fs.NameForPath(filepath.Join(dir, "report.md")))
	assert.Equal(t, "", fs.NameForPath(filepath.Join(dir, "report.txt")))
	assert.Equal(t, "", fs.NameForPath(filepath.Join(dir, "report")))
}
