package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLFilesOrdered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_lessons.sql", "001_init.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := SQLFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001_init.sql"),
		filepath.Join(dir, "002_lessons.sql"),
	}, files)
}

func TestSQLFilesMissingDir(t *testing.T) {
	_, err := SQLFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "001", Version("migrations/001_init.sql"))
	assert.Equal(t, "010", Version("010_add_lesson_slug_index.sql"))
}

func TestShippedMigrationsParse(t *testing.T) {
	files, err := SQLFiles(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001", Version(files[0]))
}
