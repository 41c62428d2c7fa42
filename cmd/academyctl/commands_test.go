package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
)

func memoryConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "database:\n  driver: memory\njwt:\n  secret: test-secret\nserver:\n  storage_path: " + filepath.Join(dir, "uploads") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	t.Run("from argument", func(t *testing.T) {
		out, err := run(t, "", "hash-password", "s3cret")
		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(strings.TrimSpace(out), "s3cret"))
	})

	t.Run("from stdin", func(t *testing.T) {
		out, err := run(t, "other\n", "hash-password")
		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(strings.TrimSpace(out), "other"))
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := run(t, "\n", "hash-password")
		assert.Error(t, err)
	})
}

func TestSeedOnMemoryStore(t *testing.T) {
	_, err := run(t, "", "--config", memoryConfig(t), "seed")
	assert.NoError(t, err)
}

func TestReconcileUnknownCourse(t *testing.T) {
	_, err := run(t, "", "--config", memoryConfig(t), "reconcile", "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDeleteCourseCascadeUnknownCourse(t *testing.T) {
	_, err := run(t, "", "--config", memoryConfig(t), "delete-course", "missing", "--cascade")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	_, err := run(t, "", "--config", memoryConfig(t), "migrate")
	assert.ErrorIs(t, err, errMigrateDriver)
}

func TestDeleteCourseNeedsID(t *testing.T) {
	_, err := run(t, "", "delete-course")
	assert.Error(t, err)
}
