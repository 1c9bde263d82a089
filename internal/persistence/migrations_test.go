package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationFilesSortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "README.md", "0003_c.SQL"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0000_nested.sql"), 0o700))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "0001_a.sql"),
		filepath.Join(dir, "0002_b.sql"),
		filepath.Join(dir, "0003_c.SQL"),
	}, files)
}

func TestMigrationFilesMissingDir(t *testing.T) {
	_, err := migrationFiles(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorContains(t, err, "read migrations dir")
}

func TestShippedMigrationsAreListed(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "0001_users.sql", filepath.Base(files[0]))
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "does-not-matter", zap.NewNop()))
}
