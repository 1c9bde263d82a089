package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

// RunMigrations applies every *.sql file in dir in lexical order. The schema
// files create users, password_reset_tokens and api_calls idempotently, so the
// whole set runs on each start. The first failing file stops the run.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool; schema left to the in-memory store")
		return nil
	}

	files, err := migrationFiles(dir)
	if err != nil {
		return err
	}

	for i, path := range files {
		name := filepath.Base(path)
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("migration %d/%d (%s): %w", i+1, len(files), name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migration %d/%d (%s): %w", i+1, len(files), name, err)
		}
		logger.Debug("schema file applied", zap.String("file", name), zap.Int("position", i+1))
	}

	logger.Info("schema up to date", zap.String("dir", dir), zap.Int("files", len(files)))
	return nil
}

// migrationFiles lists the .sql files of dir, sorted. Other entries are ignored.
func migrationFiles(dir string) ([]string, error) {
	if dir == "" {
		dir = defaultMigrationsDir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
