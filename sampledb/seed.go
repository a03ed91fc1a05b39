package sampledb

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Seed drops and recreates the sample tables, then loads the fixed data set.
func (db *DB) Seed(ctx context.Context) error {
	for _, file := range []string{db.dialect.schemaFile(), "schema/seed.sql"} {
		if err := db.execFile(ctx, file); err != nil {
			return err
		}
	}
	db.logger.Info("sampledb: seeded", zap.String("driver", db.dialect.DriverName()))
	return nil
}

func (db *DB) execFile(ctx context.Context, file string) error {
	content, err := schemaFS.ReadFile(file)
	if err != nil {
		return err
	}
	// 两个驱动都支持一次执行多条语句
	if _, err = db.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("sampledb: %s: %w", file, err)
	}
	db.logger.Debug("sampledb: executed", zap.String("file", file),
		zap.Int("statements", strings.Count(string(content), ";")))
	return nil
}
