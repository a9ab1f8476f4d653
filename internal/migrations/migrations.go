// Package migrations holds the schema for the bars and venue_sync_events
// tables, one directory per SQL dialect.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"nightlife-navigator/pkg/database"

	"github.com/pressly/goose/v3"
)

//go:embed mysql/*.sql postgres/*.sql
var files embed.FS

// goose keeps its base FS and dialect in package globals.
var mu sync.Mutex

// Up applies all pending migrations for the connection's dialect.
func Up(ctx context.Context, db *database.DB) error {
	mu.Lock()
	defer mu.Unlock()
	if err := setup(db.Dialect()); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.Conn(), db.Dialect()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Version reports the current schema version.
func Version(ctx context.Context, db *database.DB) (int64, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := setup(db.Dialect()); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db.Conn())
}

// Files lists the embedded migration files of a dialect.
func Files(dialect string) ([]string, error) {
	return fs.Glob(files, dialect+"/*.sql")
}

func setup(dialect string) error {
	goose.SetBaseFS(files)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set migration dialect %s: %w", dialect, err)
	}
	return nil
}
