package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"nightlife-navigator/internal/migrations"
	"nightlife-navigator/pkg/config"
	"nightlife-navigator/pkg/database"
)

// DBTest provides a real DB connection for integration tests with helpers for isolation.
// It uses DATABASE_URL_TEST if set, otherwise DATABASE_URL. Tests are skipped if missing.
type DBTest struct {
	T   *testing.T
	DB  *database.DB
	SQL *sql.DB
}

func NewDBTest(t *testing.T) *DBTest {
	t.Helper()
	url := os.Getenv("DATABASE_URL_TEST")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("DATABASE_URL_TEST or DATABASE_URL not set; skipping integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.Open(ctx, config.StoreConfig{DatabaseURL: url, MaxOpenConns: 4, MaxIdleConns: 2})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := migrations.Up(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}
	d := &DBTest{T: t, DB: db, SQL: db.Conn()}
	t.Cleanup(d.Close)
	return d
}

func (d *DBTest) Close() {
	_ = d.DB.Close()
}

// Truncate wipes the sync tables.
func (d *DBTest) Truncate() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, table := range []string{"venue_sync_events", "bars"} {
		if _, err := d.SQL.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			d.T.Fatalf("truncate %s: %v", table, err)
		}
	}
}

// InsertVenue adds a bars row with a fixed creation time so list order is
// deterministic.
func (d *DBTest) InsertVenue(id, name, address string, createdAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q := d.DB.Rebind("INSERT INTO bars (id, name, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?)")
	if _, err := d.SQL.ExecContext(ctx, q, id, name, address, createdAt, createdAt); err != nil {
		d.T.Fatalf("insert venue %s: %v", id, err)
	}
}
