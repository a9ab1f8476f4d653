package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"nightlife-navigator/internal/constants"
	"nightlife-navigator/pkg/config"
	errs "nightlife-navigator/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

type DB struct {
	conn         *sql.DB
	driver       string
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// DriverFor picks the database/sql driver for a DSN. Postgres URLs (Supabase
// included) go through pgx, everything else is treated as a MySQL DSN.
func DriverFor(dsn string) string {
	d := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") {
		return DriverPostgres
	}
	return DriverMySQL
}

// Open connects and pings the store. Every failure, including a missing
// DATABASE_URL, is reported as store unavailable.
func Open(ctx context.Context, cfg config.StoreConfig) (*DB, error) {
	if !cfg.Enabled() {
		return nil, errs.NewStoreUnavailable("database.Open", "store disabled: DATABASE_URL not set", nil)
	}

	driver := DriverFor(cfg.DatabaseURL)
	conn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		return nil, errs.NewStoreUnavailable("database.Open", "failed to open connection", err)
	}

	// Use configuration values for connection pool settings
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	db := NewFromConn(conn, driver, cfg.ReadTimeout, cfg.WriteTimeout)
	if err := db.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// NewFromConn wraps an already opened connection. Zero timeouts fall back to
// the package defaults.
func NewFromConn(conn *sql.DB, driver string, readTimeout, writeTimeout time.Duration) *DB {
	if readTimeout <= 0 {
		readTimeout = constants.DBReadTimeoutDefault
	}
	if writeTimeout <= 0 {
		writeTimeout = constants.DBWriteTimeoutDefault
	}
	if driver == "" {
		driver = DriverMySQL
	}
	return &DB{conn: conn, driver: driver, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

// Close closes database connection
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping checks connectivity within the read timeout.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.WithReadTimeout(ctx)
	defer cancel()
	if err := db.conn.PingContext(ctx); err != nil {
		return errs.NewStoreUnavailable("database.Ping", "failed to reach store", err)
	}
	return nil
}

func (db *DB) Conn() *sql.DB { return db.conn }

func (db *DB) Driver() string { return db.driver }

// Dialect is the goose dialect name for the active driver.
func (db *DB) Dialect() string {
	if db.driver == DriverPostgres {
		return "postgres"
	}
	return "mysql"
}

// WithReadTimeout creates a context with standard read timeout.
func (db *DB) WithReadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.readTimeout)
}

// WithWriteTimeout creates a context with standard write timeout.
func (db *DB) WithWriteTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.writeTimeout)
}

// Rebind rewrites '?' placeholders to '$n' for Postgres. Queries in this
// repo never contain a literal '?' inside strings.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
