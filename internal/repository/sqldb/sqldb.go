// Package sqldb implements the repository interfaces on database/sql.
//
// TWO BACKENDS, ONE CODE PATH:
// The same queries run against SQLite (modernc.org/sqlite, pure Go, the
// default and what the tests use) and PostgreSQL (jackc/pgx through its
// database/sql adapter). Queries are written once with "?" placeholders and
// rebound per dialect; the few spots where the SQL itself differs
// (case-insensitive LIKE, column types in the schema, constraint error codes)
// live in dialect.go and errors.go.
//
// GENERIC TABLES:
// Every entity kind is served by a Table[T]. The table reads its columns and
// read-query shape from the entity registry, so insert/update/validation code
// is written once for users, albums and songs alike. Only row scanning and
// association loading are per-kind.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/sakif/media-catalog/internal/entity"
	"github.com/sakif/media-catalog/internal/model"
	"github.com/sakif/media-catalog/internal/repository"
)

// Options configures Open.
type Options struct {
	Dialect      Dialect
	DSN          string // file path or ":memory:" for SQLite, URL for Postgres
	MaxOpenConns int    // Postgres only; SQLite always uses one connection
}

// DB owns the connection pool and the per-kind tables.
type DB struct {
	conn    *sql.DB
	dialect Dialect

	users  *UserTable
	albums *Table[model.Album]
	songs  *Table[model.Song]
}

var (
	_ repository.UserRepository          = (*UserTable)(nil)
	_ repository.Repository[model.Album] = (*Table[model.Album])(nil)
	_ repository.Repository[model.Song]  = (*Table[model.Song])(nil)
)

// New opens a SQLite database at dbPath and creates the schema.
//
//   - "data/catalog.db" → file-based, persistent
//   - ":memory:"        → in-memory, gone when closed (tests)
func New(dbPath string) (*DB, error) {
	db, err := Open(context.Background(), Options{Dialect: SQLite, DSN: dbPath})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open connects to the configured database and verifies the connection.
// It does not create the schema; call Migrate for that.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if err := opts.Dialect.validate(); err != nil {
		return nil, err
	}

	dsn := opts.DSN
	if opts.Dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(opts.Dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqldb: opening %s database: %w", opts.Dialect, err)
	}

	switch opts.Dialect {
	case SQLite:
		// A single connection keeps ":memory:" databases coherent across
		// queries and serializes writers, which SQLite requires anyway.
		conn.SetMaxOpenConns(1)
		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqldb: pinging database: %w", err)
		}
	case Postgres:
		if opts.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if err := pingWithBackoff(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return newDB(conn, opts.Dialect), nil
}

func newDB(conn *sql.DB, dialect Dialect) *DB {
	db := &DB{conn: conn, dialect: dialect}
	db.users = &UserTable{Table: newTable(db, entity.User, userSelect, scanUser, db.includeForUsers)}
	db.albums = newTable(db, entity.Album, albumSelect, scanAlbum, db.includeForAlbums)
	db.songs = newTable(db, entity.Song, songSelect, scanSong, db.includeForSongs)
	return db
}

// pingWithBackoff waits for a freshly started Postgres to accept connections.
func pingWithBackoff(ctx context.Context, conn *sql.DB) error {
	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = conn.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return fmt.Errorf("sqldb: pinging database: %w", lastErr)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Dialect reports which backend the DB talks to.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) Users() *UserTable           { return db.users }
func (db *DB) Albums() *Table[model.Album] { return db.albums }
func (db *DB) Songs() *Table[model.Song]   { return db.songs }

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.dialect.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.dialect.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.dialect.rebind(query), args...)
}
