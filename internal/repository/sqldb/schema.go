package sqldb

import (
	"context"
	"fmt"
)

// MIGRATION STRATEGY:
// The schema is a list of idempotent CREATE ... IF NOT EXISTS statements
// run at startup and by the "migrate" command. Child rows cascade when their parent is deleted, so removing a
// user removes their albums and those albums' songs.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS albums (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		url        TEXT,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_albums_user_id ON albums(user_id)`,
	`CREATE TABLE IF NOT EXISTS songs (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		position   INTEGER NOT NULL,
		url        TEXT,
		album_id   TEXT NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_album_id ON songs(album_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		password   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT users_name_key UNIQUE (name),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS albums (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		url        TEXT,
		user_id    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT albums_user_id_fkey FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_albums_user_id ON albums(user_id)`,
	`CREATE TABLE IF NOT EXISTS songs (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		position   INTEGER NOT NULL,
		url        TEXT,
		album_id   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT songs_album_id_fkey FOREIGN KEY (album_id) REFERENCES albums(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_album_id ON songs(album_id)`,
}

func (d Dialect) schema() []string {
	if d == Postgres {
		return postgresSchema
	}
	return sqliteSchema
}

// Migrate creates any missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range db.dialect.schema() {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqldb: running migrations: %w", err)
		}
	}
	return nil
}
