package sqldb

import (
	"context"
	"database/sql"

	"github.com/sakif/media-catalog/internal/model"
)

// Select lists per kind. The password column is only read by the
// credential lookups.
const (
	userSelect           = "id, name, email, created_at, updated_at"
	userCredentialSelect = "id, name, email, password, created_at, updated_at"
	albumSelect          = "id, name, url, user_id, created_at, updated_at"
	songSelect           = "id, name, position, url, album_id, created_at, updated_at"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func scanUserCredentials(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func scanAlbum(s rowScanner) (model.Album, error) {
	var (
		a   model.Album
		url sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Name, &url, &a.UserID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return a, err
	}
	a.URL = nullableString(url)
	return a, nil
}

func scanSong(s rowScanner) (model.Song, error) {
	var (
		song model.Song
		url  sql.NullString
	)
	if err := s.Scan(&song.ID, &song.Name, &song.Position, &url, &song.AlbumID, &song.CreatedAt, &song.UpdatedAt); err != nil {
		return song, err
	}
	song.URL = nullableString(url)
	return song, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// selectRows runs query and scans every row. The result set is closed
// before returning so callers may issue follow-up queries on the same
// (single) SQLite connection.
func selectRows[T any](ctx context.Context, db *DB, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
