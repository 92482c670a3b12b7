package sqldb

import (
	"context"
	"fmt"

	"github.com/sakif/media-catalog/internal/entity"
	"github.com/sakif/media-catalog/internal/model"
)

// EAGER LOADING:
// Associations are loaded with one "WHERE <fk> IN (...)" query per include
// level rather than one query per parent row, then stitched onto the parents
// in memory. Nested includes run on the children before they are copied
// into their parents, since the parents hold copies and not pointers.

func (db *DB) includeForUsers(ctx context.Context, users []*model.User, includes []entity.Include) error {
	if len(users) == 0 {
		return nil
	}
	for _, inc := range includes {
		switch inc.Kind {
		case entity.Album:
			if err := db.loadUserAlbums(ctx, users, inc); err != nil {
				return err
			}
		default:
			return fmt.Errorf("sqldb: %s has no association with %s", entity.User, inc.Kind)
		}
	}
	return nil
}

func (db *DB) includeForAlbums(ctx context.Context, albums []*model.Album, includes []entity.Include) error {
	if len(albums) == 0 {
		return nil
	}
	for _, inc := range includes {
		var err error
		switch inc.Kind {
		case entity.User:
			err = db.loadAlbumUsers(ctx, albums, inc)
		case entity.Song:
			err = db.loadAlbumSongs(ctx, albums, inc)
		default:
			err = fmt.Errorf("sqldb: %s has no association with %s", entity.Album, inc.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) includeForSongs(ctx context.Context, songs []*model.Song, includes []entity.Include) error {
	if len(songs) == 0 {
		return nil
	}
	for _, inc := range includes {
		switch inc.Kind {
		case entity.Album:
			if err := db.loadSongAlbums(ctx, songs, inc); err != nil {
				return err
			}
		default:
			return fmt.Errorf("sqldb: %s has no association with %s", entity.Song, inc.Kind)
		}
	}
	return nil
}

// loadUserAlbums fills User.Albums (has-many).
func (db *DB) loadUserAlbums(ctx context.Context, users []*model.User, inc entity.Include) error {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	albums, err := selectIn(ctx, db, scanAlbum, albumSelect, entity.Album, "user_id", ids, inc.Order)
	if err != nil {
		return err
	}
	if err := db.includeForAlbums(ctx, pointers(albums), inc.Include); err != nil {
		return err
	}

	byUser := make(map[string][]model.Album, len(users))
	for _, a := range albums {
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}
	for _, u := range users {
		u.Albums = byUser[u.ID]
		if u.Albums == nil {
			u.Albums = []model.Album{}
		}
	}
	return nil
}

// loadAlbumUsers fills Album.User (belongs-to).
func (db *DB) loadAlbumUsers(ctx context.Context, albums []*model.Album, inc entity.Include) error {
	ids := make([]string, len(albums))
	for i, a := range albums {
		ids[i] = a.UserID
	}

	users, err := selectIn(ctx, db, scanUser, userSelect, entity.User, "id", ids, inc.Order)
	if err != nil {
		return err
	}
	if err := db.includeForUsers(ctx, pointers(users), inc.Include); err != nil {
		return err
	}

	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, a := range albums {
		if u, ok := byID[a.UserID]; ok {
			a.User = &u
		}
	}
	return nil
}

// loadAlbumSongs fills Album.Songs (has-many).
func (db *DB) loadAlbumSongs(ctx context.Context, albums []*model.Album, inc entity.Include) error {
	ids := make([]string, len(albums))
	for i, a := range albums {
		ids[i] = a.ID
	}

	songs, err := selectIn(ctx, db, scanSong, songSelect, entity.Song, "album_id", ids, inc.Order)
	if err != nil {
		return err
	}
	if err := db.includeForSongs(ctx, pointers(songs), inc.Include); err != nil {
		return err
	}

	byAlbum := make(map[string][]model.Song, len(albums))
	for _, s := range songs {
		byAlbum[s.AlbumID] = append(byAlbum[s.AlbumID], s)
	}
	for _, a := range albums {
		a.Songs = byAlbum[a.ID]
		if a.Songs == nil {
			a.Songs = []model.Song{}
		}
	}
	return nil
}

// loadSongAlbums fills Song.Album (belongs-to).
func (db *DB) loadSongAlbums(ctx context.Context, songs []*model.Song, inc entity.Include) error {
	ids := make([]string, len(songs))
	for i, s := range songs {
		ids[i] = s.AlbumID
	}

	albums, err := selectIn(ctx, db, scanAlbum, albumSelect, entity.Album, "id", ids, inc.Order)
	if err != nil {
		return err
	}
	if err := db.includeForAlbums(ctx, pointers(albums), inc.Include); err != nil {
		return err
	}

	byID := make(map[string]model.Album, len(albums))
	for _, a := range albums {
		byID[a.ID] = a
	}
	for _, s := range songs {
		if a, ok := byID[s.AlbumID]; ok {
			s.Album = &a
		}
	}
	return nil
}

// selectIn loads the rows of kind whose column is one of ids.
func selectIn[T any](ctx context.Context, db *DB, scan func(rowScanner) (T, error), columns string, kind entity.Kind, column string, ids []string, order []entity.Order) ([]T, error) {
	ids = unique(ids)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)%s",
		columns, kind.Table(), column, placeholders(len(ids)), orderBy(order))

	rows, err := selectRows(ctx, db, scan, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: loading %s: %w", kind, err)
	}
	return rows, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
