package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/model"
	"github.com/sakif/media-catalog/internal/repository"
)

// Client-facing messages of the gate. The album and song not-found texts
// have no trailing period, unlike the CRUD helper's.
const (
	msgAlbumNotFound      = "The album could not be found"
	msgSongNotFound       = "The song could not be found"
	msgInvalidCredentials = "Invalid Credentials"
)

// Gate runs the existence and ownership checks in front of album and song
// mutations.
//
// OWNERSHIP:
//
//	album → album.UserId
//	song  → the UserId of the song's album
//
// Patches require the caller to own the row. Deletes only require the row
// to exist; any authenticated caller may delete any album or song.
//
// The checks and the mutation that follows are separate statements with no
// transaction around them; a row removed in between makes the mutation
// report 404 instead.
type Gate struct {
	albums repository.Repository[model.Album]
	songs  repository.Repository[model.Song]
	logger *slog.Logger
}

// NewGate creates a Gate over the album and song repositories.
func NewGate(albums repository.Repository[model.Album], songs repository.Repository[model.Song], logger *slog.Logger) *Gate {
	return &Gate{albums: albums, songs: songs, logger: logger}
}

// AuthorizeAlbum returns the album when callerID owns it.
func (g *Gate) AuthorizeAlbum(ctx context.Context, albumID, callerID string) (*model.Album, error) {
	album, err := g.findAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album.UserID != callerID {
		g.logger.Warn("album ownership check failed",
			slog.String("albumID", albumID),
			slog.String("callerID", callerID),
		)
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}
	return album, nil
}

// RequireAlbum checks that the album exists.
func (g *Gate) RequireAlbum(ctx context.Context, albumID string) error {
	_, err := g.findAlbum(ctx, albumID)
	return err
}

// AuthorizeSong returns the song when callerID owns its album.
func (g *Gate) AuthorizeSong(ctx context.Context, songID, callerID string) (*model.Song, error) {
	song, err := g.findSong(ctx, songID)
	if err != nil {
		return nil, err
	}

	album, err := g.findAlbum(ctx, song.AlbumID)
	if err != nil {
		return nil, err
	}
	if album.UserID != callerID {
		g.logger.Warn("song ownership check failed",
			slog.String("songID", songID),
			slog.String("albumID", album.ID),
			slog.String("callerID", callerID),
		)
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}
	return song, nil
}

// RequireSong checks that the song exists. Ownership is not checked.
func (g *Gate) RequireSong(ctx context.Context, songID string) error {
	_, err := g.findSong(ctx, songID)
	return err
}

// AuthorizeSelf allows users to act only on their own account.
func (g *Gate) AuthorizeSelf(targetID, callerID string) error {
	if targetID != callerID {
		return apperror.Unauthorized(msgInvalidCredentials)
	}
	return nil
}

func (g *Gate) findAlbum(ctx context.Context, id string) (*model.Album, error) {
	album, err := g.albums.Find(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.New(apperror.ErrNotFound, msgAlbumNotFound)
	}
	if err != nil {
		g.logger.Error("loading album failed", slog.String("albumID", id), slog.String("error", err.Error()))
		return nil, persistenceError(err)
	}
	return album, nil
}

func (g *Gate) findSong(ctx context.Context, id string) (*model.Song, error) {
	song, err := g.songs.Find(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.New(apperror.ErrNotFound, msgSongNotFound)
	}
	if err != nil {
		g.logger.Error("loading song failed", slog.String("songID", id), slog.String("error", err.Error()))
		return nil, persistenceError(err)
	}
	return song, nil
}
