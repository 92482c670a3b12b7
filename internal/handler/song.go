package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/media-catalog/internal/auth"
	"github.com/sakif/media-catalog/internal/media"
	"github.com/sakif/media-catalog/internal/model"
	"github.com/sakif/media-catalog/internal/service"
)

// SongHandler serves /songs.
type SongHandler struct {
	crudHandler[model.Song]
	gate  *service.Gate
	media *media.Store
}

// NewSongHandler creates a SongHandler.
func NewSongHandler(crud *service.CRUD[model.Song], gate *service.Gate, store *media.Store, logger *slog.Logger) *SongHandler {
	return &SongHandler{
		crudHandler: crudHandler[model.Song]{crud: crud, param: "songId", logger: logger},
		gate:        gate,
		media:       store,
	}
}

// HandlePatch updates a song whose album the caller owns. A multipart
// "file" part is stored next to the album's other media.
//
// HTTP: PATCH /songs/{songId} (auth) → 200, empty body
func (h *SongHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	songID := chi.URLParam(r, "songId")
	callerID, _ := auth.UserIDFromContext(r.Context())

	song, err := h.gate.AuthorizeSong(r.Context(), songID, callerID)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := readPayload(w, r, h.media.MaxBytes())
	if err != nil {
		writeError(w, err)
		return
	}
	stored, err := storeUpload(h.media, p, callerID, song.AlbumID, media.Audio)
	if err != nil {
		h.logger.Warn("song upload rejected", slog.String("songID", songID), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if err := h.crud.Patch(r.Context(), songID, p.fields); err != nil {
		discardUpload(h.media, stored, h.logger)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleDelete removes a song. Any authenticated caller may delete any
// existing song; ownership is not checked.
//
// HTTP: DELETE /songs/{songId} (auth) → 204
func (h *SongHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	songID := chi.URLParam(r, "songId")

	if err := h.gate.RequireSong(r.Context(), songID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.crud.Delete(r.Context(), songID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
