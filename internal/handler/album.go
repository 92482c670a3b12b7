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

// AlbumHandler serves /albums.
type AlbumHandler struct {
	crudHandler[model.Album]
	gate  *service.Gate
	media *media.Store
}

// NewAlbumHandler creates an AlbumHandler.
func NewAlbumHandler(crud *service.CRUD[model.Album], gate *service.Gate, store *media.Store, logger *slog.Logger) *AlbumHandler {
	return &AlbumHandler{
		crudHandler: crudHandler[model.Album]{crud: crud, param: "albumId", logger: logger},
		gate:        gate,
		media:       store,
	}
}

// HandlePatch updates an album the caller owns. The body is JSON, or a
// multipart form whose optional "file" part becomes the album cover.
//
// HTTP: PATCH /albums/{albumId} (auth) → 200, empty body
func (h *AlbumHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumId")
	callerID, _ := auth.UserIDFromContext(r.Context())

	if _, err := h.gate.AuthorizeAlbum(r.Context(), albumID, callerID); err != nil {
		writeError(w, err)
		return
	}

	p, err := readPayload(w, r, h.media.MaxBytes())
	if err != nil {
		writeError(w, err)
		return
	}
	stored, err := storeUpload(h.media, p, callerID, albumID, media.Image)
	if err != nil {
		h.logger.Warn("album upload rejected", slog.String("albumID", albumID), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if err := h.crud.Patch(r.Context(), albumID, p.fields); err != nil {
		discardUpload(h.media, stored, h.logger)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleDelete removes an album and its songs. Only existence is checked.
//
// HTTP: DELETE /albums/{albumId} (auth) → 204
func (h *AlbumHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumId")

	if err := h.gate.RequireAlbum(r.Context(), albumID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.crud.Delete(r.Context(), albumID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// storeUpload saves the payload's file, if any, and points the row's url
// field at it. It returns the stored URL, or "" when there was no file.
func storeUpload(store *media.Store, p *payload, ownerID, albumID string, want media.Category) (string, error) {
	if p.file == nil {
		return "", nil
	}

	f, err := p.file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	url, err := store.Save(ownerID, albumID, want, media.Upload{Filename: p.file.Filename, Body: f})
	if err != nil {
		return "", err
	}
	p.fields["url"] = url
	return url, nil
}

// discardUpload removes a file stored for a patch that then failed, so no
// row-less file stays on disk.
func discardUpload(store *media.Store, url string, logger *slog.Logger) {
	if url == "" {
		return
	}
	if err := store.Remove(url); err != nil {
		logger.Error("removing orphaned upload failed", slog.String("url", url), slog.String("error", err.Error()))
	}
}
