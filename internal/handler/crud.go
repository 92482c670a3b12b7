package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/media-catalog/internal/repository"
	"github.com/sakif/media-catalog/internal/service"
)

// crudHandler serves the unguarded operations shared by every entity:
// create, list and read by id. Entity handlers embed it and add their own
// guarded patch and delete.
type crudHandler[T repository.Entity] struct {
	crud   *service.CRUD[T]
	param  string // chi URL parameter holding the row id
	logger *slog.Logger
}

// HandleCreate inserts the JSON body as a new row.
//
// HTTP: POST /albums, POST /songs → 200 with the stored row
func (h *crudHandler[T]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	row, err := h.crud.Create(r.Context(), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// HandleList returns rows filtered by ?name=, ?exact= and ?limit=.
//
// HTTP: GET /albums, GET /songs, GET /users → 200 with an array
func (h *crudHandler[T]) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rows, err := h.crud.ReadAll(r.Context(), service.ListQuery{
		Name:  q.Get("name"),
		Exact: q.Get("exact"),
		Limit: q.Get("limit"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGet returns one row with its associations.
//
// HTTP: GET /albums/{albumId}, GET /songs/{songId}, GET /users/{userId}
func (h *crudHandler[T]) HandleGet(w http.ResponseWriter, r *http.Request) {
	row, err := h.crud.ReadByID(r.Context(), chi.URLParam(r, h.param))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}
