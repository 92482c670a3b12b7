package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/model"
	"github.com/sakif/media-catalog/internal/repository"
)

// =========================================================================
// FAKE REPOSITORY
// =========================================================================
//
// fakeRepo is an in-memory repository.Repository[T]. Rows are keyed by id;
// err, when set, is returned by every operation to simulate a database
// failure. Create delegates to createFn because a generic fake cannot build
// a T from loose fields on its own.

type fakeRepo[T repository.Entity] struct {
	rows     map[string]T
	err      error
	createFn func(repository.Fields) (*T, error)

	lastFilter repository.Filter
	updates    map[string]repository.Fields
	deleted    []string
	finds      int
}

func newFakeRepo[T repository.Entity]() *fakeRepo[T] {
	return &fakeRepo[T]{
		rows:    make(map[string]T),
		updates: make(map[string]repository.Fields),
	}
}

func (f *fakeRepo[T]) Create(_ context.Context, fields repository.Fields) (*T, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.createFn(fields)
}

func (f *fakeRepo[T]) List(_ context.Context, filter repository.Filter) ([]T, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	out := make([]T, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return f.Find(ctx, id)
}

func (f *fakeRepo[T]) Find(_ context.Context, id string) (*T, error) {
	f.finds++
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, apperror.NotFound("row", id)
	}
	return &row, nil
}

func (f *fakeRepo[T]) Update(_ context.Context, id string, fields repository.Fields) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[id]; !ok {
		return apperror.NotFound("row", id)
	}
	f.updates[id] = fields
	return nil
}

func (f *fakeRepo[T]) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[id]; !ok {
		return apperror.NotFound("row", id)
	}
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

var (
	_ repository.Repository[model.Album] = (*fakeRepo[model.Album])(nil)
	_ repository.Repository[model.Song]  = (*fakeRepo[model.Song])(nil)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
