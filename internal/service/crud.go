// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → enforces rules, shapes outcomes
//	Repository (Data layer)  → reads/writes the database
//
// Handlers never see SQL and services never see *http.Request. Services
// return *apperror.AppError values whose category the handler maps to a
// status code and whose message goes to the client verbatim.
//
// WHAT LIVES HERE:
//   - CRUD[T]   the generic create/read/update/delete helper, one instance
//     per entity kind (crud.go)
//   - Gate      existence and ownership checks that run before album/song
//     mutations (gate.go)
//   - Accounts  signup, login, self-only user update and delete (accounts.go)
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/entity"
	"github.com/sakif/media-catalog/internal/repository"
)

// ListQuery carries the raw query-string parameters of a list request.
// Parsing happens here so every caller gets the same leniency.
type ListQuery struct {
	Name  string // ?name=
	Exact string // ?exact=true → exact name match
	Limit string // ?limit=N; non-numeric or non-positive values are ignored
}

// Filter converts the raw parameters to a repository filter.
func (q ListQuery) Filter() repository.Filter {
	f := repository.Filter{Name: q.Name}
	if exact, err := strconv.ParseBool(q.Exact); err == nil {
		f.Exact = exact
	}
	if limit, err := strconv.Atoi(q.Limit); err == nil && limit > 0 {
		f.Limit = limit
	}
	return f
}

// CRUD is the generic helper behind every entity endpoint.
//
// OUTCOMES:
//
//	Create   → row                | 500 "Error: <persistence message>"
//	ReadAll  → rows (maybe empty) | 500
//	ReadByID → row                | 404 "The <kind> could not be found."
//	Patch    → nil                | 404 as above | 500 "Error: ..."
//	Delete   → nil                | 404 as above | 500 "Error: ..."
//
// Every failure other than "no such row" is reported as an internal error
// carrying the persistence message, including validation failures. Clients
// have always seen constraint problems as 500 "Error: ..." responses.
type CRUD[T repository.Entity] struct {
	kind   entity.Kind
	repo   repository.Repository[T]
	logger *slog.Logger
}

// NewCRUD creates the helper for kind backed by repo.
func NewCRUD[T repository.Entity](kind entity.Kind, repo repository.Repository[T], logger *slog.Logger) *CRUD[T] {
	return &CRUD[T]{kind: kind, repo: repo, logger: logger}
}

// Kind reports the entity kind the helper serves.
func (c *CRUD[T]) Kind() entity.Kind {
	return c.kind
}

func (c *CRUD[T]) Create(ctx context.Context, fields repository.Fields) (*T, error) {
	row, err := c.repo.Create(ctx, fields)
	if err != nil {
		return nil, c.failure("create", err)
	}
	return row, nil
}

func (c *CRUD[T]) ReadAll(ctx context.Context, q ListQuery) ([]T, error) {
	rows, err := c.repo.List(ctx, q.Filter())
	if err != nil {
		return nil, c.failure("list", err)
	}
	return rows, nil
}

func (c *CRUD[T]) ReadByID(ctx context.Context, id string) (*T, error) {
	row, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, c.failure("read", err)
	}
	return row, nil
}

// Patch applies fields to the row. An empty fields map still refreshes the
// row's update time and succeeds when the row exists.
func (c *CRUD[T]) Patch(ctx context.Context, id string, fields repository.Fields) error {
	if err := c.repo.Update(ctx, id, fields); err != nil {
		return c.failure("patch", err)
	}
	return nil
}

func (c *CRUD[T]) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return c.failure("delete", err)
	}
	return nil
}

// failure turns a repository error into the client-facing error.
func (c *CRUD[T]) failure(op string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.New(apperror.ErrNotFound, "The %s could not be found.", c.kind)
	}

	c.logger.Error("persistence operation failed",
		slog.String("kind", c.kind.String()),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return persistenceError(err)
}

// persistenceError renders err as 500 "Error: <message>", or
// "Unexpected error" when the error carries no message.
func persistenceError(err error) error {
	if msg := apperror.Message(err); msg != "" {
		return apperror.Internal("Error: " + msg)
	}
	return apperror.Internal("Unexpected error")
}
