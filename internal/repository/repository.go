// Package repository declares the persistence contracts the service layer
// depends on. The sqldb sub-package implements them on database/sql.
package repository

import (
	"context"

	"github.com/sakif/media-catalog/internal/model"
)

// Entity is the set of row types a Repository can hold.
type Entity interface {
	model.User | model.Album | model.Song
}

// Fields is a partial row keyed by payload attribute name ("name", "UserId").
// Values arrive straight from decoded JSON or form data; the repository
// coerces and validates them against the entity registry. Unknown keys are
// ignored.
type Fields map[string]any

// Filter narrows List results.
type Filter struct {
	Name  string // empty means no name filter
	Exact bool   // exact match instead of case-insensitive substring
	Limit int    // <= 0 means no limit
}

// Repository is the generic row store for one entity kind.
//
// Create and Update return *apperror.AppError values for constraint
// problems: ErrValidation for missing/empty/malformed fields and foreign
// key violations, ErrConflict for unique violations. Find, GetByID, Update
// and Delete return ErrNotFound when no row has the given id.
type Repository[T Entity] interface {
	Create(ctx context.Context, fields Fields) (*T, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	// GetByID loads the row together with the associations of its read shape.
	GetByID(ctx context.Context, id string) (*T, error)
	// Find loads the bare row, without associations.
	Find(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
}

// UserRepository adds the credential lookups that read the password hash.
type UserRepository interface {
	Repository[model.User]
	FindCredentials(ctx context.Context, id string) (*model.User, error)
	FindCredentialsByEmail(ctx context.Context, email string) (*model.User, error)
}
