package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/model"
)

// UserTable is the user repository. Default reads never select the
// password; the credential lookups below are the only way to get the hash.
type UserTable struct {
	*Table[model.User]
}

// FindCredentials returns the user with id including the password hash.
func (t *UserTable) FindCredentials(ctx context.Context, id string) (*model.User, error) {
	return t.findCredentials(ctx, "id", id)
}

// FindCredentialsByEmail returns the user with email including the
// password hash. Emails match exactly.
func (t *UserTable) FindCredentialsByEmail(ctx context.Context, email string) (*model.User, error) {
	return t.findCredentials(ctx, "email", email)
}

func (t *UserTable) findCredentials(ctx context.Context, column, value string) (*model.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s = ?", userCredentialSelect, column)

	u, err := scanUserCredentials(t.db.queryRow(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", value)
	}
	if err != nil {
		return nil, fmt.Errorf("sqldb: finding user credentials: %w", err)
	}
	return &u, nil
}
