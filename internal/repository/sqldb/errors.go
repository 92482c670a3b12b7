package sqldb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/entity"
)

// Postgres SQLSTATE codes for integrity constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type violationKind int

const (
	noViolation violationKind = iota
	uniqueViolation
	foreignKeyViolation
)

// violation is a driver error recognized as a constraint failure.
// detail is the SQLite message ("UNIQUE constraint failed: users.email")
// or the Postgres constraint name ("users_email_key").
type violation struct {
	kind   violationKind
	detail string
}

func classify(err error) violation {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code, msg := sqliteErr.Code(), sqliteErr.Error()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			strings.Contains(msg, "UNIQUE constraint failed"):
			return violation{kind: uniqueViolation, detail: msg}
		case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
			strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return violation{kind: foreignKeyViolation, detail: msg}
		}
		return violation{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return violation{kind: uniqueViolation, detail: pgErr.ConstraintName}
		case pgForeignKeyViolation:
			return violation{kind: foreignKeyViolation, detail: pgErr.ConstraintName}
		}
	}
	return violation{}
}

// mentions reports whether the violation detail names table.column in
// either backend's format.
func (v violation) mentions(table, column string) bool {
	return strings.Contains(v.detail, table+"."+column) ||
		strings.HasPrefix(v.detail, table+"_"+column+"_")
}

// translate maps a write error on kind to an application error.
//
//   - unique violation      → apperror.ErrConflict, Field = payload attribute
//   - foreign key violation → apperror.ErrValidation with the public FK message
//   - anything else         → wrapped, surfaces as an internal error
func translate(kind entity.Kind, op string, err error) error {
	v := classify(err)
	switch v.kind {
	case uniqueViolation:
		for _, c := range kind.Columns() {
			if c.Unique && v.mentions(kind.Table(), c.Name) {
				return apperror.Conflict(c.Field, "Validation error")
			}
		}
		return apperror.Conflict("", "Validation error")

	case foreignKeyViolation:
		// SQLite does not say which key failed; every kind has at most one
		// reference column, so the first matching or first reference wins.
		var ref *entity.Column
		for _, c := range kind.Columns() {
			if c.Type != entity.Reference {
				continue
			}
			if ref == nil || v.mentions(kind.Table(), c.Name) {
				ref = &c
			}
		}
		if ref != nil {
			return apperror.ValidationFailed(ref.Field, kind.ForeignKeyViolation(*ref))
		}
	}
	return fmt.Errorf("sqldb: %s %s: %w", op, kind, err)
}
