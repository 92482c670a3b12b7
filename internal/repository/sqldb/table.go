package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/entity"
	"github.com/sakif/media-catalog/internal/repository"
)

// includeFunc eager-loads the given associations onto rows in place.
type includeFunc[T repository.Entity] func(ctx context.Context, rows []*T, includes []entity.Include) error

// Table is the generic repository for one entity kind.
type Table[T repository.Entity] struct {
	db      *DB
	kind    entity.Kind
	columns string
	scan    func(rowScanner) (T, error)
	include includeFunc[T]
}

func newTable[T repository.Entity](db *DB, kind entity.Kind, columns string, scan func(rowScanner) (T, error), include includeFunc[T]) *Table[T] {
	return &Table[T]{db: db, kind: kind, columns: columns, scan: scan, include: include}
}

// Kind reports the entity kind stored in the table.
func (t *Table[T]) Kind() entity.Kind {
	return t.kind
}

// Create validates fields, inserts a new row with a fresh id and
// timestamps, and returns the stored row without associations.
func (t *Table[T]) Create(ctx context.Context, fields repository.Fields) (*T, error) {
	assigns, err := prepare(t.kind, fields, true)
	if err != nil {
		return nil, err
	}

	id := xid.New().String()
	now := time.Now().UTC()

	cols := make([]string, 0, len(assigns)+3)
	args := make([]any, 0, len(assigns)+3)
	cols = append(cols, "id")
	args = append(args, id)
	for _, a := range assigns {
		cols = append(cols, a.column.Name)
		args = append(args, a.value)
	}
	cols = append(cols, "created_at", "updated_at")
	args = append(args, now, now)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.kind.Table(), strings.Join(cols, ", "), placeholders(len(cols)))

	if _, err := t.db.exec(ctx, query, args...); err != nil {
		return nil, translate(t.kind, "creating", err)
	}

	return t.Find(ctx, id)
}

// List returns rows ordered by the kind's shape, with associations loaded.
//
// QUERY BUILDING:
//
//	name filter, exact   → WHERE name = ?
//	name filter, partial → WHERE LOWER(name) LIKE LOWER(?)   (ILIKE on Postgres)
//	limit > 0            → LIMIT ?
func (t *Table[T]) List(ctx context.Context, filter repository.Filter) ([]T, error) {
	shape := t.kind.Shape()

	var (
		b    strings.Builder
		args []any
	)
	fmt.Fprintf(&b, "SELECT %s FROM %s", t.columns, t.kind.Table())

	if filter.Name != "" {
		if filter.Exact {
			b.WriteString(" WHERE name = ?")
			args = append(args, filter.Name)
		} else {
			b.WriteString(" WHERE " + t.db.dialect.containsInsensitive("name"))
			args = append(args, likePattern(filter.Name))
		}
	}
	b.WriteString(orderBy(shape.Order))
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := selectRows(ctx, t.db, t.scan, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing %s: %w", t.kind, err)
	}
	if rows == nil {
		rows = []T{}
	}

	if err := t.include(ctx, pointers(rows), shape.Include); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns the row with the associations of the kind's shape.
func (t *Table[T]) GetByID(ctx context.Context, id string) (*T, error) {
	row, err := t.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.include(ctx, []*T{row}, t.kind.Shape().Include); err != nil {
		return nil, err
	}
	return row, nil
}

// Find returns the bare row.
func (t *Table[T]) Find(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", t.columns, t.kind.Table())

	row, err := t.scan(t.db.queryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound(t.kind.String(), id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqldb: finding %s: %w", t.kind, err)
	}
	return &row, nil
}

// Update writes the supplied fields and always refreshes updated_at, so an
// empty update on an existing row still succeeds.
func (t *Table[T]) Update(ctx context.Context, id string, fields repository.Fields) error {
	assigns, err := prepare(t.kind, fields, false)
	if err != nil {
		return err
	}

	sets := make([]string, 0, len(assigns)+1)
	args := make([]any, 0, len(assigns)+2)
	for _, a := range assigns {
		sets = append(sets, a.column.Name+" = ?")
		args = append(args, a.value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.kind.Table(), strings.Join(sets, ", "))

	result, err := t.db.exec(ctx, query, args...)
	if err != nil {
		return translate(t.kind, "updating", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqldb: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(t.kind.String(), id)
	}
	return nil
}

// Delete removes the row; child rows go with it.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.kind.Table())

	result, err := t.db.exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("sqldb: deleting %s: %w", t.kind, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqldb: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(t.kind.String(), id)
	}
	return nil
}

func orderBy(orders []entity.Order) string {
	if len(orders) == 0 {
		return ""
	}
	terms := make([]string, len(orders))
	for i, o := range orders {
		terms[i] = o.SQL()
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
