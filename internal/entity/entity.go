// Package entity is the registry of persistent entity kinds.
//
// CLOSED SET OF KINDS:
// The catalog has exactly three entity types. Instead of looking models up by
// a string name at runtime, each one is a value of the Kind enum, and every
// per-kind property (table name, columns, read-query shape) is a method with
// an exhaustive switch. Adding a kind means adding a constant and a case to
// each switch; forgetting one is caught by the registry tests.
//
// The registry is pure data. It knows nothing about SQL drivers or HTTP; the
// repository and service layers read it to decide what to insert, validate
// and eager-load.
package entity

// Kind identifies one of the persistent entity types.
type Kind int

const (
	User Kind = iota + 1
	Album
	Song
)

// Kinds lists every registered kind.
var Kinds = []Kind{User, Album, Song}

// String returns the lowercase logical name used in client messages,
// e.g. "The album could not be found.".
func (k Kind) String() string {
	switch k {
	case User:
		return "user"
	case Album:
		return "album"
	case Song:
		return "song"
	default:
		return "unknown"
	}
}

// Model returns the capitalized model name ("Album").
func (k Kind) Model() string {
	switch k {
	case User:
		return "User"
	case Album:
		return "Album"
	case Song:
		return "Song"
	default:
		return ""
	}
}

// Table returns the SQL table backing the kind.
func (k Kind) Table() string {
	switch k {
	case User:
		return "users"
	case Album:
		return "albums"
	case Song:
		return "songs"
	default:
		return ""
	}
}

// Columns returns the writable columns of the kind in insert order.
// id, created_at and updated_at are managed by the repository and are not listed.
func (k Kind) Columns() []Column {
	switch k {
	case User:
		return userColumns
	case Album:
		return albumColumns
	case Song:
		return songColumns
	default:
		return nil
	}
}

// Column looks up a writable column by its payload field name.
func (k Kind) Column(field string) (Column, bool) {
	for _, c := range k.Columns() {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// ForeignKeyViolation renders the message reported when c references a row
// that does not exist. The wording is part of the public API.
func (k Kind) ForeignKeyViolation(c Column) string {
	table := k.Model() + "s"
	return `insert or update on table "` + table + `" violates foreign key constraint "` +
		table + `_` + c.Field + `_fkey"`
}
