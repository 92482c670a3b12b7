package sqldb

import (
	"database/sql/driver"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"modernc.org/sqlite"
)

// unicodeLower is a SQLite function folding case with strings.ToLower.
const unicodeLower = "catalog_lower"

func init() {
	err := sqlite.RegisterDeterministicScalarFunction(unicodeLower, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
	if err != nil {
		panic(fmt.Sprintf("sqldb: registering %s: %v", unicodeLower, err))
	}
}

// sqlitePragmas are applied by the driver to every new connection, so they
// hold even after database/sql replaces a broken one.
var sqlitePragmas = []string{"foreign_keys(1)", "journal_mode(WAL)"}

// sqliteDSN appends the connection pragmas to a file path or ":memory:".
func sqliteDSN(dsn string) string {
	q := make(url.Values)
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + q.Encode()
}

// Dialect names a supported SQL backend.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect maps a configuration value to a Dialect.
// "sqlite3" and "postgresql" are accepted as aliases.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return "", fmt.Errorf("sqldb: unsupported database driver %q", s)
	}
}

func (d Dialect) validate() error {
	switch d {
	case SQLite, Postgres:
		return nil
	default:
		return fmt.Errorf("sqldb: unsupported dialect %q", string(d))
	}
}

// driverName is the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// rebind rewrites "?" placeholders to "$1, $2, ..." for Postgres.
// Queries in this package never carry a literal "?" inside quotes.
func (d Dialect) rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// containsInsensitive renders a case-insensitive LIKE on column.
// The bound argument must already be escaped with likePattern.
// SQLite's own LOWER and LIKE fold ASCII only, so both sides go through
// unicodeLower there.
func (d Dialect) containsInsensitive(column string) string {
	if d == Postgres {
		return column + ` ILIKE ? ESCAPE '\'`
	}
	return unicodeLower + `(` + column + `) LIKE ` + unicodeLower + `(?) ESCAPE '\'`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a user-supplied fragment into a "%fragment%" pattern
// whose wildcard characters match literally.
func likePattern(fragment string) string {
	return "%" + likeEscaper.Replace(fragment) + "%"
}

// placeholders returns "?, ?, ?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
