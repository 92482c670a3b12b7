package sqldb

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/repository"
)

// POSTGRES WITHOUT A SERVER:
// go-sqlmock stands in for the pgx driver so the Postgres dialect (numbered
// placeholders, ILIKE, SQLSTATE translation) is exercised without a running
// database.
func newMockPostgres(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		conn.Close()
	})
	return newDB(conn, Postgres), mock
}

func TestPostgres_ListUsesILIKE(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, url, user_id, created_at, updated_at FROM albums WHERE name ILIKE $1 ESCAPE '\' ORDER BY created_at DESC, id DESC LIMIT $2`,
	)).
		WithArgs(`%50\%%`, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "user_id", "created_at", "updated_at"}))

	albums, err := db.Albums().List(context.Background(), repository.Filter{Name: "50%", Limit: 5})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(albums) != 0 {
		t.Errorf("List() returned %d albums, want 0", len(albums))
	}
}

func TestPostgres_GetByIDLoadsAssociations(t *testing.T) {
	db, mock := newMockPostgres(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, position, url, album_id, created_at, updated_at FROM songs WHERE id = $1`,
	)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "position", "url", "album_id", "created_at", "updated_at"}).
			AddRow("s1", "Intro", 1, nil, "a1", now, now))

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, url, user_id, created_at, updated_at FROM albums WHERE id IN ($1)`,
	)).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "user_id", "created_at", "updated_at"}).
			AddRow("a1", "Debut", "http://cdn/cover.png", "u1", now, now))

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, email, created_at, updated_at FROM users WHERE id IN ($1)`,
	)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "created_at", "updated_at"}).
			AddRow("u1", "alice", "alice@example.com", now, now))

	song, err := db.Songs().GetByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if song.Album == nil || song.Album.URL == nil || *song.Album.URL != "http://cdn/cover.png" {
		t.Fatalf("Album = %+v, want the loaded album", song.Album)
	}
	if song.Album.User == nil || song.Album.User.Name != "alice" {
		t.Errorf("Album.User = %+v, want alice", song.Album.User)
	}
	if song.URL != nil {
		t.Errorf("URL = %q, want nil", *song.URL)
	}
}

func TestPostgres_ForeignKeyViolation(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO albums (id, name, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	)).
		WithArgs(sqlmock.AnyArg(), "Orphan", "missing-user", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "albums_user_id_fkey"})

	_, err := db.Albums().Create(context.Background(), repository.Fields{"name": "Orphan", "UserId": "missing-user"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}

	want := `insert or update on table "Albums" violates foreign key constraint "Albums_UserId_fkey"`
	if got := apperror.Message(err); got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestPostgres_UniqueViolation(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs("taken@example.com", sqlmock.AnyArg(), "u1").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := db.Users().Update(context.Background(), "u1", repository.Fields{"email": "taken@example.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Update() error = %v, want ErrConflict", err)
	}

	var ae *apperror.AppError
	if errors.As(err, &ae) && ae.Field != "email" {
		t.Errorf("Field = %q, want %q", ae.Field, "email")
	}
}

func TestPostgres_OtherErrorsAreWrapped(t *testing.T) {
	db, mock := newMockPostgres(t)
	connErr := errors.New("connection reset by peer")

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM songs WHERE id = $1`)).
		WithArgs("s1").
		WillReturnError(connErr)

	err := db.Songs().Delete(context.Background(), "s1")
	if !errors.Is(err, connErr) {
		t.Errorf("Delete() error = %v, want it to wrap %v", err, connErr)
	}
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		t.Errorf("Delete() returned AppError %v, want a plain wrapped error", ae)
	}
}
