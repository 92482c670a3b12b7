package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/auth"
	"github.com/sakif/media-catalog/internal/repository"
	"github.com/sakif/media-catalog/internal/repository/sqldb"
)

// Account tests run against a real in-memory SQLite store: unique
// constraints and password hashes are the point of these operations.
func newTestAccounts(t *testing.T) (*Accounts, *sqldb.DB, *auth.TokenService) {
	t.Helper()

	db, err := sqldb.New(":memory:")
	if err != nil {
		t.Fatalf("sqldb.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	logger := discardLogger()
	gate := NewGate(db.Albums(), db.Songs(), logger)
	accounts := NewAccounts(db.Users(), gate, auth.NewPasswordServiceForTest(bcrypt.MinCost), tokens, logger)
	return accounts, db, tokens
}

func signupAlice(t *testing.T, a *Accounts) string {
	t.Helper()
	u, err := a.Signup(context.Background(), SignupInput{
		Name: "alice", Email: "alice@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	return u.ID
}

// =========================================================================
// SIGNUP
// =========================================================================

func TestSignup(t *testing.T) {
	a, db, _ := newTestAccounts(t)

	id := signupAlice(t, a)

	stored, err := db.Users().FindCredentials(context.Background(), id)
	if err != nil {
		t.Fatalf("FindCredentials() error = %v", err)
	}
	if stored.Password == "password123" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
}

func TestSignup_InputChecks(t *testing.T) {
	a, _, _ := newTestAccounts(t)

	tests := []struct {
		name string
		in   SignupInput
		want string
	}{
		{"missing everything", SignupInput{}, "Name must have a value"},
		{"missing email", SignupInput{Name: "bob", Password: "password123"}, "Email must have a value"},
		{"bad email", SignupInput{Name: "bob", Email: "bob-at-example", Password: "password123"}, "Email must be valid"},
		{"short password", SignupInput{Name: "bob", Email: "bob@example.com", Password: "short"}, "Password must be atleast 8 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Signup(context.Background(), tt.in)
			assertAppError(t, err, apperror.ErrValidation, tt.want)
		})
	}
}

func TestSignup_Conflicts(t *testing.T) {
	a, _, _ := newTestAccounts(t)
	signupAlice(t, a)

	_, err := a.Signup(context.Background(), SignupInput{
		Name: "alice", Email: "other@example.com", Password: "password123",
	})
	assertAppError(t, err, apperror.ErrConflict, "Username already taken")

	_, err = a.Signup(context.Background(), SignupInput{
		Name: "alice2", Email: "alice@example.com", Password: "password123",
	})
	assertAppError(t, err, apperror.ErrConflict, "Authentication failed")
}

// =========================================================================
// LOGIN
// =========================================================================

func TestLogin(t *testing.T) {
	a, _, tokens := newTestAccounts(t)
	id := signupAlice(t, a)

	res, err := a.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.User.ID != id || res.User.Password != "" {
		t.Errorf("Login() user = %+v", res.User)
	}

	subject, err := tokens.Validate(res.Token)
	if err != nil || subject != id {
		t.Errorf("token subject = %q (err %v), want %q", subject, err, id)
	}
}

func TestLogin_Failures(t *testing.T) {
	a, _, _ := newTestAccounts(t)
	signupAlice(t, a)

	_, err := a.Login(context.Background(), "alice@example.com", "wrong-password")
	assertAppError(t, err, apperror.ErrUnauthorized, "Authentication failed")

	_, err = a.Login(context.Background(), "nobody@example.com", "password123")
	assertAppError(t, err, apperror.ErrUnauthorized, "Authentication failed")
}

// =========================================================================
// PATCH
// =========================================================================

func TestPatch_Self(t *testing.T) {
	a, db, _ := newTestAccounts(t)
	id := signupAlice(t, a)

	err := a.Patch(context.Background(), id, id, repository.Fields{"name": "newName", "password": "new-password"})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}

	stored, _ := db.Users().FindCredentials(context.Background(), id)
	if stored.Name != "newName" || stored.Email != "alice@example.com" {
		t.Errorf("stored user = %+v", stored)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new-password")) != nil {
		t.Error("new password was not stored hashed")
	}
}

func TestPatch_Rejections(t *testing.T) {
	a, _, _ := newTestAccounts(t)
	id := signupAlice(t, a)
	ctx := context.Background()

	assertAppError(t, a.Patch(ctx, "someone-else", id, repository.Fields{"name": "x"}),
		apperror.ErrUnauthorized, "Invalid Credentials")

	assertAppError(t, a.Patch(ctx, id, id, repository.Fields{"password": "short"}),
		apperror.ErrValidation, "Password must be atleast 8 characters long")

	assertAppError(t, a.Patch(ctx, "ghost", "ghost", repository.Fields{"name": "x"}),
		apperror.ErrNotFound, "The user could not be found.")
}

// =========================================================================
// DELETE
// =========================================================================

func TestDelete(t *testing.T) {
	a, db, _ := newTestAccounts(t)
	id := signupAlice(t, a)
	ctx := context.Background()

	assertAppError(t, a.Delete(ctx, "someone-else", id, "password123"),
		apperror.ErrUnauthorized, "Invalid Credentials")
	assertAppError(t, a.Delete(ctx, id, id, "wrongPassword"),
		apperror.ErrUnauthorized, "Invalid Credentials")
	assertAppError(t, a.Delete(ctx, "ghost", "ghost", "fakePassword"),
		apperror.ErrNotFound, "The User could not be found.")

	if err := a.Delete(ctx, id, id, "password123"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Users().Find(ctx, id); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("user still present after Delete(): %v", err)
	}
}
