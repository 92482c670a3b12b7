package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/auth"
	"github.com/sakif/media-catalog/internal/entity"
	"github.com/sakif/media-catalog/internal/model"
	"github.com/sakif/media-catalog/internal/repository"
)

const (
	msgAuthFailed      = "Authentication failed"
	msgNameTaken       = "Username already taken"
	msgUserNotFound    = "The User could not be found."
	msgPasswordTooWeak = "Password must be atleast 8 characters long"

	MinPasswordLength = 8
)

// SignupInput is the body of POST /users/signup.
//
// Checks run in field order and the first failure is reported, so a body
// missing both name and email reports the name.
type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,max=72"`
}

// signupMessages maps "<Field>.<tag>" to the client-facing message.
var signupMessages = map[string]string{
	"Name.required":  "Name must have a value",
	"Email.required": "Email must have a value",
	"Email.email":    "Email must be valid",
	"Password.min":   msgPasswordTooWeak,
	"Password.max":   "Password must be at most 72 bytes long",
}

// AuthResult is what a successful login hands to the handler: the user for
// the body and the token for the cookie.
type AuthResult struct {
	User  *model.User
	Token string
}

// Accounts implements the user-facing account operations. Reads and plain
// field updates go through the generic CRUD helper; Accounts adds hashing,
// credential checks and the self-only rule.
type Accounts struct {
	users     repository.UserRepository
	crud      *CRUD[model.User]
	gate      *Gate
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewAccounts wires the account service.
func NewAccounts(
	users repository.UserRepository,
	gate *Gate,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *Accounts {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})

	return &Accounts{
		users:     users,
		crud:      NewCRUD[model.User](entity.User, users, logger),
		gate:      gate,
		passwords: passwords,
		tokens:    tokens,
		validate:  validate,
		logger:    logger,
	}
}

// CRUD exposes the user helper for the list and read endpoints.
func (a *Accounts) CRUD() *CRUD[model.User] {
	return a.crud
}

// Signup validates the input, stores the user with a hashed password and
// returns the stored user without the hash.
//
//	400 first failing input check
//	409 "Username already taken"   name in use
//	409 "Authentication failed"    email in use
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := a.validateSignup(in); err != nil {
		return nil, err
	}

	hash, err := a.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", signupMessages["Password.max"])
	}

	user, err := a.users.Create(ctx, repository.Fields{
		"name":     in.Name,
		"email":    in.Email,
		"password": hash,
	})
	if err != nil {
		return nil, a.signupFailure(err)
	}

	a.logger.Info("user signed up", slog.String("userID", user.ID), slog.String("name", user.Name))
	return user, nil
}

func (a *Accounts) validateSignup(in SignupInput) error {
	err := a.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	first := verrs[0]
	msg, ok := signupMessages[first.StructField()+"."+first.Tag()]
	if !ok {
		msg = first.Error()
	}
	return apperror.ValidationFailed(first.Field(), msg)
}

func (a *Accounts) signupFailure(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrConflict) && appErr.Field == "name":
			return apperror.Conflict("name", msgNameTaken)
		case errors.Is(err, apperror.ErrConflict):
			return apperror.Conflict(appErr.Field, msgAuthFailed)
		case errors.Is(err, apperror.ErrValidation):
			return appErr
		}
	}

	a.logger.Error("signup failed", slog.String("error", err.Error()))
	return persistenceError(err)
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords fail identically with 401 "Authentication failed".
func (a *Accounts) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := a.users.FindCredentialsByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		a.passwords.VerifyDummy(password)
		return nil, apperror.Unauthorized(msgAuthFailed)
	}
	if err != nil {
		a.logger.Error("login lookup failed", slog.String("error", err.Error()))
		return nil, persistenceError(err)
	}

	if err := a.passwords.Verify(user.Password, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			a.logger.Error("stored password hash unusable", slog.String("userID", user.ID), slog.String("error", err.Error()))
		}
		return nil, apperror.Unauthorized(msgAuthFailed)
	}

	token, err := a.tokens.Generate(user.ID)
	if err != nil {
		return nil, persistenceError(err)
	}

	user.Password = ""
	a.logger.Info("user logged in", slog.String("userID", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Patch updates the caller's own account. A supplied password must be at
// least MinPasswordLength characters and is stored hashed.
func (a *Accounts) Patch(ctx context.Context, targetID, callerID string, fields repository.Fields) error {
	if err := a.gate.AuthorizeSelf(targetID, callerID); err != nil {
		return err
	}

	if raw, ok := fields["password"]; ok && raw != nil {
		plain, isString := raw.(string)
		if !isString || len(plain) < MinPasswordLength {
			return apperror.ValidationFailed("password", msgPasswordTooWeak)
		}
		hash, err := a.passwords.Hash(plain)
		if err != nil {
			return apperror.ValidationFailed("password", signupMessages["Password.max"])
		}

		patched := make(repository.Fields, len(fields))
		for k, v := range fields {
			patched[k] = v
		}
		patched["password"] = hash
		fields = patched
	}

	return a.crud.Patch(ctx, targetID, fields)
}

// Delete removes the caller's own account after re-checking the password.
//
//	401 "Invalid Credentials"            not the caller's account, wrong password
//	404 "The User could not be found."   no such user
func (a *Accounts) Delete(ctx context.Context, targetID, callerID, password string) error {
	if err := a.gate.AuthorizeSelf(targetID, callerID); err != nil {
		return err
	}

	user, err := a.users.FindCredentials(ctx, targetID)
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.New(apperror.ErrNotFound, msgUserNotFound)
	}
	if err != nil {
		a.logger.Error("loading user failed", slog.String("userID", targetID), slog.String("error", err.Error()))
		return persistenceError(err)
	}

	if err := a.passwords.Verify(user.Password, password); err != nil {
		return apperror.Unauthorized(msgInvalidCredentials)
	}

	if err := a.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.New(apperror.ErrNotFound, msgUserNotFound)
		}
		return persistenceError(err)
	}

	a.logger.Info("user deleted", slog.String("userID", targetID))
	return nil
}
