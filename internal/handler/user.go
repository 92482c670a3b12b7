package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/auth"
	"github.com/sakif/media-catalog/internal/model"
	"github.com/sakif/media-catalog/internal/service"
)

// CookieOptions controls the access-token cookie.
type CookieOptions struct {
	Secure bool          // send only over HTTPS
	MaxAge time.Duration // usually the token TTL
}

// UserHandler serves /users: account lifecycle plus the generic reads.
type UserHandler struct {
	crudHandler[model.User]
	accounts *service.Accounts
	cookie   CookieOptions
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(accounts *service.Accounts, cookie CookieOptions, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		crudHandler: crudHandler[model.User]{crud: accounts.CRUD(), param: "userId", logger: logger},
		accounts:    accounts,
		cookie:      cookie,
	}
}

// HandleSignup registers a user.
//
// HTTP: POST /users/signup {"name","email","password"} → 201 user (no password)
func (h *UserHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.Signup(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and sets the access-token cookie.
//
// COOKIE ATTRIBUTES:
//   - HttpOnly: page scripts cannot read the token
//   - SameSite=Lax: not sent on cross-site POSTs
//   - Secure: only over HTTPS, when configured
//
// HTTP: POST /users/login {"email","password"} → 201 user, Set-Cookie: token=...
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, res.User)
}

// HandleLogout expires the access-token cookie. Tokens are stateless, so
// a copied token stays valid until it expires.
//
// HTTP: POST /users/logout → 204
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandlePatch updates the caller's own account.
//
// HTTP: PATCH /users/{userId} (auth) → 200, empty body
func (h *UserHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.accounts.Patch(r.Context(), chi.URLParam(r, "userId"), callerID, fields); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleDelete removes the caller's own account after a password check.
// The password segment may be percent-encoded, so "/" and "@" survive.
//
// HTTP: DELETE /users/{userId}/{password} (auth) → 204
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	password, err := pathParam(r, "password")
	if err != nil {
		writeError(w, apperror.Unauthorized("Invalid Credentials"))
		return
	}

	err = h.accounts.Delete(r.Context(), chi.URLParam(r, "userId"), callerID, password)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
