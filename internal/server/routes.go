package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/media-catalog/internal/auth"
	"github.com/sakif/media-catalog/internal/entity"
	"github.com/sakif/media-catalog/internal/handler"
	"github.com/sakif/media-catalog/internal/media"
	"github.com/sakif/media-catalog/internal/middleware"
	"github.com/sakif/media-catalog/internal/model"
	"github.com/sakif/media-catalog/internal/repository/sqldb"
	"github.com/sakif/media-catalog/internal/service"
)

// Dependencies are the long-lived collaborators the router needs.
type Dependencies struct {
	DB           *sqldb.DB
	Media        *media.Store
	Tokens       *auth.TokenService
	Passwords    *auth.PasswordService
	CORSOrigins  []string
	CookieSecure bool
	Logger       *slog.Logger
}

// NewRouter builds the full route tree.
//
// ROUTES:
//
//	GET    /health
//	GET    /media/*                      uploaded covers and audio
//
//	POST   /users/signup
//	POST   /users/login                  sets the token cookie
//	POST   /users/logout
//	GET    /users
//	GET    /users/{userId}
//	PATCH  /users/{userId}               auth, self only
//	DELETE /users/{userId}/{password}    auth, self only
//
//	POST   /albums                       auth
//	GET    /albums
//	GET    /albums/{albumId}
//	PATCH  /albums/{albumId}             auth, owner only, JSON or multipart
//	DELETE /albums/{albumId}             auth
//
//	(songs mirror albums; ownership goes through the parent album)
//
// MIDDLEWARE ORDER:
// RequestID first so the logger can print it, Recoverer inside Logger so a
// panic is logged as the 500 it becomes, CORS before routing so preflight
// requests never reach a handler.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	db := deps.DB
	gate := service.NewGate(db.Albums(), db.Songs(), deps.Logger)
	accounts := service.NewAccounts(db.Users(), gate, deps.Passwords, deps.Tokens, deps.Logger)

	users := handler.NewUserHandler(accounts, handler.CookieOptions{
		Secure: deps.CookieSecure,
		MaxAge: deps.Tokens.TTL(),
	}, deps.Logger)
	albums := handler.NewAlbumHandler(
		service.NewCRUD[model.Album](entity.Album, db.Albums(), deps.Logger),
		gate, deps.Media, deps.Logger,
	)
	songs := handler.NewSongHandler(
		service.NewCRUD[model.Song](entity.Song, db.Songs(), deps.Logger),
		gate, deps.Media, deps.Logger,
	)

	requireAuth := auth.RequireAuth(deps.Tokens)

	r.Get("/health", handler.HandleHealth)
	r.Handle("/media/*", http.StripPrefix("/media", deps.Media.Handler()))

	r.Route("/users", func(r chi.Router) {
		r.Post("/signup", users.HandleSignup)
		r.Post("/login", users.HandleLogin)
		r.Post("/logout", users.HandleLogout)
		r.Get("/", users.HandleList)
		r.Get("/{userId}", users.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Patch("/{userId}", users.HandlePatch)
			r.Delete("/{userId}/{password}", users.HandleDelete)
		})
	})

	r.Route("/albums", func(r chi.Router) {
		r.Get("/", albums.HandleList)
		r.Get("/{albumId}", albums.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", albums.HandleCreate)
			r.Patch("/{albumId}", albums.HandlePatch)
			r.Delete("/{albumId}", albums.HandleDelete)
		})
	})

	r.Route("/songs", func(r chi.Router) {
		r.Get("/", songs.HandleList)
		r.Get("/{songId}", songs.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", songs.HandleCreate)
			r.Patch("/{songId}", songs.HandlePatch)
			r.Delete("/{songId}", songs.HandleDelete)
		})
	})

	return r
}
