package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spine/api/internal/core/ports"
)

type Handlers struct {
	Auth   *AuthHandler
	User   *UserHandler
	Book   *BookHandler
	List   *ListHandler
	Search *SearchHandler
}

func NewHandler(h Handlers, authService ports.AuthService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Auth.Signup)
		r.Post("/login", h.Auth.Login)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/verify", h.Auth.Verify)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(authService))
			r.Post("/logout", h.Auth.Logout)
			r.Post("/change-password", h.Auth.ChangePassword)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticator(authService))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", h.User.GetMe)
			r.Patch("/", h.User.UpdateMe)
			r.Get("/books", h.Book.Shelf)
			r.Post("/books", h.Book.TrackBook)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", h.Book.ListBooks)
			r.Post("/", h.Book.CreateBook)
			r.Get("/{id}", h.Book.GetBook)
		})

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", h.List.GetMyLists)
			r.Post("/", h.List.CreateList)
			r.Get("/{id}", h.List.GetList)
			r.Post("/{id}/books", h.List.AddBook)
			r.Delete("/{id}/books/{bookId}", h.List.RemoveBook)
		})

		r.Get("/search", h.Search.Search)
	})

	return r
}
