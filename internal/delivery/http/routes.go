package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/postly/backend/internal/metrics"
	"github.com/postly/backend/internal/middleware"
)

func NewRouter(handler *Handler, authMiddleware *middleware.AuthMiddleware, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method("GET", "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public
			r.Post("/register", handler.Register)
			r.Post("/login", handler.Login)
			r.Post("/token/refresh", handler.RefreshToken)

			// Bearer access token required
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/logout", handler.Logout)
				r.Get("/profile", handler.GetProfile)
				r.Patch("/profile/update", handler.UpdateProfile)
				r.Put("/profile/update", handler.UpdateProfile)
				r.Post("/change-password", handler.ChangePassword)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			// Read is open to everyone
			r.Get("/", handler.ListPosts)
			r.Get("/published", handler.ListPublishedPosts)
			r.Get("/{id}", handler.GetPost)

			// Mutations require an authenticated subject; ownership is
			// enforced by the usecase before anything changes.
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/my_posts", handler.ListMyPosts)
				r.Post("/", handler.CreatePost)
				r.Put("/{id}", handler.UpdatePost)
				r.Patch("/{id}", handler.UpdatePost)
				r.Delete("/{id}", handler.DeletePost)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handler.ListProducts)
			r.Get("/{id}", handler.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/", handler.CreateProduct)
				r.Put("/{id}", handler.UpdateProduct)
				r.Patch("/{id}", handler.UpdateProduct)
				r.Delete("/{id}", handler.DeleteProduct)
			})
		})
	})

	return r
}
