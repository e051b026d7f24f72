package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/snetlabs/social-network/internal/api"
	"github.com/snetlabs/social-network/internal/api/auth"
	"github.com/snetlabs/social-network/internal/api/profiles"
)

// Config contains the dependencies needed for router setup.
type Config struct {
	AuthHandler            *auth.HandlerImpl
	ProfileHandler         *profiles.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter wires the user-service routes. Server-wide middleware
// (request ID, logger, recoverer) is applied before mounting this router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{
			"message": "User Service API",
			"version": "1.0.0",
		})
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes.
		r.Group(func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Get("/users", cfg.ProfileHandler.ListUsers)
		})

		// Routes requiring a verified bearer token.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Get("/profile", cfg.ProfileHandler.GetProfile)
			r.Put("/profile", cfg.ProfileHandler.UpdateProfile)
		})
	})

	return r
}
