package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/snetlabs/social-network/internal/api"
)

// SetupRouter wires the gateway's root-level routes onto the proxy.
func SetupRouter(p *Proxy) chi.Router {
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
			"message": "API Gateway",
			"version": "1.0.0",
		})
	})

	r.Post("/register", p.Relay("/register"))
	r.Post("/login", p.Relay("/login"))
	r.Get("/profile", p.Relay("/profile"))
	r.Put("/profile", p.Relay("/profile"))
	r.Get("/users", p.Relay("/users"))

	return r
}
