package api

import (
	"net/http"

	"github.com/dom/socialnet/internal/api/handlers"
	"github.com/dom/socialnet/internal/api/middleware"
	"github.com/dom/socialnet/internal/config"
	"github.com/dom/socialnet/internal/metrics"
	"github.com/dom/socialnet/internal/service"
	"github.com/dom/socialnet/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route. limiter throttles token issuance per client
// address; the caller owns it and stops it on shutdown.
func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS)
	r.Use(chiMiddleware.StripSlashes)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	tokenHandler := handlers.NewTokenHandler(services.Token, cfg)
	userHandler := handlers.NewUserHandler(services.User, services.Post)
	followHandler := handlers.NewFollowHandler(services.Follow)
	postHandler := handlers.NewPostHandler(services.Post)
	feedHandler := handlers.NewFeedHandler(hub, services.Token, services.User)

	// Token endpoints authenticate on their own credentials
	r.Route("/tokens", func(r chi.Router) {
		r.With(limiter.Middleware, middleware.BasicAuth(services.Token)).Post("/", tokenHandler.Create)
		r.Put("/", tokenHandler.Refresh)
		r.Delete("/", tokenHandler.Revoke)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(services.Token, services.User))

		r.Get("/feed", feedHandler.Handle)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{user}", userHandler.Get)
			r.Get("/{user}/posts", userHandler.Posts)
			r.Get("/{user}/following", followHandler.UserFollowing)
			r.Get("/{user}/followers", followHandler.UserFollowers)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Get("/me", userHandler.Me)
				r.Put("/me", userHandler.UpdateMe)
			})
		})

		// Reads are public, writes need a user
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.Get("/{id}", postHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Post("/", postHandler.Create)
				r.Put("/{id}", postHandler.Update)
				r.Delete("/{id}", postHandler.Delete)
			})
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/following", followHandler.MyFollowing)
			r.Get("/followers", followHandler.MyFollowers)
			r.Post("/following/{id}", followHandler.Follow)
			r.Delete("/following/{id}", followHandler.Unfollow)
			r.Get("/following/{id}", followHandler.IsFollowing)
		})
	})

	return r
}
