package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/nattawatz/blog-api/internal/auth"
	"github.com/nattawatz/blog-api/internal/config"
	"github.com/nattawatz/blog-api/internal/http/handlers"
	"github.com/nattawatz/blog-api/internal/middleware"
	"github.com/nattawatz/blog-api/internal/models"
	"github.com/nattawatz/blog-api/internal/service"
	"github.com/nattawatz/blog-api/internal/storage"
)

// Version reported by the API root route.
const Version = "1.0.0"

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, log *logrus.Logger, svc *service.AuthService, users storage.UserStore, codec *auth.Codec, redisClient *redis.Client) *Server {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax, log)
	api.Use(middleware.RequestLogging(log), limiter.Middleware)

	root := handlers.NewRootHandler(time.Now(), Version)
	api.HandleFunc("/", root.Handle).Methods(http.MethodGet)

	authHandler := handlers.NewAuthHandler(svc, &cfg, log)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", authHandler.RefreshToken).Methods(http.MethodPost)

	authenticate := middleware.Authenticate(codec, log)
	api.Handle("/auth/logout",
		authenticate(http.HandlerFunc(authHandler.Logout)),
	).Methods(http.MethodPost)

	userHandler := handlers.NewUserHandler(svc, &cfg, log)
	authorizeUsers := middleware.Authorize(users, log, models.RoleAdmin, models.RoleUser)
	api.Handle("/user/current",
		authenticate(authorizeUsers(http.HandlerFunc(userHandler.Current))),
	).Methods(http.MethodGet)

	corsLayer := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           corsLayer.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
