// Package server wires the repositories, services, and handlers into an HTTP
// server and owns its lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/microblog/internal/auth"
	"github.com/sakif/microblog/internal/handler"
	"github.com/sakif/microblog/internal/httpsession"
	"github.com/sakif/microblog/internal/middleware"
	sqliteRepo "github.com/sakif/microblog/internal/repository/sqlite"
	"github.com/sakif/microblog/internal/service"
)

type Config struct {
	Port   int
	DBPath string
}

type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // owned by the server, closed on shutdown
}

func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes builds the dependency graph bottom-up: repositories feed
// services, services feed handlers, and the router only ever sees handlers.
// Nothing below the handler layer imports net/http.
func (s *Server) setupRoutes() {
	users := s.db.Users()
	posts := s.db.Posts()
	follows := s.db.Follows()

	userService := service.NewUserService(users, auth.NewPasswordService(), s.logger)
	sessionService := service.NewSessionService(users, s.logger)
	socialService := service.NewSocialService(follows, users, s.logger)
	postService := service.NewPostService(posts, s.logger)

	authHandler := handler.NewAuthHandler(userService, sessionService, s.logger)
	socialHandler := handler.NewSocialHandler(socialService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	// Middleware order matters. Request plumbing (IDs, panic recovery,
	// logging) runs first; the session middleware runs last so every route
	// below it can ask for the current user. The session middleware itself
	// is lazy and does no store work unless a handler asks.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(httpsession.Middleware(sessionService, s.logger))

	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/signin", authHandler.HandleSignIn)
	s.router.Post("/signout", authHandler.HandleSignOut)
	s.router.Get("/me", authHandler.HandleMe)

	// Everything under /api requires a signed-in user; the routes above it
	// (register, sign-in, sign-out, me) handle anonymity themselves.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(httpsession.RequireUser())

		r.Get("/feed", postHandler.HandleFeed)
		r.Post("/posts", postHandler.HandleCreate)
		r.Delete("/posts/{id}", postHandler.HandleDelete)

		r.Post("/users/{id}/follow", socialHandler.HandleFollow)
		r.Delete("/users/{id}/follow", socialHandler.HandleUnfollow)
		r.Get("/users/{id}/following", socialHandler.HandleFollowing)
		r.Get("/users/{id}/followers", socialHandler.HandleFollowers)
	})
}

func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
