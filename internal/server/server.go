// Package server sets up the HTTP server, router, and all route
// definitions. It is the composition root: every dependency chain
// (DB -> service -> handler) is assembled here and nowhere else.
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

	"github.com/Rohitkumar43/coditor/internal/auth"
	"github.com/Rohitkumar43/coditor/internal/executor"
	"github.com/Rohitkumar43/coditor/internal/handler"
	"github.com/Rohitkumar43/coditor/internal/middleware"
	sqliteRepo "github.com/Rohitkumar43/coditor/internal/repository/sqlite"
	"github.com/Rohitkumar43/coditor/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port          int
	DBPath        string
	AuthSecret    string // shared HS256 secret for provider-issued session tokens
	WebhookSecret string // svix endpoint secret for identity webhooks
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server, wiring the full dependency chain:
// sqlite.DB implements every repository interface; services receive the
// interfaces; handlers receive the services.
func New(cfg Config, logger *slog.Logger, exec executor.Executor) (*Server, error) {
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

	if err := s.setupRoutes(exec); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes(exec executor.Executor) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	verifier, err := auth.NewVerifier(s.config.AuthSecret)
	if err != nil {
		return fmt.Errorf("creating token verifier: %w", err)
	}

	userService := service.NewUserService(s.db, s.logger)
	executionService := service.NewExecutionService(s.db, s.db, s.db, s.db, s.logger)
	snippetService := service.NewSnippetService(s.db, s.db, s.db, s.db, s.logger)

	executionHandler := handler.NewExecutionHandler(executionService, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	executeHandler := handler.NewExecuteHandler(exec, executionService, s.logger)

	webhookHandler, err := handler.NewWebhookHandler(s.config.WebhookSecret, userService, s.logger)
	if err != nil {
		return fmt.Errorf("creating webhook handler: %w", err)
	}

	// Identity provider callbacks: authenticated by signature, not by token.
	s.router.Post("/webhooks/identity", webhookHandler.HandleIdentityEvent)

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. OptionalAuth lets star info reflect the caller's
		// own star when a token is present.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(verifier))

			r.Get("/snippets", snippetHandler.HandleList)
			r.Get("/snippets/{id}", snippetHandler.HandleGetByID)
			r.Get("/snippets/{id}/star", snippetHandler.HandleStarInfo)
			r.Get("/snippets/{id}/comments", snippetHandler.HandleListComments)
			r.Get("/users/{id}", userHandler.HandleGetByID)
			r.Get("/users/{id}/executions", executionHandler.HandleListByUser)
			r.Get("/users/{id}/stats", executionHandler.HandleStats)

			// Anonymous users may run code; only authenticated runs are
			// recorded.
			r.Post("/execute", executeHandler.HandleExecute)
		})

		// Writes require a verified caller identity.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(verifier))

			r.Get("/me", userHandler.HandleMe)
			r.Post("/executions", executionHandler.HandleSave)
			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
			r.Post("/snippets/{id}/star", snippetHandler.HandleToggleStar)
			r.Post("/snippets/{id}/comments", snippetHandler.HandleAddComment)
			r.Delete("/comments/{id}", snippetHandler.HandleDeleteComment)
			r.Get("/starred", snippetHandler.HandleStarred)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s, and
// close the database (flushes the WAL, releases the file lock).
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
