// Package server wires the store, services, handlers and routes together and
// runs the HTTP server.
//
// Dependency flow, assembled once in New:
//
//	config.Config → sqlstore.Store → services → handlers → chi routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/taskflow/internal/auth"
	"github.com/sakif/taskflow/internal/config"
	"github.com/sakif/taskflow/internal/handler"
	"github.com/sakif/taskflow/internal/imaging"
	"github.com/sakif/taskflow/internal/middleware"
	"github.com/sakif/taskflow/internal/repository/sqlstore"
	"github.com/sakif/taskflow/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and the store. The store is closed when Start
// returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  *sqlstore.Store
	tokens *auth.TokenService
}

// Option tweaks how New builds the server.
type Option func(*options)

type options struct {
	passwords *auth.PasswordService
	github    *auth.GitHubProvider
}

// WithPasswordService replaces the default Argon2id work factors. Tests use
// it with cheap parameters.
func WithPasswordService(p *auth.PasswordService) Option {
	return func(o *options) { o.passwords = p }
}

// New opens the store (running migrations) and builds every layer.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := options{passwords: auth.NewPasswordService()}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.GitHubEnabled() {
		o.github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	store, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		ConnMaxIdleTime: cfg.DBConnIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
		tokens: tokens,
	}
	s.setupRoutes(o)

	return s, nil
}

// setupRoutes registers middleware and handlers.
//
// Middleware order: RequestID → RealIP → Recoverer → Logger. The logger
// runs innermost of the chi set so it sees the request id.
func (s *Server) setupRoutes(o options) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	validate := handler.NewValidator()

	// === Services ===
	var exchanger service.GitHubExchanger
	var authURLer handler.AuthURLer
	if o.github != nil {
		exchanger = o.github
		authURLer = o.github
	}
	authService := service.NewAuthService(s.store, s.tokens, o.passwords, exchanger, s.logger)
	accountService := service.NewAccountService(s.store, o.passwords, s.logger)
	taskService := service.NewTaskService(s.store, s.logger)
	commentService := service.NewCommentService(s.store, s.logger)
	avatarService := service.NewAvatarService(s.store, imaging.NewNormalizer(s.config.AvatarSide, s.config.AvatarMaxPixels), s.config.AvatarMaxBytes, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authService, authURLer, validate, s.logger)
	accountHandler := handler.NewAccountHandler(accountService, validate, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, validate, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, validate, s.logger)
	avatarHandler := handler.NewAvatarHandler(avatarService, s.logger)

	requireAuth := auth.RequireAuth(s.tokens, handler.WriteError)

	s.router.Get("/health", handler.HandleHealth(s.store))

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/sign_in", authHandler.HandleSignIn)
		if o.github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Route("/user", func(r chi.Router) {
		r.Post("/", accountHandler.HandleCreate)
		r.Get("/", accountHandler.HandleSearch)
		r.Get("/{id}", accountHandler.HandleGetByID)
		r.Get("/{id}/avatar", avatarHandler.HandleGetByAccount)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", accountHandler.HandleMe)
			r.Patch("/me", accountHandler.HandleUpdateMe)
			r.Delete("/me", accountHandler.HandleDeleteMe)
			r.Post("/me/avatar", avatarHandler.HandleUpload)
			r.Get("/me/avatar", avatarHandler.HandleGetMine)
			r.Delete("/me/avatar", avatarHandler.HandleDeleteMine)
		})
	})

	s.router.Route("/task", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", taskHandler.HandleCreate)
		r.Get("/me", taskHandler.HandleListMine)
		r.Patch("/{task_id}", taskHandler.HandleUpdate)
		r.Delete("/{task_id}", taskHandler.HandleDelete)

		r.Post("/{task_id}/comment", commentHandler.HandleCreate)
		r.Get("/{task_id}/comment", commentHandler.HandleList)
		r.Patch("/{task_id}/comment/{id}", commentHandler.HandleUpdate)
		r.Delete("/{task_id}/comment/{id}", commentHandler.HandleDelete)
	})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store. Start calls it on the way out.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start listens on the configured port until SIGINT/SIGTERM, then drains
// in-flight requests for up to 30s and closes the store.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("db_driver", s.config.DBDriver),
			slog.Bool("github_sign_in", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
