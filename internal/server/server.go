package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/desertthunder/vidx/internal/tasks"
)

// shutdownTimeout bounds how long in-flight requests may run after Start's context ends.
const shutdownTimeout = 30 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Deps are the collaborators behind the routes. Jobs and Prober are optional.
type Deps struct {
	Engine tasks.Engine
	Jobs   JobStore
	Prober Prober
	Logger *log.Logger
}

// Server is the vidx HTTP service.
type Server struct {
	cfg    shared.ServerConfig
	router *BasicRouter
	logger *log.Logger
}

// New builds a Server with every route and middleware registered.
func New(cfg shared.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}
	logger := shared.WithLogger(deps.Logger, "component", "server")

	router := NewBasicRouter()
	router.Use(LoggingMiddleware(logger), CORSMiddleware())
	if cfg.RateLimit > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))
	}

	router.Handler(NewProcessingHandler(deps.Engine, ProcessingOptions{
		MaxConcurrent: cfg.MaxConcurrent,
		Timeout:       cfg.RequestTimeout(),
		Logger:        logger,
	}))
	router.Handler(NewHealthHandler(deps.Prober))
	if deps.Jobs != nil {
		router.Handler(NewJobsHandler(deps.Jobs))
	}
	if cfg.PublicDir != "" {
		router.Handle(http.MethodGet, "/public/", http.StripPrefix("/public/", http.FileServer(http.Dir(cfg.PublicDir))))
	}

	return &Server{cfg: cfg, router: router, logger: logger}
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on the configured address until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %v", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
		return err
	}
	return nil
}
