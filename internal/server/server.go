package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hearthhq/hearth/internal/auth"
	"github.com/hearthhq/hearth/internal/handler"
	"github.com/hearthhq/hearth/internal/openapi"
	"github.com/hearthhq/hearth/internal/server/middleware"
	"github.com/hearthhq/hearth/internal/session"
	"github.com/hearthhq/hearth/internal/store"
	"github.com/hearthhq/hearth/internal/upload"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	CookieName      string
	SecureCookie    bool
	AuthRatePerMin  int // per-IP limit on signup/login
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		CookieName:      "hearth_session",
		AuthRatePerMin:  30,
	}
}

// Server is the top-level HTTP server for Hearth. It owns the Chi router and
// wires the record store, auth service, session manager, and upload storage
// into the route tree.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	authSvc    *auth.Service
	sessions   *session.Manager
	storage    *upload.Storage
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, authSvc *auth.Service, sessions *session.Manager, storage *upload.Storage, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		authSvc:  authSvc,
		sessions: sessions,
		storage:  storage,
		logger:   logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	requireSession := middleware.RequireSession(s.sessions, s.cfg.CookieName)

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// --- OpenAPI spec (no auth required) ---
	spec := openapi.GenerateSpec("/")
	r.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(spec)
	})

	// --- Account and session routes ---
	authHandler := handler.NewAuthHandler(s.authSvc, s.sessions, s.logger, s.cfg.CookieName, s.cfg.SecureCookie)
	r.Route("/auth", func(r chi.Router) {
		// Credential endpoints are rate limited per IP against brute force.
		r.Group(func(r chi.Router) {
			if s.cfg.AuthRatePerMin > 0 {
				r.Use(middleware.RateLimit(s.cfg.AuthRatePerMin))
			}
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		// Logout never fails on an unknown session; no gate needed.
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/isLoggedIn", authHandler.IsLoggedIn)
			r.Put("/update", authHandler.Update)
		})

		// Session check precedes the admin check so an unauthenticated
		// request sees 401, not 403.
		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Use(middleware.RequireAdmin())
			r.Post("/update_admins", authHandler.UpdateAdmins)
		})
	})

	// --- Event CRUD ---
	eventHandler := handler.NewEventHandler(s.store, s.logger)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.List)
		r.Get("/{eventId}", eventHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Post("/", eventHandler.Create)
			r.Put("/{eventId}", eventHandler.Update)
			r.Delete("/{eventId}", eventHandler.Delete)
		})
	})

	// --- File uploads ---
	uploadHandler := handler.NewUploadHandler(s.storage, s.authSvc, s.logger)
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/files", uploadHandler.Upload)
	})
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Use(middleware.RequireAdmin())
		r.Get("/files", uploadHandler.List)
		r.Delete("/files/{filename}", uploadHandler.Delete)
	})

	// Stored files are public once uploaded; names are server-generated.
	fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(s.storage.Dir())))
	r.Get("/files/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the record store is
// reachable, or 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{"status": status})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the record store.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
