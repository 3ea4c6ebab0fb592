// Package devserver is an in-memory implementation of the device service REST API
// for local development and end-to-end tests.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Addr       string
	RateLimit  int
	RateWindow time.Duration
	// HashCost is the bcrypt cost. Zero means bcrypt.DefaultCost.
	HashCost int
}

type Server struct {
	cfg      Config
	store    *memoryStore
	validate *validator.Validate
	limiter  *RateLimiter
	router   *mux.Router
	logger   *slog.Logger

	mu      sync.Mutex
	server  *http.Server
	running bool
}

func New(cfg Config, logger *slog.Logger) *Server {
	cost := cfg.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	s := &Server{
		cfg:      cfg,
		store:    newMemoryStore(cost),
		validate: validator.New(),
		limiter:  NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	api := r.PathPrefix("").Subrouter()
	api.Use(s.limiter.Middleware)

	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/register/", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/create-home/", s.handleCreateHome).Methods(http.MethodPost)
	api.HandleFunc("/get-devices", s.handleListDevices).Methods(http.MethodGet)
	api.HandleFunc("/get-devices-by-keyword", s.handleSearchDevices).Methods(http.MethodGet)
	api.HandleFunc("/create-device", s.handleCreateDevice).Methods(http.MethodPost)
	api.HandleFunc("/update-device/{id:[0-9]+}", s.handleUpdateDevice).Methods(http.MethodPut)
	api.HandleFunc("/delete-device/{id:[0-9]+}", s.handleDeleteDevice).Methods(http.MethodDelete)

	// No rate limiting on health check
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.running = true
	srv := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("device service listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := srv.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}
