// Package httpapi exposes the answer, search and health services over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// RequestIDHeader carries the request ID on every response. An ID sent by
// the caller is kept; otherwise chi generates one.
const RequestIDHeader = "X-Request-ID"

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Services contains the services the API serves. Any of them may be nil;
// the matching endpoint then reports the service as unavailable.
type Services struct {
	Answer  driving.AnswerService
	Search  driving.SearchService
	Health  driving.HealthService
	Metrics http.Handler
}

// Options configures the HTTP server.
type Options struct {
	Addr            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	router   *chi.Mux
	services Services
	opts     Options
}

// NewServer creates a server and registers its routes.
func NewServer(services Services, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		router:   chi.NewRouter(),
		services: services,
		opts:     opts,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(echoRequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}))
	s.router.Use(accessLog)

	s.router.Post("/ask", s.handleAsk)
	s.router.Post("/search", s.handleSearch)
	s.router.Get("/health", s.handleHealth)
	if s.services.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.services.Metrics)
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	logger.Info("Shutting down HTTP API")
	return srv.Shutdown(shutdownCtx)
}

// echoRequestID copies the ID assigned by middleware.RequestID onto the
// response.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		response = []byte(`{"error":"Internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
