// Package server exposes the mentor pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/format"
	"github.com/nunnai/marketmentor/internal/history"
	"github.com/nunnai/marketmentor/internal/mentor"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	PublicDir      string // static assets served under /public
	TermsFile      string
	PrivacyFile    string
	RequestTimeout time.Duration
	Footer         format.Footer
}

// Answerer turns a question into an answer.
type Answerer interface {
	Process(ctx context.Context, question string) (mentor.Answer, error)
}

// Server is the Market Mentor backend.
type Server struct {
	cfg        Config
	answerer   Answerer
	logger     *zap.Logger
	metrics    *Metrics
	pages      *template.Template
	legal      *legalRenderer
	history    *history.Store
	upgrader   *websocket.Upgrader
	router     chi.Router
	httpServer *http.Server
}

// Option configures optional server features.
type Option func(*Server)

// WithHistory logs every question to store and exposes it under
// /api/history.
func WithHistory(store *history.Store) Option {
	return func(s *Server) { s.history = store }
}

// New creates a server that answers questions with a.
func New(cfg Config, a Answerer, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		answerer: a,
		logger:   logger,
		metrics:  NewMetrics(),
		pages:    pages,
		legal:    newLegalRenderer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = s.newUpgrader()
	s.router = s.buildRouter()
	return s, nil
}

// allowedOrigins is the browser origin list shared by CORS and the websocket
// handshake. An empty list allows local development pages only.
func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return s.cfg.AllowedOrigins
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Long-lived; each question gets its own deadline inside the handler.
	r.Get("/ws", s.handleSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

		r.Get("/", s.handleIndex)
		r.Post("/ask", s.handleAsk)
		r.Post("/answer", s.handleAnswer)
		r.Get("/terms", s.legalHandler(s.cfg.TermsFile, "Market Mentor - Terms of Service", "Error loading Terms of Service"))
		r.Get("/privacy", s.legalHandler(s.cfg.PrivacyFile, "Market Mentor - Privacy Policy", "Error loading Privacy Policy"))

		if s.history != nil {
			history.RegisterRoutes(r, s.history)
		}

		if s.cfg.PublicDir != "" {
			r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(s.cfg.PublicDir))))
		}
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("market mentor listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
