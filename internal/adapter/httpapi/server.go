// Package httpapi exposes the portfolio engine over REST.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/simaogato/investfolio-backend/internal/adapter/auth"
	"github.com/simaogato/investfolio-backend/internal/metrics"
	"github.com/simaogato/investfolio-backend/internal/usecase/dashboard"
	"github.com/simaogato/investfolio-backend/internal/usecase/investment"
)

// Config holds server configuration
type Config struct {
	Port       int
	Log        zerolog.Logger
	Metrics    *metrics.Metrics
	Verifier   *auth.Verifier
	Investment *investment.InvestmentService
	Dashboard  *dashboard.DashboardService

	// Per-user limit on buy and sell requests. Zero disables limiting.
	RateLimit rate.Limit
	RateBurst int
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	metrics    *metrics.Metrics
	verifier   *auth.Verifier
	investment *investment.InvestmentService
	dashboard  *dashboard.DashboardService
	limiter    *userLimiter
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "http").Logger(),
		metrics:    cfg.Metrics,
		verifier:   cfg.Verifier,
		investment: cfg.Investment,
		dashboard:  cfg.Dashboard,
	}
	if cfg.RateLimit > 0 {
		s.limiter = newUserLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(30 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/portfolio", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/", s.handleGetPortfolio)
		r.Get("/transactions", s.handleGetTransactions)
		r.Get("/summary", s.handleGetSummary)
		r.Get("/allocation", s.handleGetAllocation)
		r.Get("/gains", s.handleGetGains)
		r.Get("/{holdingId}", s.handleGetHolding)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitMiddleware)
			r.Post("/buy", s.handleBuy)
			r.Post("/sell", s.handleSell)
		})
	})
}

// Handler returns the root handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests and counts them by route pattern
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveHTTP(r.Method, route, strconv.Itoa(ww.Status()))

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
