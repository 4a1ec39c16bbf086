package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/simaogato/investtrack-backend/internal/domain"
	"github.com/simaogato/investtrack-backend/internal/usecase/assettype"
	"github.com/simaogato/investtrack-backend/internal/usecase/importer"
	"github.com/simaogato/investtrack-backend/internal/usecase/investment"
	"github.com/simaogato/investtrack-backend/internal/usecase/metrics"
	"github.com/simaogato/investtrack-backend/internal/usecase/snapshot"
)

// Config holds server configuration
type Config struct {
	Port     int
	APIToken string
	Log      zerolog.Logger
	DevMode  bool

	InvestmentService *investment.InvestmentService
	SnapshotService   *snapshot.Service
	MetricsService    *metrics.Service
	TypeService       *assettype.TypeService
	ImporterService   *importer.Service
	LedgerRepo        domain.LedgerRepository
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	investments *investment.InvestmentService
	snapshots   *snapshot.Service
	metrics     *metrics.Service
	types       *assettype.TypeService
	importer    *importer.Service
	ledgerRepo  domain.LedgerRepository
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		investments: cfg.InvestmentService,
		snapshots:   cfg.SnapshotService,
		metrics:     cfg.MetricsService,
		types:       cfg.TypeService,
		importer:    cfg.ImporterService,
		ledgerRepo:  cfg.LedgerRepo,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg.APIToken)

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
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(apiToken string) {
	// Health check (unauthenticated)
	s.router.Get("/health", s.handleHealth)

	// API routes (token protected)
	s.router.Route("/api", func(r chi.Router) {
		r.Use(RequireToken(apiToken))

		r.Route("/investments", func(r chi.Router) {
			r.Post("/purchases", s.handleRecordPurchase)
			r.Post("/revaluations", s.handleRecordRevaluation)
			r.Post("/sales", s.handleRecordSale)
		})

		r.Get("/assets/{id}/position", s.handleAssetPosition)

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/positions", s.handleListPositions)
			r.Get("/metrics", s.handlePortfolioMetrics)
			r.Get("/evolution", s.handlePortfolioEvolution)
		})

		r.Route("/types", func(r chi.Router) {
			r.Get("/", s.handleListTypes)
			r.Post("/", s.handleCreateType)
			r.Delete("/{id}", s.handleDeleteType)
		})

		r.Get("/ledger", s.handleListLedger)
		r.Post("/import", s.handleImport)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

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

// handleHealth responds to liveness probes
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
