// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"smartspend/internal/advisor"
	"smartspend/internal/core"
	"smartspend/internal/log"
	"smartspend/internal/middleware/ratelimit"
	"smartspend/internal/middleware/security"
	"smartspend/internal/middleware/trace"
	"smartspend/internal/services"
)

// Adviser produces markdown advice for a list of transactions.
type Adviser interface {
	GetAdvice(ctx context.Context, txs []core.Transaction) string
}

// Deps wires the server to the rest of the application.
type Deps struct {
	Ledger *services.LedgerService
	// Advisor is optional; without it /advice answers 503.
	Advisor Adviser
	// Categorizer defaults to the offline keyword rules.
	Categorizer advisor.Categorizer
	// Ready probes backing services for /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger

	Currency           string
	CORSAllowedOrigins []string
	RateLimit          ratelimit.Config
	// Location is the calendar zone for period windows; defaults to Local.
	Location *time.Location
}

type Server struct {
	http.Server

	ledger      *services.LedgerService
	adviser     Adviser
	categorizer advisor.Categorizer
	ready       func(ctx context.Context) error
	logger      *log.Logger
	currency    string
	loc         *time.Location
	now         func() time.Time
	started     time.Time

	validate *validator.Validate
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer builds the router and returns a server ready to ListenAndServe.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Nop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	currency := deps.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}
	categorizer := deps.Categorizer
	if categorizer == nil {
		categorizer = advisor.NewKeywordCategorizer()
	}

	s := &Server{
		ledger:      deps.Ledger,
		adviser:     deps.Advisor,
		categorizer: categorizer,
		ready:       deps.Ready,
		logger:      logger.WithComponent(log.ComponentHTTP),
		currency:    currency,
		loc:         loc,
		now:         time.Now,
		started:     time.Now(),
		validate:    newValidator(),
		limiter:     ratelimit.NewLimiter(deps.RateLimit),
		detector:    security.NewDetector(logger),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(deps.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", trace.HeaderRequestID},
		ExposedHeaders:   []string{trace.HeaderRequestID, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.IsMutating, s.rateLimited))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Post("/transfers", s.handleTransfer)
		r.Post("/salary", s.handleSalary)
		r.Post("/received", s.handleReceived)

		r.Get("/summary", s.handleSummary)
		r.Get("/balances", s.handleBalances)
		r.Get("/history", s.handleHistory)
		r.Get("/statements/{year}/{month}", s.handleStatement)
		r.Get("/top", s.handleTop)

		r.Route("/lending", func(r chi.Router) {
			r.Get("/", s.handleLendingDirectory)
			r.Get("/{person}", s.handlePersonHistory)
			r.Post("/{person}/lend", s.handleLend)
			r.Post("/{person}/return", s.handleReturn)
		})

		r.Route("/bazar", func(r chi.Router) {
			r.Get("/", s.handleBazar)
			r.Post("/", s.handleAddBazar)
			r.Get("/trips", s.handleBazarTrips)
			r.Get("/monthly", s.handleBazarMonthly)
		})

		r.Get("/charts/categories", s.handleCategoryChart)
		r.Get("/charts/activity", s.handleActivityChart)

		r.Get("/categories", s.handleCategories)
		r.Post("/categorize", s.handleCategorize)
		r.Post("/advice", s.handleAdvice)

		r.Get("/export.xlsx", s.handleExportXLSX)
		r.Get("/export.csv", s.handleExportCSV)
	})

	return r
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the ledger can be read and runs the extra probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK

	if s.ledger == nil {
		checks["ledger"] = "not_configured"
		status = http.StatusServiceUnavailable
	} else if _, err := s.ledger.List(ctx); err != nil {
		checks["ledger"] = "failed: " + err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["ledger"] = "ok"
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["dependencies"] = "failed: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["dependencies"] = "ok"
		}
	}

	if s.adviser != nil {
		checks["advisor"] = "ok"
	} else {
		checks["advisor"] = "disabled"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
		s.logger.WarnContext(r.Context(), "Readiness check failed", "checks", checks)
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}

// Shutdown stops the rate limiter and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		m := s.tracer.GetMetrics()
		s.logger.Info("HTTP server stopped",
			log.FieldOperation, log.OpShutdown,
			"requests", m.TotalRequests,
			"avg_response", m.AverageResponseTime().String(),
			"rate_limited", s.limiter.GetMetrics().TotalHits,
			"suspicious", s.detector.GetMetrics().SuspiciousRequests)
	})
	return err
}
