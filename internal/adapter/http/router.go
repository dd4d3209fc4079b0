package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/payledger/internal/adapter/http/handler"
	"github.com/iho/payledger/internal/adapter/http/middleware"
	"github.com/iho/payledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	DocumentHandler   *handler.DocumentHandler
	ReceiptHandler    *handler.ReceiptHandler
	AllocationHandler *handler.AllocationHandler
	BalanceHandler    *handler.BalanceHandler
	SequenceHandler   *handler.SequenceHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	IdempotencyTTL    time.Duration
	RateLimiter       *middleware.RateLimiter
	Logger            zerolog.Logger
	// HTTPMetrics defaults to an unregistered instance.
	HTTPMetrics *middleware.HTTPMetrics
	// MetricsHandler serves /metrics; defaults to the default Prometheus registry.
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	httpMetrics := cfg.HTTPMetrics
	if httpMetrics == nil {
		httpMetrics = middleware.NewHTTPMetrics(nil)
	}
	r.Use(httpMetrics.Wrap)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		r.Route("/external-documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.Upsert)
			r.Put("/void/{kind}/{externalRefId}", cfg.DocumentHandler.Void)
		})

		r.Route("/documents/{id}", func(r chi.Router) {
			r.Get("/", cfg.DocumentHandler.Get)
			r.Get("/allocations", cfg.AllocationHandler.ListByDocument)
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Post("/", cfg.ReceiptHandler.Create)
			r.Get("/{id}", cfg.ReceiptHandler.Get)
			r.Put("/{id}/void", cfg.ReceiptHandler.Void)
		})

		r.Route("/allocations", func(r chi.Router) {
			r.Post("/", cfg.AllocationHandler.Apply)
			r.Post("/cover-invoice", cfg.AllocationHandler.CoverInvoice)
		})
		r.Get("/allocation-batches/{id}", cfg.AllocationHandler.GetBatch)

		r.Route("/sequences/{scope}", func(r chi.Router) {
			r.Get("/", cfg.SequenceHandler.Get)
			r.Post("/next", cfg.SequenceHandler.Next)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)

		// partyType is "customers" or "suppliers"; handlers reject anything else.
		r.Route("/{partyType}/{partyId}", func(r chi.Router) {
			r.Get("/balances", cfg.BalanceHandler.Balances)
			r.Get("/ledger", cfg.BalanceHandler.Ledger)
			r.Get("/selectables", cfg.BalanceHandler.Selectables)
			r.Get("/receipt-credits", cfg.BalanceHandler.ReceiptCredits)
			r.Get("/statement", cfg.BalanceHandler.Statement)
			r.Get("/documents", cfg.DocumentHandler.ListByParty)
			r.Post("/allocations/manual/preview", cfg.AllocationHandler.PreviewManual)
			r.Post("/allocations/manual/execute", cfg.AllocationHandler.ExecuteManual)
		})
	})

	return r
}
