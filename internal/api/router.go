package api

import (
	"credit-engine/internal/api/handler"
	mw "credit-engine/internal/api/middleware"
	"credit-engine/internal/config"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"log/slog"
	"net/http"
	"time"

	_ "credit-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/redis/go-redis/v9"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const defaultRequestTimeout = 60 * time.Second

// SetupRouter wires every public endpoint. redisClient may be nil, in which
// case rate limiting falls back to per-process buckets.
func SetupRouter(
	loanService loan.Service,
	customerService customer.Service,
	runner handler.ReconciliationRunner,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, redisClient, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupCustomerRoutes(router, customerService, logger)
	setupLoanRoutes(router, loanService, logger)
	setupIngestRoutes(router, runner, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, redisClient *redis.Client, cfg *config.Config, logger *slog.Logger) {
	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupCustomerRoutes(router *chi.Mux, svc customer.Service, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)
	router.Post("/register", h.Register)
}

func setupLoanRoutes(router *chi.Mux, svc loan.Service, logger *slog.Logger) {
	h := handler.NewLoanHandler(svc, logger)
	router.Post("/check-eligibility", h.CheckEligibility)
	router.Post("/create-loan", h.CreateLoan)
	router.Get("/view-loan/{loanID}", h.ViewLoan)
	router.Get("/view-loans/{customerID}", h.ViewLoans)
}

func setupIngestRoutes(router *chi.Mux, runner handler.ReconciliationRunner, logger *slog.Logger) {
	h := handler.NewIngestHandler(runner, logger)
	router.Route("/ingest-data", func(r chi.Router) {
		r.Post("/", h.StartIngest)
		r.Get("/{runID}", h.GetIngestRun)
	})
}
