package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/GiacomoGonzales/shopifree-domains/internal/api/handlers"
	mw "github.com/GiacomoGonzales/shopifree-domains/internal/api/middleware"
	"github.com/GiacomoGonzales/shopifree-domains/internal/buildconfig"
	"github.com/GiacomoGonzales/shopifree-domains/internal/config"
	"github.com/GiacomoGonzales/shopifree-domains/internal/domain"
	"github.com/GiacomoGonzales/shopifree-domains/internal/platform"
	"github.com/GiacomoGonzales/shopifree-domains/internal/service"
	"github.com/GiacomoGonzales/shopifree-domains/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and request counters.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, platformClient domain.PlatformClient, logger *zap.Logger) *App {
	tenantStore := store.NewTenantStore(db)

	domainSvc := service.NewDomainService(tenantStore, platformClient, logger)

	tenantHandler := handlers.NewTenantHandler(tenantStore)
	domainHandler := handlers.NewDomainHandler(domainSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Operational endpoints (no auth)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	// Tenant creation (no auth — bootstrap endpoint)
	r.Post("/v1/tenants", tenantHandler.Create)

	// Domain lifecycle (authenticated)
	r.Route("/v1/domains", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(tenantStore))

		r.Get("/", domainHandler.Status)
		r.Get("/records", domainHandler.Records)
		r.Post("/attach", domainHandler.Attach)
		r.Post("/verify", domainHandler.Verify)
		r.Post("/detach", domainHandler.Detach)
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"version":        buildconfig.Version(),
			"commit":         buildconfig.Commit(),
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": float64(memStats.Alloc) / 1024 / 1024,
				"sys_mb":   float64(memStats.Sys) / 1024 / 1024,
				"num_gc":   memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.TenantStore    = (*store.TenantStore)(nil)
	_ domain.PlatformClient = (*platform.Client)(nil)
)
