package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"meterdash/internal/audit"
	"meterdash/internal/auth"
	appconfig "meterdash/internal/config"
	"meterdash/internal/observability/metrics"
	"meterdash/internal/reporting/application"
	reporting "meterdash/internal/reporting/domain"
	"meterdash/internal/reporting/domain/hierarchy"
	reportingrepo "meterdash/internal/reporting/infrastructure/postgres"
	reportinginterfaces "meterdash/internal/reporting/interfaces"
	reportinghttp "meterdash/internal/reporting/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	domains, err := appconfig.LoadConfig()
	if err != nil {
		logger.Fatalf("reporting config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	historyIndexes := make(map[string]reporting.MonthIndex, len(domains.Domains))
	for name, domain := range domains.Domains {
		index, err := domain.HistoryIndex()
		if err != nil {
			logger.Fatalf("month index error for %s: %v", name, err)
		}
		historyIndexes[name] = index
	}
	recordRepo := reportingrepo.NewRecordRepository(db, historyIndexes)

	services := make(map[string]*application.DashboardService, len(domains.Domains))
	for name, domain := range domains.Domains {
		displayIndex, err := domain.DisplayIndex()
		if err != nil {
			logger.Fatalf("display index error for %s: %v", name, err)
		}
		agg, err := reporting.NewAggregator(displayIndex, domain.UnitRate, reporting.WithHistoryIndex(historyIndexes[name]))
		if err != nil {
			logger.Fatalf("aggregator error for %s: %v", name, err)
		}

		var opts []application.Option
		if name == appconfig.DomainWater {
			resolver, err := hierarchy.NewResolver(agg, domain.LossRate)
			if err != nil {
				logger.Fatalf("hierarchy resolver error: %v", err)
			}
			opts = append(opts, application.WithHierarchy(resolver))
		}

		service, err := application.NewDashboardService(name, agg, recordRepo, opts...)
		if err != nil {
			logger.Fatalf("dashboard service error for %s: %v", name, err)
		}
		services[name] = service
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	for name, service := range services {
		started := time.Now()
		err := service.Refresh(ctx)
		metrics.ObserveRefresh(name, err, time.Since(started))
		if err != nil {
			logger.Printf("initial snapshot fetch failed for %s: %v", name, err)
		}
	}
	cancel()

	reportsHandler, err := reportinghttp.NewReportsHandler(services, auditRepo)
	if err != nil {
		logger.Fatalf("reports handler error: %v", err)
	}
	exportHandler, err := reportinginterfaces.NewExportHandler(services, auditRepo)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports/", reportsHandler)
	mux.Handle("/api/v1/exports/", exportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
