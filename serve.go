package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"highxofy/internal/audit"
	"highxofy/internal/auth"
	"highxofy/internal/baseline/application"
	"highxofy/internal/baseline/application/eventbus"
	baseline "highxofy/internal/baseline/domain"
	"highxofy/internal/baseline/infrastructure/csvfile"
	"highxofy/internal/baseline/infrastructure/memory"
	"highxofy/internal/baseline/infrastructure/postgres"
	baselinehttp "highxofy/internal/baseline/interfaces/http"
	"highxofy/internal/config"
	"highxofy/internal/observability/metrics"
)

func runServe(env config.Env, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", env.ConfigPath, "calculation config (.toml or .yaml)")
	addr := fs.String("addr", env.HTTPAddr, "listen address")
	demandPath := fs.String("demand", "", "demand CSV used when DATABASE_URL is unset")
	holidayPath := fs.String("holidays", "", "public holiday CSV used when DATABASE_URL is unset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	if env.AuthJWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	loc, err := env.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)
	bus := eventbus.NewInMemoryBus()
	m.Subscribe(bus)
	subscribeRunHandlers(bus, env, logger)

	calculator, err := application.NewCalculator(cfg,
		application.WithEventBus(bus),
		application.WithMetrics(m),
		application.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var (
		db          *sql.DB
		repo        baseline.ResultRepository
		auditLogger audit.Logger
		sources     func(subjectID string) (baseline.DemandSource, error)
	)
	if env.DatabaseURL != "" {
		if db, err = openDB(ctx, env.DatabaseURL); err != nil {
			return err
		}
		defer db.Close()
		resultRepo := postgres.NewResultRepository(db)
		if err := resultRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		m.RegisterStoredResults(db, resultRepo.Table(), logger)
		repo = resultRepo
		auditRepo := audit.NewRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		auditLogger = auditRepo
		sources = func(subjectID string) (baseline.DemandSource, error) {
			return postgres.NewDemandSource(db, subjectID, postgres.WithLocation(loc)), nil
		}
	} else {
		logger.Printf("DATABASE_URL not set; results are kept in memory, subject=%s only", env.SubjectID)
		repo = memory.NewResultRepository()
		auditLogger = audit.NewLogLogger(logger)
		sources = csvSources(env.SubjectID, *demandPath, *holidayPath, loc)
	}

	factory := func(subjectID string) (*application.Service, error) {
		source, err := sources(subjectID)
		if err != nil {
			return nil, err
		}
		return application.NewService(calculator, source, repo)
	}
	handler, err := baselinehttp.NewHandler(factory, repo, cfg,
		baselinehttp.WithDefaultSubject(env.SubjectID),
		baselinehttp.WithMetrics(m),
		baselinehttp.WithAuditLogger(auditLogger),
		baselinehttp.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(env.AuthJWTSecret), policy)
	authMiddleware.Logger = logger

	mux := http.NewServeMux()
	mux.Handle("/api/v1/baselines", handler)
	mux.Handle("/api/v1/baselines/", handler)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(mux), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Printf("http listening on %s", *addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Printf("http shutting down")
	return server.Shutdown(shutdownCtx)
}

// csvSources serves only subjectID from the given files. Other subjects
// get ErrUnknownSubject.
func csvSources(subjectID, demandPath, holidayPath string, loc *time.Location) func(string) (baseline.DemandSource, error) {
	return func(requested string) (baseline.DemandSource, error) {
		if requested != subjectID {
			return nil, fmt.Errorf("%w: %q", baseline.ErrUnknownSubject, requested)
		}
		source, err := csvfile.NewSource(demandPath, holidayPath, csvfile.WithLocation(loc))
		if err != nil {
			return nil, err
		}
		return source, nil
	}
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
