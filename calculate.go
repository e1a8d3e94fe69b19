package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"highxofy/internal/baseline/application"
	"highxofy/internal/baseline/application/eventbus"
	baseline "highxofy/internal/baseline/domain"
	"highxofy/internal/baseline/infrastructure/csvfile"
	"highxofy/internal/baseline/infrastructure/postgres"
	"highxofy/internal/baseline/interfaces"
	"highxofy/internal/config"
	"highxofy/internal/observability/metrics"
)

func runCalculate(env config.Env, args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	configPath := fs.String("config", env.ConfigPath, "calculation config (.toml or .yaml)")
	source := fs.String("source", "csv", "demand source: csv or postgres")
	demandPath := fs.String("demand", "", "demand CSV (datetime, demand, dr_invoked_unit)")
	holidayPath := fs.String("holidays", "", "public holiday CSV (date)")
	subjectID := fs.String("subject", env.SubjectID, "site or meter id")
	fromFlag := fs.String("from", "", "inclusive start (RFC3339 or YYYY-MM-DD)")
	toFlag := fs.String("to", "", "exclusive end (RFC3339 or YYYY-MM-DD)")
	outPath := fs.String("out", "-", "result CSV path, - for stdout")
	xlsxPath := fs.String("xlsx", "", "optional XLSX export path")
	pdfPath := fs.String("pdf", "", "optional PDF report path")
	save := fs.Bool("save", false, "upsert results into Postgres")
	textfile := fs.String("metrics-textfile", env.MetricsTextfile, "write run metrics in text format to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	loc, err := env.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	from, err := parseTimeFlag("from", *fromFlag, loc)
	if err != nil {
		return err
	}
	to, err := parseTimeFlag("to", *toFlag, loc)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var db *sql.DB
	if *source == "postgres" || *save {
		if db, err = openDB(ctx, env.DatabaseURL); err != nil {
			return err
		}
		defer db.Close()
	}

	var demandSource baseline.DemandSource
	switch *source {
	case "csv":
		demandSource, err = csvfile.NewSource(*demandPath, *holidayPath, csvfile.WithLocation(loc))
		if err != nil {
			return err
		}
	case "postgres":
		demandSource = postgres.NewDemandSource(db, *subjectID, postgres.WithLocation(loc))
	default:
		return fmt.Errorf("unknown source %q", *source)
	}

	var repo baseline.ResultRepository
	if *save {
		resultRepo := postgres.NewResultRepository(db)
		if err := resultRepo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		repo = resultRepo
	}

	registry := prometheus.NewRegistry()
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
	service, err := application.NewService(calculator, demandSource, repo)
	if err != nil {
		return err
	}

	result, runErr := service.Run(ctx, application.RunRequest{SubjectID: *subjectID, From: from, To: to, Save: *save})
	if runErr == nil {
		runErr = writeOutputs(result, *outPath, *xlsxPath, *pdfPath, m)
	}
	if *textfile != "" {
		if err := prometheus.WriteToTextfile(*textfile, registry); err != nil {
			logger.Printf("metrics textfile error: %v", err)
		}
	}
	return runErr
}

func writeOutputs(result *application.Result, outPath, xlsxPath, pdfPath string, m *metrics.Metrics) error {
	if outPath == "-" || outPath == "" {
		if err := csvfile.WriteResults(os.Stdout, result.Records); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	} else if err := csvfile.WriteResultsFile(outPath, result.Records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	var errs []error
	if xlsxPath != "" {
		errs = append(errs, export(m, "xlsx", xlsxPath, func() ([]byte, error) {
			return interfaces.BuildResultsXLSX(result.SubjectID, result.Summary, result.Records)
		}))
	}
	if pdfPath != "" {
		errs = append(errs, export(m, "pdf", pdfPath, func() ([]byte, error) {
			return interfaces.BuildBaselinePDF(result.SubjectID, result.Summary, time.Now())
		}))
	}
	return errors.Join(errs...)
}

func export(m *metrics.Metrics, format, path string, build func() ([]byte, error)) error {
	data, err := build()
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		m.ObserveExport(format, metrics.ResultError)
		return fmt.Errorf("export %s: %w", format, err)
	}
	m.ObserveExport(format, metrics.ResultSuccess)
	return nil
}
