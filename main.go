package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"highxofy/internal/baseline/application/eventbus"
	"highxofy/internal/baseline/application/events"
	"highxofy/internal/config"
	"highxofy/internal/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const usage = `usage: highxofy <command> [flags]

commands:
  calculate   compute high x of y baselines from CSV files or Postgres
  serve       serve stored baselines over HTTP
  token       issue a bearer token for the HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("env config error: %v", err)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "calculate":
		err = runCalculate(env, args)
	case "serve":
		err = runServe(env, args)
	case "token":
		err = runToken(env, args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func subscribeRunHandlers(bus eventbus.EventBus, env config.Env, logger *log.Logger) {
	if env.WebhookURL != "" {
		notify.Subscribe(bus, notify.NewWebhookNotifier(env.WebhookURL), logger)
	}

	eventbus.On(bus, func(_ context.Context, evt events.BaselineCalculated) error {
		first, last := "-", "-"
		if !evt.FirstAt.IsZero() {
			first = evt.FirstAt.Format(time.RFC3339)
			last = evt.LastAt.Format(time.RFC3339)
		}
		logger.Printf("baseline calculated: subject=%s records=%d defined=%d from=%s to=%s took=%s",
			evt.SubjectID, evt.Records, evt.Defined, first, last, evt.Duration)
		return nil
	})
}

func parseTimeFlag(name, value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("-%s must be RFC3339 or YYYY-MM-DD", name)
}
