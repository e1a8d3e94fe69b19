package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	baseline "highxofy/internal/baseline/domain"
	"highxofy/internal/baseline/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestResultRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := postgres.NewResultRepository(db, postgres.WithResultTable("baseline_results_it"))
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	subjectID := "subject-it"
	_, _ = db.ExecContext(ctx, "DELETE FROM baseline_results_it WHERE subject_id = $1", subjectID)

	ts := time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)
	record := baseline.ResultRecord{DayType: baseline.DayTypeWeekday, MeanHighXOfY: baseline.Float(98.5)}
	record.Timestamp = ts
	record.Demand = baseline.Float(100)
	record.Date = time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	record.DayOfWeek = baseline.Wednesday
	record.IsWeekday = true
	record.UnitNum = 19
	record.DRInvokedDay = 0
	record.MeanDailyDemandForDR = baseline.Float(90)
	record.DemandDaysAgo = []*float64{baseline.Float(97), nil}
	record.DRInvokedDayDaysAgo = []*int{baseline.Int(0), nil}

	if err := repo.SaveResults(ctx, subjectID, []baseline.ResultRecord{record}); err != nil {
		t.Fatalf("save: %v", err)
	}
	record.MeanHighXOfY = baseline.Float(99)
	if err := repo.SaveResults(ctx, subjectID, []baseline.ResultRecord{record}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := repo.ListResults(ctx, subjectID, baseline.ResultQuery{DayType: baseline.DayTypeWeekday})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", len(got))
	}
	if got[0].MeanHighXOfY == nil || *got[0].MeanHighXOfY != 99 {
		t.Fatalf("unexpected mean: %v", got[0].MeanHighXOfY)
	}
	if len(got[0].DemandDaysAgo) != 2 || got[0].DemandDaysAgo[1] != nil {
		t.Fatalf("unexpected lags: %v", got[0].DemandDaysAgo)
	}
	if !got[0].Timestamp.Equal(ts) {
		t.Fatalf("unexpected ts: %s", got[0].Timestamp)
	}
}
