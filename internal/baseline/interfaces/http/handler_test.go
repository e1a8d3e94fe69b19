package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"highxofy/internal/audit"
	"highxofy/internal/auth"
	"highxofy/internal/baseline/application"
	baseline "highxofy/internal/baseline/domain"
	"highxofy/internal/baseline/infrastructure/memory"
)

type stubSource struct {
	records  []baseline.DemandRecord
	holidays baseline.HolidaySet
}

func (s stubSource) LoadDemand(ctx context.Context, from, to time.Time) ([]baseline.DemandRecord, error) {
	return s.records, nil
}

func (s stubSource) LoadHolidays(ctx context.Context) (baseline.HolidaySet, error) {
	return s.holidays, nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (a *recordingAudit) Log(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func testConfig() baseline.Config {
	return baseline.Config{
		UnitNumPerDay:          1,
		ExcludedCriterionRatio: 0.25,
		MaxGoBackDays:          5,
		Weekday:                baseline.Params{X: 1, Y: 2},
		Holiday:                baseline.Params{X: 1, Y: 1},
	}
}

// Monday 2024-01-01 through Sunday 2024-01-14, one unit per day.
func twoWeeks() []baseline.DemandRecord {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	records := make([]baseline.DemandRecord, 0, 14)
	for i := 0; i < 14; i++ {
		records = append(records, baseline.DemandRecord{
			Timestamp: start.AddDate(0, 0, i),
			Demand:    baseline.Float(float64(10 + i)),
		})
	}
	return records
}

func newTestHandler(t *testing.T, opts ...Option) (*Handler, *memory.ResultRepository) {
	t.Helper()
	cfg := testConfig()
	repo := memory.NewResultRepository()
	calculator, err := application.NewCalculator(cfg)
	if err != nil {
		t.Fatalf("calculator: %v", err)
	}
	factory := func(subjectID string) (*application.Service, error) {
		return application.NewService(calculator, stubSource{records: twoWeeks(), holidays: baseline.NewHolidaySet()}, repo)
	}
	handler, err := NewHandler(factory, repo, cfg, append([]Option{WithDefaultSubject("site-1")}, opts...)...)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return handler, repo
}

func TestCalculateThenList(t *testing.T) {
	auditLog := &recordingAudit{}
	handler, repo := newTestHandler(t, WithAuditLogger(auditLog))

	req := httptest.NewRequest(http.MethodPost, calculateURL, strings.NewReader(`{"subject_id":"site-1"}`))
	claims := &auth.Claims{Role: string(auth.RoleAdmin)}
	claims.Subject = "alice"
	req = req.WithContext(auth.WithClaims(req.Context(), claims))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var calc calculateResponse
	if err := json.NewDecoder(resp.Body).Decode(&calc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if calc.Records != 14 || !calc.Saved {
		t.Fatalf("unexpected calculate response: %+v", calc)
	}
	if len(calc.Partitions) != 2 || calc.Partitions[0].DayType != "weekday" || calc.Partitions[0].Records != 10 {
		t.Fatalf("unexpected partitions: %+v", calc.Partitions)
	}

	if len(auditLog.entries) != 1 || auditLog.entries[0].Action != "baseline.calculate" || auditLog.entries[0].Actor != "alice" {
		t.Fatalf("unexpected audit entries: %+v", auditLog.entries)
	}

	stored, err := repo.ListResults(context.Background(), "site-1", baseline.ResultQuery{})
	if err != nil || len(stored) != 14 {
		t.Fatalf("expected 14 stored results, got %d (%v)", len(stored), err)
	}

	req = httptest.NewRequest(http.MethodGet, basePath+"?day_type=holiday&limit=2", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.SubjectID != "site-1" || list.Count != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	for _, r := range list.Results {
		if r.DayType != "holiday" {
			t.Fatalf("expected holiday rows, got %s", r.DayType)
		}
	}
}

func TestListRejectsBadQuery(t *testing.T) {
	handler, _ := newTestHandler(t)
	cases := []string{
		basePath + "?from=yesterday",
		basePath + "?day_type=weekend",
		basePath + "?limit=0",
	}
	for _, target := range cases {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, resp.Code)
		}
	}
}

func TestListEnforcesTokenSubject(t *testing.T) {
	handler, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, basePath+"?subject_id=site-2", nil)
	ctx := auth.WithClaims(req.Context(), &auth.Claims{SubjectID: "site-1", Role: string(auth.RoleViewer)})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestExportXLSX(t *testing.T) {
	handler, repo := newTestHandler(t)
	result := baseline.ResultRecord{DayType: baseline.DayTypeWeekday, MeanHighXOfY: baseline.Float(12)}
	result.Timestamp = time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	if err := repo.SaveResults(context.Background(), "site-1", []baseline.ResultRecord{result}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, exportPath, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), "baselines-site-1.xlsx") {
		t.Fatalf("unexpected disposition: %s", resp.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected zip container")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, calculateURL, nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestCalculateUnknownSubject(t *testing.T) {
	cfg := testConfig()
	repo := memory.NewResultRepository()
	calculator, err := application.NewCalculator(cfg)
	if err != nil {
		t.Fatalf("calculator: %v", err)
	}
	factory := func(subjectID string) (*application.Service, error) {
		if subjectID != "site-1" {
			return nil, fmt.Errorf("%w: %q", baseline.ErrUnknownSubject, subjectID)
		}
		return application.NewService(calculator, stubSource{records: twoWeeks()}, repo)
	}
	handler, err := NewHandler(factory, repo, cfg, WithDefaultSubject("site-1"))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, calculateURL, strings.NewReader(`{"subject_id":"site-2"}`)))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	stored, err := repo.ListResults(context.Background(), "site-2", baseline.ResultQuery{})
	if err != nil || len(stored) != 0 {
		t.Fatalf("expected nothing stored for site-2, got %d (%v)", len(stored), err)
	}
}
