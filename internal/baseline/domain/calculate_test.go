package baseline

import (
	"errors"
	"testing"
	"time"
)

func TestCalculate_EveryRecordOnceWithItsDayType(t *testing.T) {
	cfg := Config{
		UnitNumPerDay:          48,
		ExcludedCriterionRatio: 0.25,
		MaxGoBackDays:          10,
		Weekday:                Params{X: 4, Y: 5},
		Holiday:                Params{X: 2, Y: 3},
	}
	start := time.Date(2024, time.April, 22, 0, 0, 0, 0, time.UTC)
	records := halfHourly(start, 21*48, func(i int) float64 { return float64(100 + i%48) })
	holidays := NewHolidaySet(time.Date(2024, time.April, 29, 0, 0, 0, 0, time.UTC))

	results, err := Calculate(records, holidays, cfg)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(results) != len(records) {
		t.Fatalf("expected %d results, got %d", len(records), len(results))
	}
	seen := make(map[time.Time]int, len(results))
	for _, r := range results {
		seen[r.Timestamp]++
		if r.DayType != r.ClassifiedRecord.DayType() {
			t.Fatalf("record %s tagged %s but classified %s", r.Timestamp, r.DayType, r.ClassifiedRecord.DayType())
		}
		if len(r.DemandDaysAgo) != cfg.MaxGoBackDays {
			t.Fatalf("expected %d lag columns, got %d", cfg.MaxGoBackDays, len(r.DemandDaysAgo))
		}
	}
	for _, rec := range records {
		if seen[rec.Timestamp] != 1 {
			t.Fatalf("record %s appears %d times", rec.Timestamp, seen[rec.Timestamp])
		}
	}
}

func TestCalculate_FirstYDaysAreUndefined(t *testing.T) {
	cfg := Config{
		UnitNumPerDay:          2,
		ExcludedCriterionRatio: 0,
		MaxGoBackDays:          3,
		Weekday:                Params{X: 1, Y: 2},
		Holiday:                Params{X: 1, Y: 1},
	}
	// Monday to Friday, two units per day.
	start := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	records := make([]DemandRecord, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, DemandRecord{
			Timestamp: start.Add(time.Duration(i) * 12 * time.Hour),
			Demand:    Float(float64(i + 1)),
		})
	}
	results, err := Calculate(records, nil, cfg)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	for i, r := range results {
		if i < 4 && r.HasResult() {
			t.Fatalf("row %d: expected undefined before y days of history", i)
		}
		if i >= 4 && !r.HasResult() {
			t.Fatalf("row %d: expected defined result", i)
		}
	}
	// Wednesday unit 1: history is Tuesday (3) and Monday (1); top 1 is 3.
	if got := *results[4].MeanHighXOfY; got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestCalculate_RejectsInvalidInput(t *testing.T) {
	cfg := testConfig()
	records := []DemandRecord{{Timestamp: time.Now(), Demand: Float(1), InvokedUnit: 2}}
	if _, err := Calculate(records, nil, cfg); !errors.Is(err, ErrInvalidInvokedUnit) {
		t.Fatalf("expected ErrInvalidInvokedUnit, got %v", err)
	}

	cfg.UnitNumPerDay = 0
	_, err := Calculate(nil, nil, cfg)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "unit_num_per_day" {
		t.Fatalf("expected unit_num_per_day config error, got %v", err)
	}
}

func TestSortRecords_StableByTimestamp(t *testing.T) {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	in := []DemandRecord{
		{Timestamp: base.Add(time.Hour), Demand: Float(2)},
		{Timestamp: base, Demand: Float(1)},
		{Timestamp: base.Add(time.Hour), Demand: Float(3)},
	}
	out := SortRecords(in)
	if *out[0].Demand != 1 || *out[1].Demand != 2 || *out[2].Demand != 3 {
		t.Fatalf("unexpected order: %v %v %v", *out[0].Demand, *out[1].Demand, *out[2].Demand)
	}
	if *in[0].Demand != 2 {
		t.Fatalf("expected input slice to be untouched")
	}
}

func TestSummarize_CountsAndLatestProfile(t *testing.T) {
	cfg := Config{
		UnitNumPerDay:          2,
		ExcludedCriterionRatio: 0,
		MaxGoBackDays:          2,
		Weekday:                Params{X: 1, Y: 1},
		Holiday:                Params{X: 1, Y: 1},
	}
	start := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	records := make([]DemandRecord, 0, 6)
	for i := 0; i < 6; i++ {
		records = append(records, DemandRecord{
			Timestamp: start.Add(time.Duration(i) * 12 * time.Hour),
			Demand:    Float(float64(i)),
		})
	}
	results, err := Calculate(records, nil, cfg)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	summary := Summarize(results, cfg)
	weekday, ok := summary.Partition(DayTypeWeekday)
	if !ok {
		t.Fatalf("expected weekday partition")
	}
	if weekday.Records != 6 || weekday.Defined != 4 || weekday.Undefined != 2 {
		t.Fatalf("unexpected counts: %+v", weekday)
	}
	if len(weekday.Profile) != 2 {
		t.Fatalf("expected 2 profile points, got %d", len(weekday.Profile))
	}
	if weekday.Profile[0].Baseline == nil || *weekday.Profile[0].Baseline != 2 {
		t.Fatalf("expected unit 1 baseline 2, got %v", weekday.Profile[0].Baseline)
	}
	holiday, _ := summary.Partition(DayTypeHoliday)
	if holiday.Records != 0 {
		t.Fatalf("expected empty holiday partition, got %d", holiday.Records)
	}
}

func TestSplit_SortsBeforeFeatures(t *testing.T) {
	cfg := Config{
		UnitNumPerDay:          2,
		ExcludedCriterionRatio: 0,
		MaxGoBackDays:          1,
		Weekday:                Params{X: 1, Y: 1},
		Holiday:                Params{X: 1, Y: 1},
	}
	monday := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	records := []DemandRecord{
		{Timestamp: monday.Add(12 * time.Hour), Demand: Float(2)},
		{Timestamp: monday, Demand: Float(1)},
	}
	parts, err := Split(records, nil, cfg)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	weekday := parts[DayTypeWeekday]
	if len(weekday) != 2 || !weekday[0].Timestamp.Equal(monday) || weekday[0].UnitNum != 1 || weekday[1].UnitNum != 2 {
		t.Fatalf("unexpected weekday partition: %+v", weekday)
	}
	if !records[0].Timestamp.After(records[1].Timestamp) {
		t.Fatalf("input slice was reordered")
	}

	merged := Merge([]ResultRecord{{DayType: DayTypeWeekday}}, nil, []ResultRecord{{DayType: DayTypeHoliday}})
	if len(merged) != 2 || merged[0].DayType != DayTypeWeekday || merged[1].DayType != DayTypeHoliday {
		t.Fatalf("unexpected merge: %+v", merged)
	}
}
