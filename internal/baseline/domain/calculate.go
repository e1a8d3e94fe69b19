package baseline

import (
	"fmt"
	"sort"
	"time"
)

// SortRecords orders records by timestamp ascending. Equal timestamps keep
// their input order.
func SortRecords(records []DemandRecord) []DemandRecord {
	out := append([]DemandRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Prepare runs the calendar join and feature construction over the full sequence.
func Prepare(records []DemandRecord, holidays HolidaySet, cfg Config) []EnrichedRecord {
	return BuildFeatures(Classify(records, holidays), cfg.UnitNumPerDay)
}

// CalculatePartition lags and selects one day type partition.
func CalculatePartition(records []EnrichedRecord, cfg Config, dayType DayType) ([]ResultRecord, error) {
	selector, err := NewSelector(cfg, dayType)
	if err != nil {
		return nil, err
	}
	lagged := GenerateLags(records, cfg.UnitNumPerDay, cfg.MaxGoBackDays)
	return selector.Select(lagged), nil
}

// ValidateRecords rejects the first record with an invalid invoked_unit.
func ValidateRecords(records []DemandRecord) error {
	for i, record := range records {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("record %d at %s: %w", i, record.Timestamp.Format(time.RFC3339), err)
		}
	}
	return nil
}

// Split validates and sorts records, runs the calendar join and feature
// construction over the full sequence and partitions the result by day type.
func Split(records []DemandRecord, holidays HolidaySet, cfg Config) (map[DayType][]EnrichedRecord, error) {
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	return Partition(Prepare(SortRecords(records), holidays, cfg)), nil
}

// Merge concatenates partition outputs given in DayTypes order.
func Merge(outputs ...[]ResultRecord) []ResultRecord {
	n := 0
	for _, out := range outputs {
		n += len(out)
	}
	merged := make([]ResultRecord, 0, n)
	for _, out := range outputs {
		merged = append(merged, out...)
	}
	return merged
}

// Calculate is the sequential form of the pipeline the application
// calculator runs concurrently. Weekday results come first, then holiday results.
func Calculate(records []DemandRecord, holidays HolidaySet, cfg Config) ([]ResultRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parts, err := Split(records, holidays, cfg)
	if err != nil {
		return nil, err
	}
	outputs := make([][]ResultRecord, 0, len(DayTypes))
	for _, dayType := range DayTypes {
		out, err := CalculatePartition(parts[dayType], cfg, dayType)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return Merge(outputs...), nil
}
