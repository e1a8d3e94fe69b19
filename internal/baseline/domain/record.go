package baseline

import "time"

// DemandRecord is one intraday unit of source demand.
// A nil Demand marks a missing or non-numeric value.
type DemandRecord struct {
	Timestamp   time.Time
	Demand      *float64
	InvokedUnit int
}

// Validate checks invoked_unit is a 0/1 flag.
func (r DemandRecord) Validate() error {
	if r.InvokedUnit != 0 && r.InvokedUnit != 1 {
		return ErrInvalidInvokedUnit
	}
	return nil
}

// ClassifiedRecord carries the calendar classification of a DemandRecord.
type ClassifiedRecord struct {
	DemandRecord
	Date            time.Time
	DayOfWeek       Weekday
	IsPublicHoliday bool
	IsWeekday       bool
}

// DayType returns the partition of the record.
func (r ClassifiedRecord) DayType() DayType {
	if r.IsWeekday {
		return DayTypeWeekday
	}
	return DayTypeHoliday
}

// EnrichedRecord adds per-date DR aggregates and the cyclic unit index.
type EnrichedRecord struct {
	ClassifiedRecord
	UnitNum              int
	DRInvokedDay         int
	MeanDailyDemandForDR *float64
}

// LaggedRecord adds whole-day lags. Index k-1 holds the value k days ago;
// nil means no row exists that far back in the partition.
type LaggedRecord struct {
	EnrichedRecord
	DemandDaysAgo       []*float64
	DRInvokedDayDaysAgo []*int
}

// DemandAgo returns demand k days ago, k starting at 1.
func (r LaggedRecord) DemandAgo(k int) (float64, bool) {
	if k < 1 || k > len(r.DemandDaysAgo) || r.DemandDaysAgo[k-1] == nil {
		return 0, false
	}
	return *r.DemandDaysAgo[k-1], true
}

// DRInvokedDayAgo returns dr_invoked_day k days ago, k starting at 1.
func (r LaggedRecord) DRInvokedDayAgo(k int) (int, bool) {
	if k < 1 || k > len(r.DRInvokedDayDaysAgo) || r.DRInvokedDayDaysAgo[k-1] == nil {
		return 0, false
	}
	return *r.DRInvokedDayDaysAgo[k-1], true
}

// ResultRecord is the final emitted row.
type ResultRecord struct {
	LaggedRecord
	DayType      DayType
	MeanHighXOfY *float64
}

// HasResult reports whether mean_high_x_of_y is defined.
func (r ResultRecord) HasResult() bool { return r.MeanHighXOfY != nil }

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to a copy of v.
func Int(v int) *int { return &v }
