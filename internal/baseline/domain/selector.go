package baseline

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Candidate is one same-unit historical observation.
type Candidate struct {
	DaysAgo int
	Demand  float64
}

// Selector computes mean_high_x_of_y for one day type partition.
type Selector struct {
	dayType   DayType
	params    Params
	ratio     float64
	excludeDR bool
}

// NewSelector builds a selector for the day type using its configured x/y.
func NewSelector(cfg Config, dayType DayType) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := cfg.ParamsFor(dayType)
	if err != nil {
		return nil, err
	}
	return &Selector{
		dayType:   dayType,
		params:    params,
		ratio:     cfg.ExcludedCriterionRatio,
		excludeDR: cfg.ExcludeDRInvokedDays,
	}, nil
}

// DayType returns the partition this selector serves.
func (s *Selector) DayType() DayType { return s.dayType }

// Params returns the x/y in use.
func (s *Selector) Params() Params { return s.params }

// Select emits one ResultRecord per input record, in input order.
func (s *Selector) Select(records []LaggedRecord) []ResultRecord {
	out := make([]ResultRecord, len(records))
	for i, record := range records {
		out[i] = ResultRecord{
			LaggedRecord: record,
			DayType:      s.dayType,
			MeanHighXOfY: s.MeanHighXOfY(record),
		}
	}
	return out
}

// MeanHighXOfY returns nil when history is shorter than y or nothing qualifies.
func (s *Selector) MeanHighXOfY(record LaggedRecord) *float64 {
	window, ok := s.Window(record)
	if !ok {
		return nil
	}
	return HighXOfY(window, s.params.X, s.ratio)
}

// Window collects the y most recent observations of the record's unit.
// ok is false when fewer than y observations exist. Missing demand values
// stay out of the window. With DR-day exclusion the walk continues past
// invoked days, up to the deepest lag available.
func (s *Selector) Window(record LaggedRecord) ([]Candidate, bool) {
	y := s.params.Y
	window := make([]Candidate, 0, y)
	if !s.excludeDR {
		for k := 1; k <= y; k++ {
			if _, exists := record.DRInvokedDayAgo(k); !exists {
				return nil, false
			}
			if demand, ok := record.DemandAgo(k); ok {
				window = append(window, Candidate{DaysAgo: k, Demand: demand})
			}
		}
		return window, true
	}

	for k := 1; k <= len(record.DRInvokedDayDaysAgo) && len(window) < y; k++ {
		invoked, exists := record.DRInvokedDayAgo(k)
		if !exists {
			break
		}
		if invoked != 0 {
			continue
		}
		if demand, ok := record.DemandAgo(k); ok {
			window = append(window, Candidate{DaysAgo: k, Demand: demand})
		}
	}
	if len(window) < y {
		return nil, false
	}
	return window, true
}

// HighXOfY averages the x largest candidates that reach ratio times the
// window mean. Equal demands prefer the nearer day. Fewer than x qualifying
// candidates are averaged as they are; none yields nil.
func HighXOfY(window []Candidate, x int, ratio float64) *float64 {
	selected := SelectHighX(window, x, ratio)
	if len(selected) == 0 {
		return nil
	}
	values := make([]float64, len(selected))
	for i, c := range selected {
		values[i] = c.Demand
	}
	return Float(floats.Sum(values) / float64(len(values)))
}

// SelectHighX returns the chosen candidates, largest first.
func SelectHighX(window []Candidate, x int, ratio float64) []Candidate {
	if len(window) == 0 || x <= 0 {
		return nil
	}
	values := make([]float64, len(window))
	for i, c := range window {
		values[i] = c.Demand
	}
	threshold := ratio * stat.Mean(values, nil)

	qualified := make([]Candidate, 0, len(window))
	for _, c := range window {
		if c.Demand >= threshold {
			qualified = append(qualified, c)
		}
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		if qualified[i].Demand != qualified[j].Demand {
			return qualified[i].Demand > qualified[j].Demand
		}
		return qualified[i].DaysAgo < qualified[j].DaysAgo
	})
	if len(qualified) > x {
		qualified = qualified[:x]
	}
	return qualified
}
