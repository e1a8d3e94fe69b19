package baseline

import (
	"fmt"
	"math"
)

// Params holds the x and y of "high x of y" for one day type.
type Params struct {
	X int
	Y int
}

// Config drives every stage of the calculation.
type Config struct {
	UnitNumPerDay          int
	ExcludedCriterionRatio float64
	MaxGoBackDays          int
	// ExcludeDRInvokedDays makes the y window skip past days with a DR invocation.
	ExcludeDRInvokedDays bool
	Weekday              Params
	Holiday              Params
}

// ParamsFor returns x/y for a day type.
func (c Config) ParamsFor(dayType DayType) (Params, error) {
	switch dayType {
	case DayTypeWeekday:
		return c.Weekday, nil
	case DayTypeHoliday:
		return c.Holiday, nil
	default:
		return Params{}, ErrInvalidDayType
	}
}

// Validate checks value ranges. The first offending key is reported.
func (c Config) Validate() error {
	if c.UnitNumPerDay <= 0 {
		return &ConfigError{Key: "unit_num_per_day", Reason: "must be a positive integer"}
	}
	ratio := c.ExcludedCriterionRatio
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return &ConfigError{Key: "excluded_criterion_ratio", Reason: "must be within [0, 1]"}
	}
	if c.MaxGoBackDays <= 0 {
		return &ConfigError{Key: "max_go_back_days", Reason: "must be a positive integer"}
	}
	for _, dayType := range DayTypes {
		params, _ := c.ParamsFor(dayType)
		if err := params.validate(string(dayType), c.MaxGoBackDays); err != nil {
			return err
		}
	}
	return nil
}

func (p Params) validate(section string, maxGoBackDays int) error {
	if p.X <= 0 {
		return &ConfigError{Key: section + ".x", Reason: "must be a positive integer"}
	}
	if p.Y < p.X {
		return &ConfigError{Key: section + ".y", Reason: fmt.Sprintf("must be >= x (%d)", p.X)}
	}
	if p.Y > maxGoBackDays {
		return &ConfigError{Key: section + ".y", Reason: fmt.Sprintf("must be <= max_go_back_days (%d)", maxGoBackDays)}
	}
	return nil
}
