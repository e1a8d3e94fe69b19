package baseline

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"valid", func(*Config) {}, ""},
		{"unit num", func(c *Config) { c.UnitNumPerDay = -1 }, "unit_num_per_day"},
		{"ratio above one", func(c *Config) { c.ExcludedCriterionRatio = 1.5 }, "excluded_criterion_ratio"},
		{"ratio negative", func(c *Config) { c.ExcludedCriterionRatio = -0.1 }, "excluded_criterion_ratio"},
		{"go back days", func(c *Config) { c.MaxGoBackDays = 0 }, "max_go_back_days"},
		{"weekday x", func(c *Config) { c.Weekday.X = 0 }, "weekday.x"},
		{"weekday y below x", func(c *Config) { c.Weekday = Params{X: 4, Y: 3} }, "weekday.y"},
		{"holiday y beyond history", func(c *Config) { c.Holiday = Params{X: 1, Y: 11} }, "holiday.y"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantKey == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Key != tc.wantKey {
				t.Fatalf("expected key %s, got %s", tc.wantKey, cfgErr.Key)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig in chain")
			}
		})
	}
}

func TestParamsFor_InvalidDayType(t *testing.T) {
	if _, err := testConfig().ParamsFor(DayType("weekend")); !errors.Is(err, ErrInvalidDayType) {
		t.Fatalf("expected ErrInvalidDayType, got %v", err)
	}
	if _, err := ParseDayType("holiday"); err != nil {
		t.Fatalf("parse holiday: %v", err)
	}
}

func TestParseError_Chain(t *testing.T) {
	cause := errors.New("bad layout")
	err := &ParseError{Source: "demand.csv", Row: 3, Field: "datetime", Value: "x", Err: cause}
	if !errors.Is(err, ErrParse) || !errors.Is(err, cause) {
		t.Fatalf("expected both ErrParse and cause in chain")
	}
	if err.Error() == "" {
		t.Fatalf("expected message")
	}
}
