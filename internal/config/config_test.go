package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	baseline "highxofy/internal/baseline/domain"
)

const sampleTOML = `
unit_num_per_day = 48
excluded_criterion_ratio = 0.25
max_go_back_days = 30

[weekday]
x = 4
y = 5

[holiday]
x = 2
y = 3
`

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML), FormatTOML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := baseline.Config{
		UnitNumPerDay:          48,
		ExcludedCriterionRatio: 0.25,
		MaxGoBackDays:          30,
		Weekday:                baseline.Params{X: 4, Y: 5},
		Holiday:                baseline.Params{X: 2, Y: 3},
	}
	if cfg != want {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
unit_num_per_day: 24
excluded_criterion_ratio: 0.5
max_go_back_days: 10
exclude_dr_invoked_days: true
weekday: {x: 3, y: 4}
holiday: {x: 1, y: 2}
`)
	cfg, err := Parse(data, FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.UnitNumPerDay != 24 || !cfg.ExcludeDRInvokedDays || cfg.Weekday.Y != 4 || cfg.Holiday.X != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseMissingKeys(t *testing.T) {
	cases := []struct {
		name string
		data string
		key  string
	}{
		{"unit", "excluded_criterion_ratio = 0.1\nmax_go_back_days = 5\n", "unit_num_per_day"},
		{"ratio", "unit_num_per_day = 1\nmax_go_back_days = 5\n", "excluded_criterion_ratio"},
		{"section", "unit_num_per_day = 1\nexcluded_criterion_ratio = 0\nmax_go_back_days = 5\n[holiday]\nx = 1\ny = 1\n", "weekday"},
		{"y", "unit_num_per_day = 1\nexcluded_criterion_ratio = 0\nmax_go_back_days = 5\n[weekday]\nx = 1\n[holiday]\nx = 1\ny = 1\n", "weekday.y"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), FormatTOML)
			var cfgErr *baseline.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Key != tc.key {
				t.Fatalf("expected key %s, got %s", tc.key, cfgErr.Key)
			}
		})
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	data := []byte("unit_num_per_day = 48\nexcluded_criterion_ratio = 0.25\nmax_go_back_days = 30\n[weekday]\nx = 6\ny = 5\n[holiday]\nx = 2\ny = 3\n")
	if _, err := Parse(data, FormatTOML); !errors.Is(err, baseline.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(sampleTOML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Weekday.X != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := Load(filepath.Join(dir, "config.json")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("SUBJECT_ID", "site-9")
	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if env.SubjectID != "site-9" {
		t.Fatalf("expected subject from env, got %s", env.SubjectID)
	}
	if env.ConfigPath == "" {
		t.Fatalf("expected default config path")
	}
	loc, err := Env{Timezone: "Asia/Tokyo"}.Location()
	if err != nil || loc.String() != "Asia/Tokyo" {
		t.Fatalf("unexpected location %v (%v)", loc, err)
	}
}
