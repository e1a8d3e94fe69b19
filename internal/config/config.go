package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	baseline "highxofy/internal/baseline/domain"
)

// Format is a calculation config file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for unknown config file extensions.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

type paramsFile struct {
	X *int `toml:"x" yaml:"x"`
	Y *int `toml:"y" yaml:"y"`
}

type calculationFile struct {
	UnitNumPerDay          *int        `toml:"unit_num_per_day" yaml:"unit_num_per_day"`
	ExcludedCriterionRatio *float64    `toml:"excluded_criterion_ratio" yaml:"excluded_criterion_ratio"`
	MaxGoBackDays          *int        `toml:"max_go_back_days" yaml:"max_go_back_days"`
	ExcludeDRInvokedDays   bool        `toml:"exclude_dr_invoked_days" yaml:"exclude_dr_invoked_days"`
	Weekday                *paramsFile `toml:"weekday" yaml:"weekday"`
	Holiday                *paramsFile `toml:"holiday" yaml:"holiday"`
}

// FormatOf picks the format from a file extension. Paths without an
// extension are read as TOML.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads and validates a calculation config file.
func Load(path string) (baseline.Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return baseline.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return baseline.Config{}, err
	}
	return Parse(data, format)
}

// Parse decodes a calculation config. Every key except
// exclude_dr_invoked_days is required.
func Parse(data []byte, format Format) (baseline.Config, error) {
	var file calculationFile
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
			return baseline.Config{}, fmt.Errorf("config: decode toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return baseline.Config{}, fmt.Errorf("config: decode yaml: %w", err)
		}
	default:
		return baseline.Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	cfg, err := file.toConfig()
	if err != nil {
		return baseline.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return baseline.Config{}, err
	}
	return cfg, nil
}

func (f calculationFile) toConfig() (baseline.Config, error) {
	switch {
	case f.UnitNumPerDay == nil:
		return baseline.Config{}, baseline.MissingKey("unit_num_per_day")
	case f.ExcludedCriterionRatio == nil:
		return baseline.Config{}, baseline.MissingKey("excluded_criterion_ratio")
	case f.MaxGoBackDays == nil:
		return baseline.Config{}, baseline.MissingKey("max_go_back_days")
	}
	weekday, err := f.Weekday.toParams(baseline.DayTypeWeekday)
	if err != nil {
		return baseline.Config{}, err
	}
	holiday, err := f.Holiday.toParams(baseline.DayTypeHoliday)
	if err != nil {
		return baseline.Config{}, err
	}
	return baseline.Config{
		UnitNumPerDay:          *f.UnitNumPerDay,
		ExcludedCriterionRatio: *f.ExcludedCriterionRatio,
		MaxGoBackDays:          *f.MaxGoBackDays,
		ExcludeDRInvokedDays:   f.ExcludeDRInvokedDays,
		Weekday:                weekday,
		Holiday:                holiday,
	}, nil
}

func (p *paramsFile) toParams(dayType baseline.DayType) (baseline.Params, error) {
	section := string(dayType)
	if p == nil {
		return baseline.Params{}, baseline.MissingKey(section)
	}
	if p.X == nil {
		return baseline.Params{}, baseline.MissingKey(section + ".x")
	}
	if p.Y == nil {
		return baseline.Params{}, baseline.MissingKey(section + ".y")
	}
	return baseline.Params{X: *p.X, Y: *p.Y}, nil
}
