package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Env holds process settings read from the environment.
type Env struct {
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	HTTPAddr        string `envconfig:"HTTP_ADDR" default:":8080"`
	AuthJWTSecret   string `envconfig:"AUTH_JWT_SECRET"`
	SubjectID       string `envconfig:"SUBJECT_ID" default:"default"`
	ConfigPath      string `envconfig:"HIGHXOFY_CONFIG" default:"configs/config.toml"`
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`
	Timezone        string `envconfig:"HIGHXOFY_TIMEZONE" default:"UTC"`
	WebhookURL      string `envconfig:"BASELINE_WEBHOOK_URL"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, err
	}
	return env, nil
}

// Location resolves Timezone.
func (e Env) Location() (*time.Location, error) {
	if e.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(e.Timezone)
}
