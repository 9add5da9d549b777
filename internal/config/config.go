// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"

	"jobmate/coach-service/internal/enrollment"
)

// Config holds all runtime configuration for the coach service.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	AdminToken         string
	DefaultMode        enrollment.Mode // flag fallback when Redis has no value
	SweepIntervalHours int             // how often the orphan sweep fires
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN is required")
	}

	defaultMode := enrollment.ModeLegacyDuplication
	if s := os.Getenv("ENROLLMENT_MODE_DEFAULT"); s != "" {
		m, err := enrollment.ParseMode(s)
		if err != nil {
			return nil, fmt.Errorf("ENROLLMENT_MODE_DEFAULT: %w", err)
		}
		defaultMode = m
	}

	interval := 24
	if s := os.Getenv("SWEEP_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SWEEP_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	port := os.Getenv("COACH_PORT")
	if port == "" {
		port = "8083"
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		AdminToken:         adminToken,
		DefaultMode:        defaultMode,
		SweepIntervalHours: interval,
	}, nil
}
