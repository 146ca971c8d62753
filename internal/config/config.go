package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	HTTPAddr string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Model tuning file; empty means built-in defaults
	TuningPath string

	// Simulation
	SimTrials     int
	SimWorkers    int
	SimRatePerMin int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr: envStr("HTTP_ADDR", ":8080"),

		DatabaseDriver: envStr("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    envStr("DATABASE_URL", "host=localhost port=5432 user=postgres dbname=season_predictor sslmode=disable"),

		TuningPath: envStr("TUNING_PATH", ""),

		SimTrials:     envInt("SIM_TRIALS", 10000),
		SimWorkers:    envInt("SIM_WORKERS", 1),
		SimRatePerMin: envInt("SIM_RATE_PER_MIN", 30),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
