package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port    int
	DataDir string
	// MaxValidateRounds caps Monte Carlo rounds requested over HTTP.
	MaxValidateRounds int
	// DefaultValidateRounds is used when a request does not set rounds.
	DefaultValidateRounds int
}

func Load() *Config {
	port := 8081
	// Prefer PORT (Render, Fly.io, Railway, etc.) then RMG_PORT
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			port = v
		}
	} else if p := os.Getenv("RMG_PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			port = v
		}
	}
	dataDir := os.Getenv("RMG_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	maxRounds := 2_000_000
	if m := os.Getenv("RMG_MAX_VALIDATE_ROUNDS"); m != "" {
		if v, err := strconv.Atoi(m); err == nil && v > 0 {
			maxRounds = v
		}
	}
	defaultRounds := 200_000
	if d := os.Getenv("RMG_DEFAULT_VALIDATE_ROUNDS"); d != "" {
		if v, err := strconv.Atoi(d); err == nil && v > 0 {
			defaultRounds = v
		}
	}
	return &Config{
		Port:                  port,
		DataDir:               dataDir,
		MaxValidateRounds:     maxRounds,
		DefaultValidateRounds: defaultRounds,
	}
}
