package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Required values are enforced at startup so a
// misconfigured deployment fails fast instead of at the first request.
type Config struct {
	Env              string        // application environment (e.g. "dev", "prod")
	Port             string        // HTTP port to listen on
	DBUser           string        // database username
	DBPass           string        // database password (optional)
	DBHost           string        // database host address
	DBPort           string        // database port number
	DBName           string        // database name
	JWTSecret        string        // secret used to verify JWTs
	ScheduleCacheTTL time.Duration // backstop TTL for cached daily schedules
	HoldStore        string        // reservation hold backend: "mysql" or "memory"
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		ScheduleCacheTTL: duration("SCHEDULE_CACHE_TTL", time.Hour),
		HoldStore:        getenv("HOLD_STORE", "mysql"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or the fallback when unset.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// duration parses the variable as a Go duration ("30m", "1h"). A bare number
// is treated as seconds for compatibility with older deploy scripts.
func duration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Fatalf("invalid duration for %s: %q", key, s)
	return 0
}
