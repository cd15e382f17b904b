// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart applies pending goose migrations at boot. Defaults to true.
	MigrateOnStart bool

	// SessionTTL is how long a reservation session may sit idle before the
	// janitor abandons it. Defaults to 30m.
	SessionTTL time.Duration

	// SubmitTimeout bounds a single booking submission. Defaults to 15s.
	SubmitTimeout time.Duration

	Experience  FlowLimits
	Destination FlowLimits

	// BaseCurrency is the ISO 4217 code all prices are computed in.
	BaseCurrency string

	// CurrencyRatesFile and CatalogFile optionally replace the embedded tables.
	CurrencyRatesFile string
	CatalogFile       string

	// RedisURL enables submit idempotency keys when set.
	RedisURL string

	// NATSURL enables reservation event publishing when set.
	NATSURL string

	Mailer MailerConfig
}

// FlowLimits are the trip details bounds of one booking flow. Zero means unbounded.
type FlowLimits struct {
	MaxTripDays  int
	MaxGroupSize int
}

// MailerConfig selects the confirmation e-mail transport. An empty APIKey
// means e-mails are only logged.
type MailerConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is read first when present; variables
// already set in the environment win over it.
// Returns an error listing any required variables that are not set and any
// variables that could not be parsed.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: reading .env: %w", err)
	}

	p := &parser{}
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxBodyBytes:   int64(p.getInt("MAX_BODY_BYTES", 1<<20)),
		MigrateOnStart: p.getBool("MIGRATE_ON_START", true),
		SessionTTL:     p.getDuration("SESSION_TTL", 30*time.Minute),
		SubmitTimeout:  p.getDuration("SUBMIT_TIMEOUT", 15*time.Second),
		Experience: FlowLimits{
			MaxTripDays:  p.getInt("EXPERIENCE_MAX_TRIP_DAYS", 30),
			MaxGroupSize: p.getInt("EXPERIENCE_MAX_GROUP_SIZE", 20),
		},
		Destination: FlowLimits{
			MaxTripDays:  p.getInt("DESTINATION_MAX_TRIP_DAYS", 0),
			MaxGroupSize: p.getInt("DESTINATION_MAX_GROUP_SIZE", 0),
		},
		BaseCurrency:      strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		CurrencyRatesFile: getEnv("CURRENCY_RATES_FILE", ""),
		CatalogFile:       getEnv("CATALOG_FILE", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		NATSURL:           getEnv("NATS_URL", ""),
		Mailer: MailerConfig{
			APIKey:    getEnv("MAILERSEND_API_KEY", ""),
			FromEmail: getEnv("MAILER_FROM", ""),
			FromName:  getEnv("MAILER_FROM_NAME", "Tourbook"),
		},
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Mailer.APIKey != "" && cfg.Mailer.FromEmail == "" {
		missing = append(missing, "MAILER_FROM")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(p.malformed) > 0 {
		problems = append(problems, "malformed environment variables: "+strings.Join(p.malformed, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser collects the names of variables whose values do not parse.
type parser struct {
	malformed []string
}

func (p *parser) getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		p.malformed = append(p.malformed, key)
		return fallback
	}
	return i
}

func (p *parser) getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.malformed = append(p.malformed, key)
		return fallback
	}
	return b
}

func (p *parser) getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.malformed = append(p.malformed, key)
		return fallback
	}
	return d
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
