// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures the service configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	JWTSigningKey string

	FetchDebounce   time.Duration
	DefaultPageSize int
	SessionTTL      time.Duration

	ContactAPIURL string
	ContactAPIKey string
	OrgAPIURL     string
	OrgAPIKey     string
	AIAPIURL      string
	AIAPIKey      string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("CONFCRM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    brokers,
		JWTSigningKey:   jwtSigningKey,
		FetchDebounce:   durationEnv("FETCH_DEBOUNCE", 300*time.Millisecond),
		DefaultPageSize: intEnv("DEFAULT_PAGE_SIZE", 50),
		SessionTTL:      durationEnv("SESSION_TTL", 24*time.Hour),
		ContactAPIURL:   os.Getenv("CONTACT_API_URL"),
		ContactAPIKey:   os.Getenv("CONTACT_API_KEY"),
		OrgAPIURL:       os.Getenv("ORG_API_URL"),
		OrgAPIKey:       os.Getenv("ORG_API_KEY"),
		AIAPIURL:        os.Getenv("AI_API_URL"),
		AIAPIKey:        os.Getenv("AI_API_KEY"),
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
