package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	JWTSigningKey string
	NewsAPIKey    string
	KafkaBrokers  []string
	AuditTopic    string
}

// SessionTTL bounds how long a login session (and its tokens) stays valid.
var SessionTTL = 12 * time.Hour

// NewsCacheTTL bounds how stale the cached news feed may get.
var NewsCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("VIMS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
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

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "vims.audit"
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSigningKey: jwtSigningKey,
		NewsAPIKey:    os.Getenv("NEWS_API_KEY"),
		KafkaBrokers:  brokers,
		AuditTopic:    topic,
	}
}
