package config

import (
	"os"
	"strconv"
	"time"
)

// IdentityNamespace is the fixed constant folded into the canonical identity
// hash. Changing it silently splits every external identity in two, so it is
// compiled in rather than configurable.
const IdentityNamespace = "coursegate-identity-v1"

// PassingScore is the process-wide assessment passing threshold (percent).
const PassingScore = 70

// Gateway holds payment gateway credentials (basic auth key/secret pair).
type Gateway struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

// Configured reports whether gateway credentials were supplied. Order creation
// without credentials is a configuration error, not a silent no-op.
func (g Gateway) Configured() bool {
	return g.KeyID != "" && g.KeySecret != ""
}

// Redis holds the optional question-cache connection settings.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config is the immutable process configuration. It is built once in main and
// passed into components at construction; nothing reads ambient state later.
type Config struct {
	Addr             string
	DatabaseURL      string
	Redis            Redis
	Gateway          Gateway
	WebhookSecret    string
	JWTSigningKey    string
	QuestionCacheTTL time.Duration
	ShutdownTimeout  time.Duration
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("COURSEGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	cacheTTL := 5 * time.Minute
	if raw := os.Getenv("QUESTION_CACHE_TTL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cacheTTL = time.Duration(secs) * time.Second
		}
	}

	gatewayURL := os.Getenv("PAYMENT_GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = "https://api.razorpay.com/v1"
	}

	return Config{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Gateway: Gateway{
			KeyID:     os.Getenv("PAYMENT_GATEWAY_KEY_ID"),
			KeySecret: os.Getenv("PAYMENT_GATEWAY_KEY_SECRET"),
			BaseURL:   gatewayURL,
		},
		WebhookSecret:    os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		JWTSigningKey:    os.Getenv("JWT_SIGNING_KEY"),
		QuestionCacheTTL: cacheTTL,
		ShutdownTimeout:  10 * time.Second,
	}
}
