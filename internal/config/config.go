package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	DBMaxConns int
	DBMinConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret   string
	SessionTTLHours int

	OTLPEndpoint string

	RateLimitPerMinute int
	MaxBodyBytes       int64
}

// DefaultSessionSecret signs cookies when SESSION_SECRET is unset. Validate
// refuses it in prod.
const DefaultSessionSecret = "dev-session-secret-change-me"

// DefaultMaxBodyBytes fits a note of 10 000 characters of up to 4 bytes each,
// with form encoding tripling every byte.
const DefaultMaxBodyBytes = 128 << 10

var ErrDefaultSessionSecret = errors.New("SESSION_SECRET must be set in prod")

func Load() Config {
	// a missing .env is fine, the process env wins anyway
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		DBMaxConns: getEnvInt("DB_MAX_CONNS", 5),
		DBMinConns: getEnvInt("DB_MIN_CONNS", 0),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SessionSecret:   getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 720),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", DefaultMaxBodyBytes)),
	}
}

// Validate rejects settings that are only acceptable outside prod.
func (c Config) Validate() error {
	if c.SecureCookies() && (c.SessionSecret == "" || c.SessionSecret == DefaultSessionSecret) {
		return ErrDefaultSessionSecret
	}

	return nil
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// cookies only go out with Secure in prod, local dev runs over plain http
func (c Config) SecureCookies() bool {
	return c.Env == "prod"
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "notehub")
	pass := getEnv("DB_PASSWORD", "notehub")
	name := getEnv("DB_NAME", "notehub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using fallback", "key", key, "value", v, "err", err)
			return fallback
		}

		return num
	}
	return fallback
}
