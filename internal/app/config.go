package app

import (
	"time"

	"github.com/yungbote/assignment-backend/internal/data/db"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/platform/envutil"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	LogMode string
	Port    string
	DB      db.Config

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Timezone       string
	RequestTimeout time.Duration
	ShutdownGrace  time.Duration
	AllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string
	BatchLockTTL  time.Duration

	MetricsAddr string
	Otel        observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode: envutil.String("LOG_MODE", "development"),
		Port:    envutil.String("PORT", "8080"),
		DB:      db.ConfigFromEnv(),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),

		Timezone:       envutil.String("APP_TIMEZONE", "UTC"),
		RequestTimeout: envutil.Duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownGrace:  envutil.Duration("SHUTDOWN_GRACE", 10*time.Second),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		RedisChannel:  envutil.String("REDIS_CHANNEL", "assignments-sse"),
		BatchLockTTL:  envutil.Duration("BATCH_LOCK_TTL", 10*time.Second),

		MetricsAddr: envutil.String("METRICS_ADDR", ""),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "assignment-backend"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
	}
	if log != nil && cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg
}
