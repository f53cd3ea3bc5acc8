package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/SeakMengs/EventHub/internal/env"
)

type Config struct {
	Port         string
	ENV          string
	FRONTEND_URL string
	DB           DatabaseConfig
	RateLimiter  RateLimiterConfig
	Mail         MailConfig
	Auth         AuthConfig
	Minio        MinioConfig
	RabbitMQ     RabbitMQConfig
	Redis        RedisConfig
	Certificate  CertificateConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type AuthConfig struct {
	JWT_SECRET string
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type MailConfig struct {
	// Either "sendgrid" or "smtp"
	DRIVER     string
	SEND_GRID  SendGridConfig
	SMTP       SMTPConfig
	FROM_EMAIL string
	FROM_NAME  string
}

type SendGridConfig struct {
	API_KEY string
}

type SMTPConfig struct {
	HOST     string
	PORT     int
	USERNAME string
	PASSWORD string
}

type MinioConfig struct {
	// minio or memory, memory keeps objects in process and is meant for local development
	DRIVER     string
	ENDPOINT   string
	ACCESS_KEY string
	SECRET_KEY string
	USE_SSL    bool
	BUCKET     string
}

type RabbitMQConfig struct {
	HOST     string
	PORT     string
	USERNAME string
	PASSWORD string
	// Number of concurrent workers per consumer
	WORKERS int
}

// Redis caches presigned storage urls. An empty ADDR disables it.
type RedisConfig struct {
	ADDR          string
	PASSWORD      string
	DB            int
	URL_CACHE_TTL time.Duration
}

type CertificateConfig struct {
	FONT_METADATA_PATH string
	LOCALE             string
	OUTPUT_FORMAT      string
	PIXEL_RATIO        float64
	MAX_WORKERS        int
	EMBED_QR_CODE      bool
	// Formatted with the certificate number, e.g. https://eventhub.id/verify/%s
	VERIFY_URL_PATTERN string
	NUMBER_PREFIX      string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func (r RabbitMQConfig) GetConnectionString() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.USERNAME, r.PASSWORD, r.HOST, r.PORT)
}

func GetConfig() Config {
	rateLimiteTimeFrame, err := time.ParseDuration(env.GetString("RATE_LIMIT_TIME_FRAME", "1m"))
	if err != nil {
		rateLimiteTimeFrame = 60 * time.Second
	}

	urlCacheTTL, err := time.ParseDuration(env.GetString("REDIS_URL_CACHE_TTL", "50m"))
	if err != nil {
		urlCacheTTL = 50 * time.Minute
	}

	return Config{
		Port:         env.GetString("PORT", "8080"),
		ENV:          env.GetString("ENV", "development"),
		FRONTEND_URL: env.GetString("FRONTEND_URL", "http://localhost:3000"),
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "root"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "eventhub"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		// By default if not specified, we allow 5000 requests per minute per client
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            rateLimiteTimeFrame,
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Mail: MailConfig{
			DRIVER:     env.GetString("MAIL_DRIVER", "sendgrid"),
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			FROM_NAME:  env.GetString("MAIL_FROM_NAME", "EventHub"),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
			SMTP: SMTPConfig{
				HOST:     env.GetString("MAIL_SMTP_HOST", "smtp.gmail.com"),
				PORT:     env.GetInt("MAIL_SMTP_PORT", 587),
				USERNAME: env.GetString("MAIL_SMTP_USERNAME", ""),
				PASSWORD: env.GetString("MAIL_SMTP_PASSWORD", ""),
			},
		},
		Auth: AuthConfig{
			JWT_SECRET: env.GetString("AUTH_JWT_SECRET", ""),
		},
		Minio: MinioConfig{
			DRIVER:     env.GetString("STORAGE_DRIVER", "minio"),
			ENDPOINT:   env.GetString("MINIO_ENDPOINT", "127.0.0.1:9000"),
			ACCESS_KEY: env.GetString("MINIO_ACCESS_KEY", ""),
			SECRET_KEY: env.GetString("MINIO_SECRET_KEY", ""),
			USE_SSL:    env.GetBool("MINIO_USE_SSL", false),
			BUCKET:     env.GetString("MINIO_BUCKET", "eventhub"),
		},
		RabbitMQ: RabbitMQConfig{
			HOST:     env.GetString("RABBITMQ_HOST", "127.0.0.1"),
			PORT:     env.GetString("RABBITMQ_PORT", "5672"),
			USERNAME: env.GetString("RABBITMQ_USERNAME", "guest"),
			PASSWORD: env.GetString("RABBITMQ_PASSWORD", "guest"),
			WORKERS:  env.GetInt("RABBITMQ_WORKERS", 0),
		},
		Redis: RedisConfig{
			ADDR:          env.GetString("REDIS_ADDR", ""),
			PASSWORD:      env.GetString("REDIS_PASSWORD", ""),
			DB:            env.GetInt("REDIS_DB", 0),
			URL_CACHE_TTL: urlCacheTTL,
		},
		Certificate: CertificateConfig{
			FONT_METADATA_PATH: env.GetString("CERT_FONT_METADATA_PATH", "font_metadata.json"),
			LOCALE:             env.GetString("CERT_LOCALE", "id"),
			OUTPUT_FORMAT:      env.GetString("CERT_OUTPUT_FORMAT", "pdf"),
			PIXEL_RATIO:        env.GetFloat("CERT_PIXEL_RATIO", 1),
			MAX_WORKERS:        env.GetInt("CERT_MAX_WORKERS", 0),
			EMBED_QR_CODE:      env.GetBool("CERT_EMBED_QR_CODE", true),
			VERIFY_URL_PATTERN: env.GetString("CERT_VERIFY_URL_PATTERN", "http://localhost:3000/verify/%s"),
			NUMBER_PREFIX:      env.GetString("CERT_NUMBER_PREFIX", "CERT"),
		},
	}
}
