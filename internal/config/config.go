package config

import (
	"fmt"
	_ "github.com/joho/godotenv/autoload"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	DBRetries  int
	RedisAddr  string
	JWTSecret  string
	JWTTTL     time.Duration
	RateLimit  float64
	RateBurst  int
	OrderTopic string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	CartTTL           time.Duration
	CartSweepInterval time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("PORT", "8000"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPass:     getEnv("DB_PASS", ""),
		DBName:     getEnv("DB_NAME", "storefront"),
		DBRetries:  getEnvInt("DB_RETRIES", 10),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		JWTTTL:     getEnvDuration("JWT_TTL", 24*time.Hour),
		RateLimit:  getEnvFloat("RATE_LIMIT", 10),
		RateBurst:  getEnvInt("RATE_BURST", 20),
		OrderTopic: getEnv("ORDER_TOPIC", "order-topic"),

		SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getEnv("MAIL_FROM", "noreply@storefront.local"),

		CartTTL:           getEnvDuration("CART_TTL", 7*24*time.Hour),
		CartSweepInterval: getEnvDuration("CART_SWEEP_INTERVAL", time.Hour),
	}
}

// MySQLDSN builds the go-sql-driver DSN. parseTime lets DATETIME scan into
// time.Time; clientFoundRows makes no-op UPDATEs report the matched row.
func (c Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}

	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
