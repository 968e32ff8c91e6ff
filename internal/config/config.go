package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"invoicing/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	GinMode string
	Port    string

	DbDsn string

	JwtSecret  string
	CronSecret string

	// Scheduler
	Timezone         *time.Location
	SchedulerLockTTL time.Duration
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	AllowedOrigins []string

	LogLevel  string
	LogFormat string
	LogOutput string
}

// Load reads configs/.env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load("configs/.env")

	cfg := Config{
		AppEnv:           getEnv("APP_ENV", "local"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		Port:             getEnv("PORT", "8080"),
		DbDsn:            os.Getenv("DB_DSN"),
		JwtSecret:        os.Getenv("JWT_SECRET"),
		CronSecret:       os.Getenv("CRON_SECRET"),
		SchedulerLockTTL: getEnvDuration("SCHEDULER_LOCK_TTL", 15*time.Minute),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogOutput:        getEnv("LOG_OUTPUT", "stdout"),
	}

	if cfg.DbDsn == "" {
		cfg.DbDsn = dsnFromParts()
	}

	tzName := getEnv("APP_TIMEZONE", "Europe/Vienna")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return cfg, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tzName, err)
	}
	cfg.Timezone = loc

	if cfg.IsRelease() {
		missing := []string{}
		if cfg.JwtSecret == "" {
			missing = append(missing, "JWT_SECRET")
		}
		if cfg.CronSecret == "" {
			missing = append(missing, "CRON_SECRET")
		}
		if len(missing) > 0 {
			return cfg, errors.New("missing env: " + strings.Join(missing, ", "))
		}
	}

	if cfg.JwtSecret == "" {
		cfg.JwtSecret = "default_super_secret_key" // development fallback only
	}

	return cfg, nil
}

func (c Config) IsRelease() bool {
	return c.GinMode == "release"
}

// GetLoggerConfig returns a logger configuration from the main config
func (c Config) GetLoggerConfig() logger.LogConfig {
	lc := logger.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	lc.Output = c.LogOutput
	return lc
}

func dsnFromParts() string {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	name := getEnv("DB_NAME", "postgres")
	sslMode := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslMode
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
