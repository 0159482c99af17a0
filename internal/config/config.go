package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	// Fallback day cutoff used until the settings row exists in the DB
	DefaultDayCutoffHour   int
	DefaultDayCutoffMinute int
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:            getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=exchange port=5432 sslmode=disable"),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		CORSOrigins:            getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		DefaultDayCutoffHour:   getEnvInt("DAY_CUTOFF_HOUR", 0),
		DefaultDayCutoffMinute: getEnvInt("DAY_CUTOFF_MINUTE", 0),
	}

	// Production safety checks
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set, refusing to start")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=exchange port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN is the development default, set your own Postgres DSN for production")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is the development default, set your own domain for production")
	}
	if cfg.DefaultDayCutoffHour < 0 || cfg.DefaultDayCutoffHour > 23 ||
		cfg.DefaultDayCutoffMinute < 0 || cfg.DefaultDayCutoffMinute > 59 {
		log.Fatal("[FATAL] DAY_CUTOFF_HOUR/DAY_CUTOFF_MINUTE out of range")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
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
		log.Fatalf("[FATAL] %s must be a number, got %q", key, v)
	}
	return n
}
