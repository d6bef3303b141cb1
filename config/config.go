package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	RedisPwd    string
	RedisDB     int
	WebOrigin   string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	LastSeenEvery   time.Duration

	LogLevel  string
	LogFormat string

	BootstrapUsername string
	BootstrapPassword string
	BootstrapLocation string
}

// LoadEnv reads .env into the process environment; a missing file is fine.
func LoadEnv() {
	_ = godotenv.Load()
}

func get(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func seconds(k string, def time.Duration) time.Duration {
	v := get(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func Load() Config {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			get("DB_HOST", "127.0.0.1"),
			get("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			get("DB_NAME", "assets"),
			get("DB_PORT", "5432"),
		)
	}
	redisDB, _ := strconv.Atoi(get("REDIS_DB", "0"))

	return Config{
		Port:        get("PORT", "3001"),
		DatabaseURL: dsn,
		RedisAddr:   get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:     redisDB,
		WebOrigin:   get("WEB_ORIGIN", "http://localhost:3000"),

		JWTSecret:       get("JWT_SECRET", "asset-tool-secret-change-in-production"),
		AccessTokenTTL:  seconds("ACCESS_TOKEN_TTL_SECONDS", 15*time.Minute),
		RefreshTokenTTL: seconds("REFRESH_TOKEN_TTL_SECONDS", 7*24*time.Hour),
		LastSeenEvery:   seconds("LAST_SEEN_THROTTLE_SECONDS", 5*time.Minute),

		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "text"),

		BootstrapUsername: strings.ToLower(os.Getenv("BOOTSTRAP_ADMIN_USERNAME")),
		BootstrapPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		BootstrapLocation: get("BOOTSTRAP_LOCATION", "HQ"),
	}
}
