package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort    int
	HTTPTimeout time.Duration

	// Client side.
	CartAPIURL     string
	CartAPIToken   string
	ReplicaBackend string
	ReplicaPath    string

	// Server side.
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	CheckoutBaseURL string
}

// Load reads the environment after applying any .env files. Variables that
// are already set win over file values. With no files given, ./.env is
// loaded when present.
func Load(files ...string) Config {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		_ = godotenv.Load(files...)
	}

	return Config{
		AppEnv:          getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		CartAPIURL:      getEnv("CART_API_URL", "http://localhost:8080"),
		CartAPIToken:    getEnv("CART_API_TOKEN", ""),
		ReplicaBackend:  getEnv("CART_REPLICA_BACKEND", "badger"),
		ReplicaPath:     getEnv("CART_REPLICA_PATH", defaultReplicaPath()),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		CheckoutBaseURL: getEnv("CHECKOUT_BASE_URL", "http://localhost:8080/checkout"),
	}
}

func defaultReplicaPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".cart"
	}
	return dir + "/storefront-cart"
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
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
