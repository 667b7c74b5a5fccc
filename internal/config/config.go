package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	LogLevel          string
	WebhookPassphrase string
	WebhookURL        string
	DriftInterval     time.Duration
	SeedDemo          bool
	CORSOrigins       []string
	RateLimit         int
	RateLimitWindow   time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Addr:              getenv("ADDR", ":8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		WebhookPassphrase: getenv("WEBHOOK_PASSPHRASE", "binance_secure"),
		WebhookURL:        getenv("WEBHOOK_URL", "http://localhost:8080/webhook"),
		DriftInterval:     getduration("DRIFT_INTERVAL", 4*time.Second),
		SeedDemo:          getbool("SEED_DEMO", true),
		RateLimit:         getint("RATE_LIMIT", 100),
		RateLimitWindow:   getduration("RATE_LIMIT_WINDOW", time.Minute),
	}

	origins := getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
