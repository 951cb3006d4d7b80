package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by DOMAINS_ENV (or .env by default),
// then loads the corresponding .secret sidecar if it exists. All config is
// flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("DOMAINS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; env vars may be set directly.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// PlatformToken is the bearer credential for the hosting platform API.
// Required; the server refuses to start without it.
func PlatformToken() string {
	return os.Getenv("PLATFORM_API_TOKEN")
}

// PlatformProjectID is the hosting-platform project all tenant domains are
// attached to. Required.
func PlatformProjectID() string {
	return os.Getenv("PLATFORM_PROJECT_ID")
}

// PlatformBaseURL overrides the platform API endpoint, mainly for tests and
// staging. Empty means the client's default.
func PlatformBaseURL() string {
	return os.Getenv("PLATFORM_API_BASE_URL")
}

// PlatformTimeout returns the per-call timeout for platform API requests.
// Defaults to 10s.
func PlatformTimeout() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("PLATFORM_TIMEOUT_SECONDS"))
	if err != nil || secs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(secs) * time.Second
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// RateLimitRPS returns requests per second limit. Defaults to 100.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting. Defaults to 20.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error). Defaults to "info".
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
