package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendBolt   = "bolt"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Upstream    UpstreamConfig
	Cache       CacheConfig
	Redis       RedisConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxConn       int
	EnablePprof   bool
	EnableMetrics bool
}

// UpstreamConfig points at the backend APIs the course page is assembled from.
type UpstreamConfig struct {
	DiscoveryBaseURL         string
	LMSBaseURL               string
	EnterpriseCatalogBaseURL string
	LicenseManagerBaseURL    string
	Timeout                  time.Duration
	MaxAttempts              int
	RetryBaseDelay           time.Duration
	RetryMaxDelay            time.Duration
	MonitorInterval          time.Duration
}

type CacheConfig struct {
	Enabled       bool
	Backend       string
	TTL           time.Duration
	Size          int
	Path          string
	PruneInterval time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// RateLimitConfig bounds course requests per learner; zero disables it.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults pointing at a local devstack.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "learner-portal"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("SERVER_PORT", "8734"),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:       getInt("SERVER_MAX_CONN", 0),
			EnablePprof:   getBool("SERVER_ENABLE_PPROF", false),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", true),
		},
		Upstream: UpstreamConfig{
			DiscoveryBaseURL:         trimURL(getString("DISCOVERY_API_BASE_URL", "http://localhost:18381")),
			LMSBaseURL:               trimURL(getString("LMS_BASE_URL", "http://localhost:18000")),
			EnterpriseCatalogBaseURL: trimURL(getString("ENTERPRISE_CATALOG_API_BASE_URL", "http://localhost:18160")),
			LicenseManagerBaseURL:    trimURL(getString("LICENSE_MANAGER_URL", "http://localhost:18170")),
			Timeout:                  getDuration("UPSTREAM_TIMEOUT", 4*time.Second),
			MaxAttempts:              getInt("UPSTREAM_MAX_ATTEMPTS", 3),
			RetryBaseDelay:           getDuration("UPSTREAM_RETRY_BASE_DELAY", 200*time.Millisecond),
			RetryMaxDelay:            getDuration("UPSTREAM_RETRY_MAX_DELAY", 2*time.Second),
			MonitorInterval:          getDuration("UPSTREAM_MONITOR_INTERVAL", 30*time.Second),
		},
		Cache: CacheConfig{
			Enabled:       getBool("USE_API_CACHE", true),
			Backend:       strings.ToLower(getString("API_CACHE_BACKEND", CacheBackendMemory)),
			TTL:           getDuration("API_CACHE_TTL", 5*time.Minute),
			Size:          getInt("API_CACHE_SIZE", 1024),
			Path:          getString("API_CACHE_PATH", "./data/api-cache.db"),
			PruneInterval: getDuration("API_CACHE_PRUNE_INTERVAL", 10*time.Minute),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", ""),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),
			Burst:     getInt("RATE_LIMIT_BURST", 20),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis, CacheBackendBolt:
	default:
		return fmt.Errorf("unsupported API_CACHE_BACKEND %q", c.Cache.Backend)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Upstream.MaxAttempts <= 0 {
		c.Upstream.MaxAttempts = 1
	}
	return nil
}

func trimURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
