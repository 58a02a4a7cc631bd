package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App      AppConfig
	Supabase SupabaseConfig
	Webflow  WebflowConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Routes   RouteConfig
	Gating   GatingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	AdminServiceKey       string
}

// SupabaseConfig holds auth provider connection values.
type SupabaseConfig struct {
	URL              string
	AnonKey          string
	JWTSecret        string
	RequestTimeoutMS int
}

// WebflowConfig identifies the storefront hosts the gateway serves.
type WebflowConfig struct {
	ProductionHost   string
	ProductionOrigin string
	StagingHost      string
	StagingOrigin    string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// RouteConfig holds the dashboard and auth page paths on the storefront.
type RouteConfig struct {
	Login             string
	Signup            string
	CustomerDashboard string
	RetailerDashboard string
}

// GatingConfig controls content gating output.
type GatingConfig struct {
	// FinsweetIntegration switches /gating/state into directive mode for the
	// on-page list filtering library. The CSS fallback is served regardless.
	FinsweetIntegration bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "niko-auth-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			AdminServiceKey:       os.Getenv("ADMIN_SERVICE_KEY"),
		},
		Supabase: SupabaseConfig{
			URL:              os.Getenv("SUPABASE_URL"),
			AnonKey:          os.Getenv("SUPABASE_ANON_KEY"),
			JWTSecret:        os.Getenv("SUPABASE_JWT_SECRET"),
			RequestTimeoutMS: getEnvAsInt("SUPABASE_REQUEST_TIMEOUT_MS", 10000),
		},
		Webflow: WebflowConfig{
			ProductionHost:   getEnv("WEBFLOW_PRODUCTION_HOST", "nikobathrooms.ie"),
			ProductionOrigin: getEnv("WEBFLOW_PRODUCTION_ORIGIN", "https://www.nikobathrooms.ie"),
			StagingHost:      getEnv("WEBFLOW_STAGING_HOST", "nikobathrooms.webflow.io"),
			StagingOrigin:    getEnv("WEBFLOW_STAGING_ORIGIN", "https://nikobathrooms.webflow.io"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Routes: RouteConfig{
			Login:             getEnv("ROUTE_LOGIN", "/dev/app/auth/log-in"),
			Signup:            getEnv("ROUTE_SIGNUP", "/dev/app/auth/sign-up"),
			CustomerDashboard: getEnv("ROUTE_CUSTOMER_DASHBOARD", "/dev/app/customer/dashboard"),
			RetailerDashboard: getEnv("ROUTE_RETAILER_DASHBOARD", "/dev/app/retailer/dashboard"),
		},
		Gating: GatingConfig{
			FinsweetIntegration: getEnvAsBool("GATING_FINSWEET_INTEGRATION", true),
		},
	}

	if cfg.Supabase.URL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.Supabase.AnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the provider HTTP timeout duration.
func (s SupabaseConfig) RequestTimeout() time.Duration {
	if s.RequestTimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.RequestTimeoutMS) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
