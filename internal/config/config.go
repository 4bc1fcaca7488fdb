// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Name        string
	Version     string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Geo         GeoConfig
	Notice      NoticeConfig
	Advert      AdvertConfig
	Stripe      StripeConfig
	Sweep       SweepConfig
	Telemetry   TelemetryConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Database      string
	SSLMode       string
	MaxConns      int
	MinConns      int
	MaxLifetime   time.Duration
	MaxIdleTime   time.Duration
	MaxRetries    int
	RetryInterval time.Duration
	EnableTracing bool
	AutoMigrate   bool
}

// DSN returns the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	SubjectPrefix  string
}

// RedisConfig holds Redis configuration used for the sweeper lease
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret string
}

// GeoConfig holds geo filter defaults for list endpoints
type GeoConfig struct {
	DefaultRadius float64
	MaxRadius     float64
}

// NoticeConfig holds notice rules
type NoticeConfig struct {
	UrgentMonthlyLimit int
	QuotaTimezone      string
}

// Location resolves the quota timezone
func (n NoticeConfig) Location() (*time.Location, error) {
	return time.LoadLocation(n.QuotaTimezone)
}

// AdvertConfig holds advertisement pricing and payment settings
type AdvertConfig struct {
	UnitRate        float64
	Currency        string
	PaymentsEnabled bool
}

// StripeConfig holds Stripe credentials
type StripeConfig struct {
	SecretKey string
}

// SweepConfig holds expiry sweeper settings
type SweepConfig struct {
	Enabled  bool
	Interval time.Duration
	Timeout  time.Duration
	LockTTL  time.Duration
	LockKey  string
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled       bool
	ServiceName   string
	CollectorAddr string
}

// Load loads configuration from a .env file, if present, and the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	config := Config{
		Environment: v.GetString("APP_ENV"),
		Name:        v.GetString("APP_NAME"),
		Version:     v.GetString("APP_VERSION"),
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			RequestTimeout:  v.GetDuration("SERVER_REQUEST_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			CorsOrigins:     getSlice(v, "SERVER_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetInt("DB_PORT"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			Database:      v.GetString("DB_NAME"),
			SSLMode:       v.GetString("DB_SSL_MODE"),
			MaxConns:      v.GetInt("DB_MAX_CONNS"),
			MinConns:      v.GetInt("DB_MIN_CONNS"),
			MaxLifetime:   v.GetDuration("DB_MAX_LIFETIME"),
			MaxIdleTime:   v.GetDuration("DB_MAX_IDLE_TIME"),
			MaxRetries:    v.GetInt("DB_MAX_RETRIES"),
			RetryInterval: v.GetDuration("DB_RETRY_INTERVAL"),
			EnableTracing: v.GetBool("DB_ENABLE_TRACING"),
			AutoMigrate:   v.GetBool("DB_AUTO_MIGRATE"),
		},
		NATS: NATSConfig{
			URL:            v.GetString("NATS_URL"),
			MaxReconnects:  v.GetInt("NATS_MAX_RECONNECTS"),
			ReconnectWait:  v.GetDuration("NATS_RECONNECT_WAIT"),
			ConnectTimeout: v.GetDuration("NATS_CONNECT_TIMEOUT"),
			SubjectPrefix:  v.GetString("NATS_SUBJECT_PREFIX"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		Geo: GeoConfig{
			DefaultRadius: v.GetFloat64("GEO_DEFAULT_RADIUS"),
			MaxRadius:     v.GetFloat64("GEO_MAX_RADIUS"),
		},
		Notice: NoticeConfig{
			UrgentMonthlyLimit: v.GetInt("NOTICE_URGENT_MONTHLY_LIMIT"),
			QuotaTimezone:      v.GetString("NOTICE_QUOTA_TIMEZONE"),
		},
		Advert: AdvertConfig{
			UnitRate:        v.GetFloat64("ADVERT_UNIT_RATE"),
			Currency:        v.GetString("ADVERT_CURRENCY"),
			PaymentsEnabled: v.GetBool("ADVERT_PAYMENTS_ENABLED"),
		},
		Stripe: StripeConfig{
			SecretKey: v.GetString("STRIPE_SECRET_KEY"),
		},
		Sweep: SweepConfig{
			Enabled:  v.GetBool("SWEEP_ENABLED"),
			Interval: v.GetDuration("SWEEP_INTERVAL"),
			Timeout:  v.GetDuration("SWEEP_TIMEOUT"),
			LockTTL:  v.GetDuration("SWEEP_LOCK_TTL"),
			LockKey:  v.GetString("SWEEP_LOCK_KEY"),
		},
		Telemetry: TelemetryConfig{
			Enabled:       v.GetBool("OTEL_ENABLED"),
			ServiceName:   v.GetString("OTEL_SERVICE_NAME"),
			CollectorAddr: v.GetString("OTEL_COLLECTOR_ADDR"),
		},
	}

	return config, config.Validate()
}

// setDefaults registers default values for every key
func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "neighborly")
	v.SetDefault("APP_VERSION", "dev")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_CORS_ORIGINS", "*")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "neighborly")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("DB_MAX_IDLE_TIME", 30*time.Minute)
	v.SetDefault("DB_MAX_RETRIES", 3)
	v.SetDefault("DB_RETRY_INTERVAL", 2*time.Second)
	v.SetDefault("DB_ENABLE_TRACING", false)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_MAX_RECONNECTS", 10)
	v.SetDefault("NATS_RECONNECT_WAIT", 1*time.Second)
	v.SetDefault("NATS_CONNECT_TIMEOUT", 2*time.Second)
	v.SetDefault("NATS_SUBJECT_PREFIX", "neighborly")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("GEO_DEFAULT_RADIUS", 50.0)
	v.SetDefault("GEO_MAX_RADIUS", 100.0)

	v.SetDefault("NOTICE_URGENT_MONTHLY_LIMIT", 3)
	v.SetDefault("NOTICE_QUOTA_TIMEZONE", "UTC")

	v.SetDefault("ADVERT_UNIT_RATE", 2.5)
	v.SetDefault("ADVERT_CURRENCY", "inr")
	v.SetDefault("ADVERT_PAYMENTS_ENABLED", false)

	v.SetDefault("STRIPE_SECRET_KEY", "")

	v.SetDefault("SWEEP_ENABLED", true)
	v.SetDefault("SWEEP_INTERVAL", 1*time.Minute)
	v.SetDefault("SWEEP_TIMEOUT", 30*time.Second)
	v.SetDefault("SWEEP_LOCK_TTL", 50*time.Second)
	v.SetDefault("SWEEP_LOCK_KEY", "neighborly:sweep:lock")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "neighborly")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
}

// Validate checks if config is valid
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET must be set in non-development environments")
	}

	if c.Server.Port <= 0 {
		return fmt.Errorf("server port must be positive, got %d", c.Server.Port)
	}

	if _, err := c.Notice.Location(); err != nil {
		return fmt.Errorf("invalid NOTICE_QUOTA_TIMEZONE %q: %w", c.Notice.QuotaTimezone, err)
	}

	if c.Notice.UrgentMonthlyLimit <= 0 {
		return fmt.Errorf("NOTICE_URGENT_MONTHLY_LIMIT must be positive")
	}

	if c.Advert.PaymentsEnabled && c.Stripe.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required when payments are enabled")
	}

	if c.Sweep.Enabled && c.Sweep.Interval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}

	return nil
}

// IsProduction returns true in the production environment
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true in the development environment
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getSlice(v *viper.Viper, key string) []string {
	raw := v.GetString(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
