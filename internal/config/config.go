package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Ride pricing defaults
	Pricing PricingConfig

	// Redis backs the cross-instance vehicle lock; empty URL means in-process locking
	Redis RedisConfig

	// Notification hand-off
	Notifications NotificationConfig

	// Scheduled jobs
	Cron CronConfig

	// Security configuration
	Security SecurityConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string // development, staging, production
	LogLevel        string // debug, info, warn, error
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	MigrateOnStart     bool
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// PricingConfig holds the per-km booking rates used when no vehicle is chosen
type PricingConfig struct {
	WeddingRatePerKm float64
	AirportRatePerKm float64
	CargoRatePerKm   float64
	DailyRatePerKm   float64
	Currency         string
}

// RedisConfig holds Redis connection and lock settings
type RedisConfig struct {
	URL      string
	LockTTL  time.Duration
	LockWait time.Duration
}

// NotificationConfig holds notification dispatch settings
type NotificationConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
	Timeout      time.Duration
}

// CronConfig holds background job settings
type CronConfig struct {
	Enabled                bool
	ContractExpirySchedule string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnableRequestLog bool
	EnableAuditLog   bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			MigrateOnStart:     getEnvAsBool("MIGRATE_ON_START", true),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Pricing: PricingConfig{
			WeddingRatePerKm: getEnvAsFloat("BOOKING_RATE_PER_KM_WEDDING", 250),
			AirportRatePerKm: getEnvAsFloat("BOOKING_RATE_PER_KM_AIRPORT", 120),
			CargoRatePerKm:   getEnvAsFloat("BOOKING_RATE_PER_KM_CARGO", 180),
			DailyRatePerKm:   getEnvAsFloat("BOOKING_RATE_PER_KM_DAILY", 100),
			Currency:         getEnv("DEFAULT_CURRENCY", "LKR"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			LockTTL:  time.Duration(getEnvAsInt("VEHICLE_LOCK_TTL_SECONDS", 30)) * time.Second,
			LockWait: time.Duration(getEnvAsInt("VEHICLE_LOCK_WAIT_SECONDS", 5)) * time.Second,
		},
		Notifications: NotificationConfig{
			KafkaBrokers: getEnvAsSlice("NOTIFY_KAFKA_BROKERS", nil),
			KafkaTopic:   getEnv("NOTIFY_KAFKA_TOPIC", "fleet-notifications"),
			Timeout:      time.Duration(getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Cron: CronConfig{
			Enabled:                getEnvAsBool("CRON_ENABLED", false),
			ContractExpirySchedule: getEnv("CONTRACT_EXPIRY_CRON", "0 15 0 * * *"),
		},
		Security: SecurityConfig{
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			EnableAuditLog:   getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.AccessTokenExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_EXPIRY must be positive")
	}

	for name, rate := range map[string]float64{
		"BOOKING_RATE_PER_KM_WEDDING": c.Pricing.WeddingRatePerKm,
		"BOOKING_RATE_PER_KM_AIRPORT": c.Pricing.AirportRatePerKm,
		"BOOKING_RATE_PER_KM_CARGO":   c.Pricing.CargoRatePerKm,
		"BOOKING_RATE_PER_KM_DAILY":   c.Pricing.DailyRatePerKm,
	} {
		if rate < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	if len(c.Notifications.KafkaBrokers) > 0 && c.Notifications.KafkaTopic == "" {
		return fmt.Errorf("NOTIFY_KAFKA_TOPIC is required when NOTIFY_KAFKA_BROKERS is set")
	}

	if c.Cron.Enabled && c.Cron.ContractExpirySchedule == "" {
		return fmt.Errorf("CONTRACT_EXPIRY_CRON is required when CRON_ENABLED is true")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
