package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleet")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, "LKR", cfg.Pricing.Currency)
	assert.Equal(t, 120.0, cfg.Pricing.AirportRatePerKm)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Notifications.KafkaBrokers)
	assert.False(t, cfg.Cron.Enabled)
	assert.Equal(t, "0 15 0 * * *", cfg.Cron.ContractExpirySchedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleet")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "900")
	t.Setenv("BOOKING_RATE_PER_KM_WEDDING", "310.5")
	t.Setenv("BOOKING_RATE_PER_KM_CARGO", "not-a-number")
	t.Setenv("NOTIFY_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.lk")
	t.Setenv("CRON_ENABLED", "true")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 310.5, cfg.Pricing.WeddingRatePerKm)
	assert.Equal(t, 180.0, cfg.Pricing.CargoRatePerKm)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notifications.KafkaBrokers)
	assert.Equal(t, []string{"https://admin.example.lk"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Cron.Enabled)
	assert.False(t, cfg.Database.MigrateOnStart)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:      DatabaseConfig{URL: "postgres://localhost/fleet"},
			JWT:           JWTConfig{Secret: "secret", AccessTokenExpiry: time.Hour},
			Notifications: NotificationConfig{KafkaTopic: "fleet-notifications"},
			Cron:          CronConfig{ContractExpirySchedule: "0 15 0 * * *"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database url", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET"},
		{"zero expiry", func(c *Config) { c.JWT.AccessTokenExpiry = 0 }, "JWT_ACCESS_TOKEN_EXPIRY"},
		{"negative rate", func(c *Config) { c.Pricing.DailyRatePerKm = -1 }, "BOOKING_RATE_PER_KM_DAILY"},
		{"brokers without topic", func(c *Config) {
			c.Notifications.KafkaBrokers = []string{"kafka:9092"}
			c.Notifications.KafkaTopic = ""
		}, "NOTIFY_KAFKA_TOPIC"},
		{"cron without schedule", func(c *Config) {
			c.Cron.Enabled = true
			c.Cron.ContractExpirySchedule = ""
		}, "CONTRACT_EXPIRY_CRON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
