/**
 * @description
 * This file handles the configuration management for the tracker-service.
 * It uses the 'viper' library to load configuration from environment
 * variables, providing a centralized and consistent way to manage
 * application settings.
 */

package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort              string `mapstructure:"SERVER_PORT"`
	DatabaseURL             string `mapstructure:"DATABASE_URL"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	CORSAllowedOrigins      string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RabbitMQURL             string `mapstructure:"RABBITMQ_URL"`
	RedisURL                string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix    string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	WriteRateLimitPerMinute int    `mapstructure:"WRITE_RATE_LIMIT_PER_MINUTE"`
	ReminderJobSchedule     string `mapstructure:"REMINDER_JOB_SCHEDULE"`
	ExpiryJobSchedule       string `mapstructure:"EXPIRY_JOB_SCHEDULE"`
	ReminderHorizonDays     int    `mapstructure:"REMINDER_HORIZON_DAYS"`
	ExpiryGraceDays         int    `mapstructure:"EXPIRY_GRACE_DAYS"`
	DefaultCurrency         string `mapstructure:"DEFAULT_CURRENCY"`
	DefaultLocale           string `mapstructure:"DEFAULT_LOCALE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "tracker:rate_limit")
	viper.SetDefault("WRITE_RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("REMINDER_JOB_SCHEDULE", "0 8 * * *")  // Daily at 08:00.
	viper.SetDefault("EXPIRY_JOB_SCHEDULE", "30 0 * * *")   // Daily at 00:30.
	viper.SetDefault("REMINDER_HORIZON_DAYS", 7)
	viper.SetDefault("EXPIRY_GRACE_DAYS", 30)
	viper.SetDefault("DEFAULT_CURRENCY", "USD")
	viper.SetDefault("DEFAULT_LOCALE", "en-US")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("WRITE_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("REMINDER_JOB_SCHEDULE")
	_ = viper.BindEnv("EXPIRY_JOB_SCHEDULE")
	_ = viper.BindEnv("REMINDER_HORIZON_DAYS")
	_ = viper.BindEnv("EXPIRY_GRACE_DAYS")
	_ = viper.BindEnv("DEFAULT_CURRENCY")
	_ = viper.BindEnv("DEFAULT_LOCALE")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
