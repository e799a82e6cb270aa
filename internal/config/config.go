package config

import (
	"github.com/nearby-app/marketplace-api/pkg/config"
)

// ServiceConfig holds all configuration for the marketplace API.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	CORSOrigin  string
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig

	// CancellationWindowMinutes is how long before a slot's start time a
	// client may still cancel a booking.
	CancellationWindowMinutes int
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("MARKETPLACE")
	if err != nil {
		return nil, err
	}

	v.SetDefault("SERVICE_PORT", "3001")
	v.SetDefault("DB_NAME", "marketplace")
	v.SetDefault("CORS_ORIGIN", "http://localhost:8081")
	v.SetDefault("CANCELLATION_WINDOW_MINUTES", 60)

	return &ServiceConfig{
		Port:                      config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:                    config.GetAppEnv(v),
		CORSOrigin:                v.GetString("CORS_ORIGIN"),
		DBConfig:                  config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:                 config.LoadJWTConfig(v),
		KafkaConfig:               config.LoadKafkaConfig(v),
		CancellationWindowMinutes: v.GetInt("CANCELLATION_WINDOW_MINUTES"),
	}, nil
}
