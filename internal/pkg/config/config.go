package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	GeneralCapacity int           `env:"GENERAL_LOG_CAPACITY" envDefault:"1000"`
	APICapacity     int           `env:"API_LOG_CAPACITY" envDefault:"1000"`
	CircularBuffer  bool          `env:"CIRCULAR_BUFFER" envDefault:"true"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"2s"`
	MaxEventSize    int64         `env:"MAX_EVENT_SIZE_BYTES" envDefault:"1048576"` // 1MB
	IngestRate      float64       `env:"INGEST_RATE_PER_SEC" envDefault:"1000"`
	IngestBurst     int           `env:"INGEST_BURST" envDefault:"200"`
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8080"`
	AdminAddr       string        `env:"ADMIN_ADDR" envDefault:":9091"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
