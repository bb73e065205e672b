package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaSourceTopic string   `env:"KAFKA_SOURCE_TOPIC" envDefault:"bls-raw-records"`
	KafkaSinkTopic   string   `env:"KAFKA_SINK_TOPIC" envDefault:"flux-estimates"`
	KafkaGroupID     string   `env:"KAFKA_GROUP_ID" envDefault:"scint-etl"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	BatchSize          int           `env:"BATCH_SIZE" envDefault:"50"`
	BatchFlushInterval time.Duration `env:"BATCH_FLUSH_INTERVAL" envDefault:"500ms"`

	// StationsFile points at the YAML station registry describing each
	// scintillometer path (coordinates, path length, transect file).
	StationsFile string `env:"STATIONS_FILE" envDefault:"stations.yaml"`

	// FallbackTemperature is used for flux derivation when no weather
	// provider observation is available, in kelvins.
	FallbackTemperature float64 `env:"FALLBACK_TEMPERATURE" envDefault:"288.15"`

	// GeoSphere weather API configuration.
	GeoSphereURL       string        `env:"GEOSPHERE_URL" envDefault:"https://dataset.api.hub.geosphere.at/v1"`
	GeoSphereEnabled   bool          `env:"GEOSPHERE_ENABLED" envDefault:"false"`
	GeoSphereTimeout   time.Duration `env:"GEOSPHERE_TIMEOUT" envDefault:"5s"`
	GeoSphereCacheSize int           `env:"GEOSPHERE_CACHE_SIZE" envDefault:"100"`
	GeoSphereMaxAge    time.Duration `env:"GEOSPHERE_MAX_AGE" envDefault:"10m"`

	// PostgresDSN enables the archival sink when set.
	PostgresDSN string `env:"POSTGRES_DSN"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaSourceTopic == "" {
		return errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.BatchSize <= 0 || c.BatchSize > 1000 {
		return fmt.Errorf("BATCH_SIZE must be between 1 and 1000, got %d", c.BatchSize)
	}
	if c.BatchFlushInterval <= 0 {
		return errors.New("BATCH_FLUSH_INTERVAL must be positive")
	}
	if c.FallbackTemperature <= 0 {
		return errors.New("FALLBACK_TEMPERATURE must be a positive kelvin value")
	}
	if c.GeoSphereEnabled {
		if c.GeoSphereURL == "" {
			return errors.New("GEOSPHERE_ENABLED is true but GEOSPHERE_URL is not set")
		}
		if c.GeoSphereTimeout <= 0 {
			return errors.New("GEOSPHERE_TIMEOUT must be positive")
		}
		if c.GeoSphereCacheSize <= 0 {
			return errors.New("GEOSPHERE_CACHE_SIZE must be positive")
		}
	}
	return nil
}
