package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Pickup   PickupConfig   `yaml:"pickup"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	PickupEventsTopic string   `yaml:"pickup_events_topic"`
	GroupID           string   `yaml:"group_id"`
}

// UpstreamConfig holds credentials for the reservation platform search API.
// Every request is signed per call; see internal/upstream.
type UpstreamConfig struct {
	BaseURL   string `yaml:"base_url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type GuideConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type PickupConfig struct {
	MaxPassengersPerVehicle  int           `yaml:"max_passengers_per_vehicle"`
	RetentionDays            int           `yaml:"retention_days"`
	CreationLookbackDays     int           `yaml:"creation_lookback_days"`
	SecondaryLoadTimeoutSecs int           `yaml:"secondary_load_timeout_seconds"`
	CacheTTLHours            int           `yaml:"cache_ttl_hours"`
	CurrentGuideID           string        `yaml:"current_guide_id"`
	Guides                   []GuideConfig `yaml:"guides"`
}

type WorkerConfig struct {
	WarmSweepMinutes int `yaml:"warm_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pickup.MaxPassengersPerVehicle == 0 {
		c.Pickup.MaxPassengersPerVehicle = 19
	}
	if c.Pickup.RetentionDays == 0 {
		c.Pickup.RetentionDays = 30
	}
	if c.Pickup.CreationLookbackDays == 0 {
		c.Pickup.CreationLookbackDays = 60
	}
	if c.Pickup.SecondaryLoadTimeoutSecs == 0 {
		c.Pickup.SecondaryLoadTimeoutSecs = 5
	}
	if c.Pickup.CacheTTLHours == 0 {
		c.Pickup.CacheTTLHours = 24 * 45
	}
	if c.Worker.WarmSweepMinutes == 0 {
		c.Worker.WarmSweepMinutes = 15
	}
}
