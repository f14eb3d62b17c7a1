package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Escrow   EscrowConfig   `yaml:"escrow"`
	Worker   WorkerConfig   `yaml:"worker"`
	Storage  StorageConfig  `yaml:"storage"`
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
	Brokers            []string `yaml:"brokers"`
	EscrowEventsTopic  string   `yaml:"escrow_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type EscrowConfig struct {
	Admin                 string `yaml:"admin"`
	NoShowWindowHours     int    `yaml:"no_show_window_hours"`
	CompletionGraceHours  int    `yaml:"completion_grace_hours"`
	SlotsCacheTTLSeconds  int    `yaml:"slots_cache_ttl_seconds"`
	SettleLockTTLSeconds  int    `yaml:"settle_lock_ttl_seconds"`
}

func (e EscrowConfig) NoShowWindow() time.Duration {
	return time.Duration(e.NoShowWindowHours) * time.Hour
}

func (e EscrowConfig) CompletionGrace() time.Duration {
	return time.Duration(e.CompletionGraceHours) * time.Hour
}

type WorkerConfig struct {
	SweepMinutes int `yaml:"sweep_minutes"`
}

// StorageConfig selects the backing stores: "postgres" (default) or "memory"
// for local runs without a database.
type StorageConfig struct {
	Driver string `yaml:"driver"`
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

	if cfg.Escrow.NoShowWindowHours == 0 {
		cfg.Escrow.NoShowWindowHours = 24
	}
	if cfg.Escrow.CompletionGraceHours == 0 {
		cfg.Escrow.CompletionGraceHours = 12
	}
	if cfg.Escrow.SlotsCacheTTLSeconds == 0 {
		cfg.Escrow.SlotsCacheTTLSeconds = 60
	}
	if cfg.Escrow.SettleLockTTLSeconds == 0 {
		cfg.Escrow.SettleLockTTLSeconds = 30
	}
	if cfg.Worker.SweepMinutes == 0 {
		cfg.Worker.SweepMinutes = 5
	}

	return &cfg, nil
}
