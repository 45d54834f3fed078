package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	BookingAPI BookingAPIConfig `yaml:"booking_api"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Checkout   CheckoutConfig   `yaml:"checkout"`
	Log        LogConfig        `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

// BookingAPIConfig describes the upstream booking API that owns flights, seats,
// reservations and payments.
type BookingAPIConfig struct {
	BaseURL                 string  `yaml:"base_url"`
	TimeoutSeconds          int     `yaml:"timeout_seconds"`
	RequestsPerSecond       float64 `yaml:"requests_per_second"`
	Burst                   int     `yaml:"burst"`
	MaxParallelReservations int     `yaml:"max_parallel_reservations"`
}

func (b BookingAPIConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"ssl_mode"`
	MigrationsAuto bool   `yaml:"migrations_auto"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// MigrateURL is the pgx5:// form golang-migrate expects.
func (d DatabaseConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers             []string `yaml:"brokers"`
	CheckoutEventsTopic string   `yaml:"checkout_events_topic"`
	NotificationsTopic  string   `yaml:"notifications_topic"`
	GroupID             string   `yaml:"group_id"`
}

type CheckoutConfig struct {
	FlightsCacheTTL     int `yaml:"flights_cache_ttl_seconds"`
	SeatCatalogTTL      int `yaml:"seat_catalog_ttl_seconds"`
	SessionIdleMinutes  int `yaml:"session_idle_minutes"`
	SessionSweepMinutes int `yaml:"session_sweep_minutes"`
	FollowUpTimeoutSec  int `yaml:"follow_up_timeout_seconds"`
}

type LogConfig struct {
	Env        string `yaml:"env"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if cfg.BookingAPI.BaseURL == "" {
		return nil, fmt.Errorf("booking_api.base_url is required")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.BookingAPI.TimeoutSeconds <= 0 {
		c.BookingAPI.TimeoutSeconds = 10
	}
	if c.BookingAPI.RequestsPerSecond <= 0 {
		c.BookingAPI.RequestsPerSecond = 20
	}
	if c.BookingAPI.Burst <= 0 {
		c.BookingAPI.Burst = 10
	}
	if c.BookingAPI.MaxParallelReservations <= 0 {
		c.BookingAPI.MaxParallelReservations = 8
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.CheckoutEventsTopic == "" {
		c.Kafka.CheckoutEventsTopic = "checkout-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "checkout-worker"
	}
	if c.Checkout.FlightsCacheTTL <= 0 {
		c.Checkout.FlightsCacheTTL = 60
	}
	if c.Checkout.SeatCatalogTTL <= 0 {
		c.Checkout.SeatCatalogTTL = 15
	}
	if c.Checkout.SessionIdleMinutes <= 0 {
		c.Checkout.SessionIdleMinutes = 30
	}
	if c.Checkout.SessionSweepMinutes <= 0 {
		c.Checkout.SessionSweepMinutes = 5
	}
	if c.Checkout.FollowUpTimeoutSec <= 0 {
		c.Checkout.FollowUpTimeoutSec = 5
	}
	if c.Log.Env == "" {
		c.Log.Env = "development"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 7
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 28
	}
}
