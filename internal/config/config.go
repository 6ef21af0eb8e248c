package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/fairwaylabs/GLM-BookingService/internal/domain"
)

// Config конфигурация сервиса, загружается из TOML файла
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Payments      PaymentsConfig      `toml:"payments"`
	Notifications NotificationsConfig `toml:"notifications"`
	Workers       WorkersConfig       `toml:"workers"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// PaymentsConfig настройки платежного процессора
type PaymentsConfig struct {
	StripeKey  string `toml:"stripe_key"`
	MaxRetries int    `toml:"max_retries"`
	BackoffMS  int    `toml:"backoff_ms"`
}

// NotificationsConfig настройки публикации событий
type NotificationsConfig struct {
	AMQPURL  string `toml:"amqp_url"`
	Exchange string `toml:"exchange"`
}

// WorkersConfig настройки фоновых обработчиков, интервалы в секундах
type WorkersConfig struct {
	OutboxInterval  int `toml:"outbox_interval"`
	SweeperInterval int `toml:"sweeper_interval"`
	HoldTTLMinutes  int `toml:"hold_ttl_minutes"`
	BatchSize       int `toml:"batch_size"`
}

// Load читает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15
	}

	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}

	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "booking-service"
	}

	if cfg.Payments.MaxRetries == 0 {
		cfg.Payments.MaxRetries = domain.DefaultPaymentMaxRetries
	}
	if cfg.Payments.BackoffMS == 0 {
		cfg.Payments.BackoffMS = domain.DefaultPaymentBackoffMS
	}

	if cfg.Notifications.Exchange == "" {
		cfg.Notifications.Exchange = "booking.events"
	}

	if cfg.Workers.OutboxInterval == 0 {
		cfg.Workers.OutboxInterval = 5
	}
	if cfg.Workers.SweeperInterval == 0 {
		cfg.Workers.SweeperInterval = 30
	}
	if cfg.Workers.HoldTTLMinutes == 0 {
		cfg.Workers.HoldTTLMinutes = domain.DefaultHoldTTLMinutes
	}
	if cfg.Workers.BatchSize == 0 {
		cfg.Workers.BatchSize = 100
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if cfg.Database.DBName == "" {
		return fmt.Errorf("database.dbname is required")
	}
	if cfg.Payments.StripeKey == "" {
		return fmt.Errorf("payments.stripe_key is required")
	}
	if cfg.Notifications.AMQPURL == "" {
		return fmt.Errorf("notifications.amqp_url is required")
	}
	return nil
}
