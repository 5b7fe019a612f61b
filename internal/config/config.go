package config

import (
	"fmt"
	"time"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	MSG91     MSG91Config     `mapstructure:"msg91"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// MSG91Config configures the WhatsApp bulk provider. APIKey and
// IntegratedNumber come from the environment (MSG91_API_KEY,
// MSG91_INTEGRATED_NUMBER).
type MSG91Config struct {
	BaseURL          string `mapstructure:"base_url"`
	APIKey           string `mapstructure:"api_key"`
	IntegratedNumber string `mapstructure:"integrated_number"`
	TimeoutMS        int    `mapstructure:"timeout_ms"`
}

// Timeout returns the outbound call timeout.
func (m MSG91Config) Timeout() time.Duration {
	return time.Duration(m.TimeoutMS) * time.Millisecond
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AMQPConfig configures the campaign lifecycle event publisher. An empty URL
// disables publishing.
type AMQPConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type SchedulerConfig struct {
	IntervalMS int `mapstructure:"interval_ms"`
}

func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
