package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from configs/config.yaml (optional) with
// environment variable overrides, e.g. DATABASE_HOST or MSG91_API_KEY.
func Load() (*Config, error) {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv overrides apply even when
// the key is absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "campaign_console")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.max_idle", 5)

	v.SetDefault("msg91.base_url", "https://control.msg91.com/api/v5")
	v.SetDefault("msg91.api_key", "")
	v.SetDefault("msg91.integrated_number", "")
	v.SetDefault("msg91.timeout_ms", 30000)

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.queue", "campaign_events")

	v.SetDefault("scheduler.interval_ms", 30000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if cfg.MSG91.BaseURL == "" {
		return fmt.Errorf("msg91.base_url is required")
	}
	return nil
}
