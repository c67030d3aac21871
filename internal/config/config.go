// Package config loads rollcall settings from defaults, an optional YAML
// file, a .env file and ROLLCALL_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ROLLCALL_STORAGE_PATH.
const EnvPrefix = "ROLLCALL"

// Config holds all configuration for the application.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Session   SessionConfig   `mapstructure:"session"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Retention RetentionConfig `mapstructure:"retention"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// StorageConfig configures the durable tier.
type StorageConfig struct {
	Path       string `mapstructure:"path" validate:"required"`
	QuotaBytes int64  `mapstructure:"quota_bytes" validate:"gte=0"`
	WarnBytes  int64  `mapstructure:"warn_bytes" validate:"gt=0"`
}

// SessionConfig configures the session-scoped fallback tier.
type SessionConfig struct {
	Driver        string        `mapstructure:"driver" validate:"oneof=memory redis"`
	RedisAddr     string        `mapstructure:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" validate:"gte=0"`
	TTL           time.Duration `mapstructure:"ttl" validate:"gte=0"`
	QuotaBytes    int64         `mapstructure:"quota_bytes" validate:"gte=0"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format   string `mapstructure:"format" validate:"oneof=console json"`
	Output   string `mapstructure:"output" validate:"oneof=stdout stderr file"`
	Filename string `mapstructure:"filename" validate:"required_if=Output file"`
}

// BackupConfig configures scheduled backups under `rollcall watch`.
// A zero interval disables them.
type BackupConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`
}

// RetentionConfig bounds how long attendance records are kept by cleanup.
type RetentionConfig struct {
	Period time.Duration `mapstructure:"period" validate:"gt=0"`
}

// MetricsConfig holds metrics configuration. An empty Textfile disables output.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Load builds the configuration. path names an explicit config file; when
// empty, rollcall.yaml is looked up in the working directory and is optional.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("rollcall")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing overrides the defaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.path", "rollcall.db")
	v.SetDefault("storage.quota_bytes", 0)
	v.SetDefault("storage.warn_bytes", int64(4.5*1024*1024))

	v.SetDefault("session.driver", "memory")
	v.SetDefault("session.redis_addr", "")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.quota_bytes", 0)

	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.filename", "")

	v.SetDefault("backup.interval", "0s")
	v.SetDefault("retention.period", "8760h")
	v.SetDefault("metrics.textfile", "")
}

var validate = validator.New()

// Validate checks struct-level constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}
