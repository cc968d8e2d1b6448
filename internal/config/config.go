package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Session         SessionConfig         `mapstructure:"session"`
	Analytics       AnalyticsConfig       `mapstructure:"analytics"`
	Instrumentation InstrumentationConfig `mapstructure:"instrumentation"`
	Rules           []RuleConfig          `mapstructure:"rules"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
	Path     string `mapstructure:"path"` // directory for SQLite database files
}

type SessionConfig struct {
	// UploadMode is the default merge policy for dataset uploads:
	// "merge" (union + natural-key dedup) or "replace" (full overwrite).
	UploadMode string `mapstructure:"upload_mode"`
}

type AnalyticsConfig struct {
	BenchmarkROI  float64 `mapstructure:"benchmark_roi"`  // percent, e.g. 200
	BenchmarkROAS float64 `mapstructure:"benchmark_roas"` // ratio, e.g. 4.0
}

type InstrumentationConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	SamplingRate    float64 `mapstructure:"sampling_rate"`
	BufferSize      int     `mapstructure:"buffer_size"`
	FlushIntervalMs int     `mapstructure:"flush_interval_ms"`
	RetentionDays   int     `mapstructure:"retention_days"`
}

// RuleConfig is an operator-defined validation rule evaluated against each
// uploaded row. The expression sees the coerced row as "row"; a true result
// means the rule is violated and the row is rejected.
type RuleConfig struct {
	Dataset    string `mapstructure:"dataset"`
	Expression string `mapstructure:"expression"`
	Message    string `mapstructure:"message"`
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path + "/" + d.Name + ".db"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsSQLite returns true if the driver is sqlite.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "campaigniq")
	viper.SetDefault("database.pool_size", 10)
	viper.SetDefault("database.path", "./data")
	viper.SetDefault("session.upload_mode", "merge")
	viper.SetDefault("analytics.benchmark_roi", 200.0)
	viper.SetDefault("analytics.benchmark_roas", 4.0)
	viper.SetDefault("instrumentation.enabled", true)
	viper.SetDefault("instrumentation.sampling_rate", 1.0)
	viper.SetDefault("instrumentation.buffer_size", 500)
	viper.SetDefault("instrumentation.flush_interval_ms", 100)
	viper.SetDefault("instrumentation.retention_days", 30)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// The service must start without an app.yaml; defaults cover a local run.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
