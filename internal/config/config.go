// Package config loads easyproc settings from YAML files and EASYPROC_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rzbill/easyproc/pkg/host"
	"github.com/rzbill/easyproc/pkg/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. EASYPROC_QUERY_TIMEOUT.
const EnvPrefix = "EASYPROC"

// DefaultQueryTimeout bounds each process listing tool run.
const DefaultQueryTimeout = 30 * time.Second

type Host struct {
	// NullDevice overrides the platform null device path.
	NullDevice string `yaml:"null_device" mapstructure:"null_device"`

	// MaxMemory caps in-memory capture before spilling to disk.
	MaxMemory int64 `yaml:"max_memory" mapstructure:"max_memory"`
}

type Query struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type Log struct {
	Level          string   `yaml:"level" mapstructure:"level"`
	Format         string   `yaml:"format" mapstructure:"format"`
	Output         string   `yaml:"output" mapstructure:"output"`
	RedactedFields []string `yaml:"redacted_fields" mapstructure:"redacted_fields"`
}

type Config struct {
	Host  Host  `yaml:"host" mapstructure:"host"`
	Query Query `yaml:"query" mapstructure:"query"`
	Log   Log   `yaml:"log" mapstructure:"log"`
}

func Default() *Config {
	return &Config{
		Host:  Host{MaxMemory: host.DefaultMaxMemory},
		Query: Query{Timeout: DefaultQueryTimeout},
		Log:   Log{Level: "warn", Format: "text", Output: "stderr"},
	}
}

// Load reads path, or easyproc.yaml from the search paths when path is
// empty. A missing default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("easyproc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".easyproc"))
		}
		v.AddConfigPath("/etc/easyproc/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// no file sets.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("host.null_device", cfg.Host.NullDevice)
	v.SetDefault("host.max_memory", cfg.Host.MaxMemory)
	v.SetDefault("query.timeout", cfg.Query.Timeout)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("log.redacted_fields", cfg.Log.RedactedFields)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Host.MaxMemory <= 0 {
		return fmt.Errorf("host.max_memory must be positive, got %d", c.Host.MaxMemory)
	}
	if c.Query.Timeout <= 0 {
		return fmt.Errorf("query.timeout must be positive, got %s", c.Query.Timeout)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// HostConfig returns the host settings.
func (c *Config) HostConfig() host.Config {
	return host.Config{
		NullDevice: c.Host.NullDevice,
		MaxMemory:  c.Host.MaxMemory,
	}
}

// LogConfig returns the logger settings.
func (c *Config) LogConfig() *log.Config {
	return &log.Config{
		Level:          c.Log.Level,
		Format:         c.Log.Format,
		Output:         c.Log.Output,
		RedactedFields: c.Log.RedactedFields,
	}
}
