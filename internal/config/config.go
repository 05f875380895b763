package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// envReplacer maps nested keys to env names: log.level -> PROPSCHEMA_LOG_LEVEL.
var envReplacer = strings.NewReplacer(".", "_")

// Config represents the propschema CLI configuration
type Config struct {
	Lang   string    `mapstructure:"lang"`
	Output string    `mapstructure:"output"`
	Color  bool      `mapstructure:"color"`
	Log    LogConfig `mapstructure:"log"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads propschema.yaml from the working directory (or path when set),
// then PROPSCHEMA_* environment variables. A missing default file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("lang", "en")
	v.SetDefault("output", "json")
	v.SetDefault("color", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.development", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("propschema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PROPSCHEMA")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Logger builds the zap logger described by the configuration. Logs go to
// stderr so command output stays machine readable.
func (c *Config) Logger() (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func validate(cfg *Config) error {
	switch cfg.Output {
	case "json", "yaml", "toml":
	default:
		return fmt.Errorf("output must be json, yaml or toml, got: %s", cfg.Output)
	}
	switch cfg.Lang {
	case "en", "ja":
	default:
		return fmt.Errorf("lang must be en or ja, got: %s", cfg.Lang)
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
