package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Assign AssignConfig `yaml:"assign" mapstructure:"assign"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// PathsConfig configures where input datasets and the run database live.
type PathsConfig struct {
	Data     string `yaml:"data" mapstructure:"data"`
	Geometry string `yaml:"geometry" mapstructure:"geometry"`
	Database string `yaml:"database" mapstructure:"database"`
}

// AssignConfig holds the default buffer ladder parameters. Commands may
// override them per invocation via flags.
type AssignConfig struct {
	Step    float64 `yaml:"step" mapstructure:"step"`
	Limit   float64 `yaml:"limit" mapstructure:"limit"`
	Workers int     `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REGIOMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.data", "data")
	v.SetDefault("paths.geometry", "data/geometries")
	v.SetDefault("paths.database", "regiomap.db")
	v.SetDefault("assign.step", 0.05)
	v.SetDefault("assign.limit", 1.0)
	v.SetDefault("assign.workers", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
