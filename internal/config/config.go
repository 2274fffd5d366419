package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Db      DbConfig      `mapstructure:"db-config"`
	Queue   QueueConfig   `mapstructure:"queue-config"`
	Api     ApiConfig     `mapstructure:"api-config"`
	Metrics MetricsConfig `mapstructure:"metrics-config"`
	Oracle  OracleConfig  `mapstructure:"oracle-config"`
	Poller  PollerConfig  `mapstructure:"poller-config"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Db.Validate(); err != nil {
		return err
	}
	if err := cfg.Queue.Validate(); err != nil {
		return err
	}
	if err := cfg.Api.Validate(); err != nil {
		return err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}
	if err := cfg.Oracle.Validate(); err != nil {
		return err
	}
	if err := cfg.Poller.Validate(); err != nil {
		return err
	}

	return nil
}

// New returns a fully parsed Config object from the given config file path.
// Every key can be overridden from the environment, with dashes and dots
// mapped to underscores.
func New(cfgFile string) (*Config, error) {
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
