package config

import (
	"errors"
	"fmt"
	"time"
)

type ApiConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
}

func (cfg *ApiConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("missing api host")
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return fmt.Errorf("api port must be between 1024 and 65535, got %d", cfg.Port)
	}
	if cfg.WriteTimeout <= 0 {
		return errors.New("write-timeout must be positive")
	}
	if cfg.ReadTimeout <= 0 {
		return errors.New("read-timeout must be positive")
	}

	return nil
}
