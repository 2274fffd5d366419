package config

import (
	"errors"
	"time"
)

type QueueConfig struct {
	QueueUser           string        `mapstructure:"queue-user"`
	QueuePassword       string        `mapstructure:"queue-password"`
	Url                 string        `mapstructure:"url"`
	ProcessingTimeout   time.Duration `mapstructure:"processing-timeout"`
	MsgMaxRetryAttempts uint          `mapstructure:"msg-max-retry-attempts"`
	ReQueueDelayTime    time.Duration `mapstructure:"requeue-delay-time"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.QueueUser == "" {
		return errors.New("missing queue user")
	}
	if cfg.QueuePassword == "" {
		return errors.New("missing queue password")
	}
	if cfg.Url == "" {
		return errors.New("missing queue url")
	}
	if cfg.ProcessingTimeout <= 0 {
		return errors.New("processing-timeout must be positive")
	}
	if cfg.MsgMaxRetryAttempts == 0 {
		return errors.New("msg-max-retry-attempts must be positive")
	}
	if cfg.ReQueueDelayTime <= 0 {
		return errors.New("requeue-delay-time must be positive")
	}

	return nil
}
