package config

import (
	"errors"
	"time"
)

const defaultManipulationScanInterval = 5 * time.Minute

type PollerConfig struct {
	RoundInterval            time.Duration `mapstructure:"round-interval"`
	StalenessCheckInterval   time.Duration `mapstructure:"staleness-check-interval"`
	StaleSnapshotsLimit      uint64        `mapstructure:"stale-snapshots-limit"`
	ManipulationScanInterval time.Duration `mapstructure:"manipulation-scan-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.RoundInterval <= 0 {
		return errors.New("round-interval must be positive")
	}

	if cfg.StalenessCheckInterval <= 0 {
		return errors.New("staleness-check-interval must be positive")
	}

	if cfg.StaleSnapshotsLimit <= 0 {
		return errors.New("stale-snapshots-limit must be positive")
	}

	if cfg.ManipulationScanInterval <= 0 {
		cfg.ManipulationScanInterval = defaultManipulationScanInterval
	}

	return nil
}
