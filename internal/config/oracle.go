package config

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

const (
	// Manipulation detection needs at least three points, so the stored
	// history can never be allowed to shrink below that.
	minHistoryWindow = 3

	maxReliability = 10_000
)

type OracleConfig struct {
	// HistoryWindow caps how many price points are retained per pool.
	HistoryWindow uint64 `mapstructure:"history-window"`
	// SupportedSchemaVersion is the semver major accepted from operator
	// attestation messages, e.g. "v1".
	SupportedSchemaVersion string `mapstructure:"supported-schema-version"`
	// DefaultReliability is stamped on attestations from operators without a
	// tracked reliability record yet.
	DefaultReliability uint64 `mapstructure:"default-reliability"`
}

func (cfg *OracleConfig) Validate() error {
	if cfg.HistoryWindow < minHistoryWindow {
		return fmt.Errorf("history-window must be at least %d", minHistoryWindow)
	}
	if !semver.IsValid(cfg.SupportedSchemaVersion) {
		return fmt.Errorf("supported-schema-version %q is not a valid semver", cfg.SupportedSchemaVersion)
	}
	if cfg.DefaultReliability > maxReliability {
		return errors.New("default-reliability must be at most 10000")
	}

	return nil
}
