package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerConfig_Validate(t *testing.T) {
	t.Run("all required fields set", func(t *testing.T) {
		cfg := &PollerConfig{
			RoundInterval:            30 * time.Second,
			StalenessCheckInterval:   1 * time.Minute,
			StaleSnapshotsLimit:      100,
			ManipulationScanInterval: 3 * time.Minute,
		}
		err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, 3*time.Minute, cfg.ManipulationScanInterval)
	})

	t.Run("manipulation scan interval not set - should use default", func(t *testing.T) {
		cfg := &PollerConfig{
			RoundInterval:          30 * time.Second,
			StalenessCheckInterval: 1 * time.Minute,
			StaleSnapshotsLimit:    100,
		}
		err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, defaultManipulationScanInterval, cfg.ManipulationScanInterval)
		assert.Equal(t, 5*time.Minute, cfg.ManipulationScanInterval)
	})

	t.Run("manipulation scan interval negative - should use default", func(t *testing.T) {
		cfg := &PollerConfig{
			RoundInterval:            30 * time.Second,
			StalenessCheckInterval:   1 * time.Minute,
			StaleSnapshotsLimit:      100,
			ManipulationScanInterval: -1 * time.Minute,
		}
		err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, defaultManipulationScanInterval, cfg.ManipulationScanInterval)
	})

	t.Run("round interval not set - should error", func(t *testing.T) {
		cfg := &PollerConfig{
			StalenessCheckInterval: 1 * time.Minute,
			StaleSnapshotsLimit:    100,
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "round-interval must be positive")
	})

	t.Run("staleness check interval not set - should error", func(t *testing.T) {
		cfg := &PollerConfig{
			RoundInterval:       30 * time.Second,
			StaleSnapshotsLimit: 100,
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "staleness-check-interval must be positive")
	})

	t.Run("stale snapshots limit not set - should error", func(t *testing.T) {
		cfg := &PollerConfig{
			RoundInterval:          30 * time.Second,
			StalenessCheckInterval: 1 * time.Minute,
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stale-snapshots-limit must be positive")
	})
}
