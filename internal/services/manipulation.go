package services

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
	"github.com/stakequorum/consensus-oracle/internal/utils/poller"
)

func (s *Service) StartManipulationScanner(ctx context.Context) {
	scanPoller := poller.NewPoller(
		s.cfg.Poller.ManipulationScanInterval,
		metrics.RecordPollerDuration("manipulation_scan", s.scanPriceHistories),
	)
	go scanPoller.Start(ctx)
}

// scanPriceHistories runs the manipulation detector over every enabled
// pool's retained price series. Findings feed metrics and logs for
// alerting; they do not feed back into consensus computation.
func (s *Service) scanPriceHistories(ctx context.Context) error {
	configs, err := s.db.ListOracleConfigs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list oracle configs: %w", err)
	}

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if err := s.scanPool(ctx, cfg.PoolID); err != nil {
			log.Error().Err(err).
				Str("pool_id", cfg.PoolID).
				Msg("Failed to scan pool price history")
		}
	}

	return nil
}

func (s *Service) scanPool(ctx context.Context, poolID string) error {
	history, err := s.db.GetPriceHistory(ctx, poolID, int64(s.cfg.Oracle.HistoryWindow))
	if err != nil {
		return fmt.Errorf("failed to get price history: %w", err)
	}

	prices := make([]sdkmath.Int, 0, len(history))
	timestamps := make([]int64, 0, len(history))
	for _, point := range history {
		price, ok := sdkmath.NewIntFromString(point.Price)
		if !ok {
			return fmt.Errorf("corrupt price %q in history for pool %s", point.Price, poolID)
		}
		prices = append(prices, price)
		timestamps = append(timestamps, point.Timestamp)
	}

	finding, err := consensus.DetectManipulation(prices, timestamps)
	if err != nil {
		// Young pools have not accumulated enough points yet.
		if errors.Is(err, consensus.ErrInvalidInput) {
			log.Debug().
				Str("pool_id", poolID).
				Int("points", len(prices)).
				Msg("Skipping manipulation scan, series too short")
			return nil
		}
		return fmt.Errorf("manipulation detection failed: %w", err)
	}

	metrics.RecordManipulationSuspicion(poolID, finding.SuspicionLevel)

	if finding.Manipulated {
		metrics.IncManipulationFindings()
		log.Warn().
			Str("pool_id", poolID).
			Uint64("suspicion_level", finding.SuspicionLevel).
			Uint64("avg_volatility_bps", finding.AvgVolatilityBps).
			Uint64("max_deviation_bps", finding.MaxDeviationBps).
			Msg("Manipulation pattern detected in price history")
	}

	return nil
}
