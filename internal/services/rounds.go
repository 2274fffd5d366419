package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
	"github.com/stakequorum/consensus-oracle/internal/utils/poller"
)

const maxConcurrentPoolRounds = 8

// roundLocks serializes collect, compute and publish per pool so a slow
// round can never overwrite the snapshot a later round already wrote.
type roundLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newRoundLocks() *roundLocks {
	return &roundLocks{m: make(map[string]*sync.Mutex)}
}

func (l *roundLocks) forPool(poolID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.m[poolID]
	if !ok {
		lock = &sync.Mutex{}
		l.m[poolID] = lock
	}
	return lock
}

func (s *Service) StartRoundScheduler(ctx context.Context) {
	roundPoller := poller.NewPoller(
		s.cfg.Poller.RoundInterval,
		metrics.RecordPollerDuration("consensus_rounds", s.runConsensusRounds),
	)
	go roundPoller.Start(ctx)
}

// runConsensusRounds drains the attestation buffer and recomputes every pool
// that received attestations since the last tick. Pools run concurrently
// with a bounded pool; a failed pool does not stop the others.
func (s *Service) runConsensusRounds(ctx context.Context) error {
	buffered := s.rounds.drain()
	if len(buffered) == 0 {
		return nil
	}

	workers := pool.New().WithMaxGoroutines(maxConcurrentPoolRounds).WithContext(ctx)
	for poolID, atts := range buffered {
		workers.Go(func(ctx context.Context) error {
			return s.runPoolRound(ctx, poolID, atts)
		})
	}

	return workers.Wait()
}

func (s *Service) runPoolRound(ctx context.Context, poolID string, atts []consensus.Attestation) error {
	lock := s.roundLocks.forPool(poolID)
	lock.Lock()
	defer lock.Unlock()

	startTime := time.Now()
	outcome, err := s.computeAndPublish(ctx, poolID, atts)
	metrics.RecordConsensusRound(time.Since(startTime), outcome)

	if err != nil {
		return fmt.Errorf("consensus round for pool %s: %w", poolID, err)
	}
	return nil
}

// computeAndPublish runs the round pipeline for one pool: outlier filtering,
// consensus computation, snapshot persistence, event publication, history
// append and reliability updates. It returns the metrics outcome label
// alongside any error.
func (s *Service) computeAndPublish(ctx context.Context, poolID string, atts []consensus.Attestation) (string, error) {
	log := log.Ctx(ctx)

	oracleCfg, err := s.db.GetOracleConfig(ctx, poolID)
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Warn().
				Str("pool_id", poolID).
				Msg("Dropping round for pool without oracle config")
			return metrics.RoundOutcomeError, nil
		}
		return metrics.RoundOutcomeError, fmt.Errorf("failed to get oracle config: %w", err)
	}
	if !oracleCfg.Enabled {
		log.Debug().
			Str("pool_id", poolID).
			Msg("Skipping round for disabled oracle")
		return metrics.RoundOutcomeNoConsensus, nil
	}

	kept := consensus.FilterOutliers(atts, oracleCfg.MaxPriceDeviationBps)
	filtered := filteredOut(atts, kept)

	result, err := consensus.Compute(kept, oracleCfg.ConsensusThresholdBps)
	if err != nil {
		// A bad threshold is a pool misconfiguration; the round is dropped
		// rather than retried because recomputing changes nothing.
		log.Error().Err(err).
			Str("pool_id", poolID).
			Uint64("threshold_bps", oracleCfg.ConsensusThresholdBps).
			Msg("Consensus computation rejected the round input")
		return metrics.RoundOutcomeError, nil
	}

	observedAt := time.Now().Unix()
	expiresAt := observedAt + oracleCfg.MaxStalenessSeconds
	state := model.FromRoundOutcome(poolID, result, len(kept), observedAt, expiresAt)
	if err := s.db.UpsertConsensusState(ctx, state); err != nil {
		return metrics.RoundOutcomeError, fmt.Errorf("failed to upsert consensus state: %w", err)
	}

	log.Info().
		Str("pool_id", poolID).
		Str("price", result.ConsensusPrice.String()).
		Uint64("confidence", result.ConfidenceLevel).
		Bool("has_consensus", result.HasConsensus).
		Int("attestations", len(kept)).
		Int("filtered", len(filtered)).
		Msg("Consensus round completed")

	if result.HasConsensus {
		if err := s.emitConsensusReachedEvent(ctx, poolID, result, len(kept)); err != nil {
			log.Error().Err(err).
				Str("pool_id", poolID).
				Msg("Failed to publish consensus reached event")
		}

		if err := s.appendPriceHistory(ctx, poolID, state); err != nil {
			log.Error().Err(err).
				Str("pool_id", poolID).
				Msg("Failed to append price history")
		}
	}

	s.recordRoundReliability(ctx, kept, filtered, result)

	for _, att := range filtered {
		deviation := consensus.DeviationBps(att.Price, result.ConsensusPrice)
		if err := s.emitManipulationDetectedEvent(ctx, poolID, att, result.ConsensusPrice, deviation); err != nil {
			log.Error().Err(err).
				Str("pool_id", poolID).
				Str("operator_id", att.OperatorID).
				Msg("Failed to publish manipulation detected event")
		}
	}

	if result.HasConsensus {
		return metrics.RoundOutcomeConsensus, nil
	}
	return metrics.RoundOutcomeNoConsensus, nil
}

// filteredOut returns the attestations present in all but missing from kept,
// preserving input order. Survivors keep their order too, so a single linear
// walk with a cursor is enough.
func filteredOut(all, kept []consensus.Attestation) []consensus.Attestation {
	if len(all) == len(kept) {
		return nil
	}

	var removed []consensus.Attestation
	i := 0
	for _, att := range all {
		if i < len(kept) && kept[i].OperatorID == att.OperatorID {
			i++
			continue
		}
		removed = append(removed, att)
	}
	return removed
}

func (s *Service) appendPriceHistory(ctx context.Context, poolID string, state *model.ConsensusStateDocument) error {
	point := model.NewPriceHistoryDocument(poolID, state.Price, state.ObservedAt)
	if err := s.db.InsertPricePoint(ctx, point); err != nil {
		// Two rounds in the same second collide on the pool+timestamp
		// index; the retained series already has this point.
		if db.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert price point: %w", err)
	}

	if err := s.db.PrunePriceHistory(ctx, poolID, s.cfg.Oracle.HistoryWindow); err != nil {
		return fmt.Errorf("failed to prune price history: %w", err)
	}

	return nil
}

// recordRoundReliability folds each operator's performance this round into
// its tracked reliability. Accuracy is 10000 minus the deviation from the
// consensus price, floored at zero; operators the filter removed score zero.
// Rounds without consensus do not move reliability because there is no
// price to judge against.
func (s *Service) recordRoundReliability(
	ctx context.Context,
	kept []consensus.Attestation,
	filtered []consensus.Attestation,
	result consensus.Result,
) {
	if !result.HasConsensus {
		return
	}

	log := log.Ctx(ctx)
	now := time.Now().Unix()

	for _, att := range kept {
		deviation := consensus.DeviationBps(att.Price, result.ConsensusPrice)
		sample := uint64(0)
		if deviation < consensus.BasisPointsDivisor {
			sample = consensus.BasisPointsDivisor - deviation
		}
		if err := s.updateOperatorReliability(ctx, att, sample, now); err != nil {
			log.Error().Err(err).
				Str("operator_id", att.OperatorID).
				Msg("Failed to update operator reliability")
		}
	}

	for _, att := range filtered {
		if err := s.updateOperatorReliability(ctx, att, 0, now); err != nil {
			log.Error().Err(err).
				Str("operator_id", att.OperatorID).
				Msg("Failed to update filtered operator reliability")
		}
	}
}

// updateOperatorReliability applies the smoothed reliability update
// newReliability = (old*9 + sample)/10. Operators without a record start
// from the configured default.
func (s *Service) updateOperatorReliability(ctx context.Context, att consensus.Attestation, sample uint64, now int64) error {
	previous := att.Reliability
	if previous > consensus.BasisPointsDivisor {
		previous = consensus.BasisPointsDivisor
	}
	smoothed := (previous*9 + sample) / 10

	return s.db.UpdateOperatorReliability(ctx, att.OperatorID, smoothed, now)
}
