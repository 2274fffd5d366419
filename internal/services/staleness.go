package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
	"github.com/stakequorum/consensus-oracle/internal/types"
	"github.com/stakequorum/consensus-oracle/internal/utils/poller"
)

func (s *Service) StartStalenessChecker(ctx context.Context) {
	stalenessPoller := poller.NewPoller(
		s.cfg.Poller.StalenessCheckInterval,
		metrics.RecordPollerDuration("staleness_check", s.expireStaleSnapshots),
	)
	go stalenessPoller.Start(ctx)
}

// expireStaleSnapshots transitions consensus snapshots past their pool's
// staleness bound from CONSENSUS_REACHED to STALE. The marker is advisory
// for readers; the validation gate recomputes staleness from observed_at on
// every call, so a lagging sweep never weakens the gate.
func (s *Service) expireStaleSnapshots(ctx context.Context) error {
	now := time.Now().Unix()

	expired, err := s.db.FindExpiredConsensusStates(ctx, now, s.cfg.Poller.StaleSnapshotsLimit)
	if err != nil {
		return fmt.Errorf("failed to find expired consensus states: %w", err)
	}

	metrics.RecordStaleSnapshotsCount(len(expired))

	for _, state := range expired {
		err := s.db.UpdateConsensusStatus(
			ctx,
			state.PoolID,
			types.QualifiedStatesForStale(),
			types.StatusStale,
		)
		if err != nil {
			// A fresh round replaced the snapshot between the query and the
			// guarded update; the newer state wins.
			if db.IsNotFoundError(err) {
				log.Debug().
					Str("pool_id", state.PoolID).
					Msg("Skipping stale transition, snapshot no longer qualified")
				continue
			}
			return fmt.Errorf("failed to mark consensus state stale: %w", err)
		}

		log.Info().
			Str("pool_id", state.PoolID).
			Int64("observed_at", state.ObservedAt).
			Msg("Marked consensus snapshot stale")
	}

	return nil
}
