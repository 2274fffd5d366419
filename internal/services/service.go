package services

import (
	"context"

	"github.com/stakequorum/consensus-oracle/consumer"
	"github.com/stakequorum/consensus-oracle/internal/config"
	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/queue"
)

type Service struct {
	cfg           *config.Config
	db            db.DbInterface
	queueManager  *queue.QueueManager
	eventConsumer consumer.EventConsumer
	rounds        *roundBuffer
	roundLocks    *roundLocks
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	qm *queue.QueueManager,
	eventConsumer consumer.EventConsumer,
) *Service {
	return &Service{
		cfg:           cfg,
		db:            db,
		queueManager:  qm,
		eventConsumer: eventConsumer,
		rounds:        newRoundBuffer(),
		roundLocks:    newRoundLocks(),
	}
}

func (s *Service) StartOracleService(ctx context.Context) {
	// Recompute consensus for pools with buffered attestations
	s.StartRoundScheduler(ctx)
	// Expire consensus snapshots past their pool's staleness bound
	s.StartStalenessChecker(ctx)
	// Scan retained price history for manipulation patterns
	s.StartManipulationScanner(ctx)
	// Keep consuming attestations in the main thread
	s.StartAttestationConsumer(ctx)
}
