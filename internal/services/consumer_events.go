package services

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/queue"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

func (s *Service) emitConsensusReachedEvent(
	ctx context.Context,
	poolID string,
	result consensus.Result,
	attestationCount int,
) *types.Error {
	ev := queue.NewConsensusReachedEvent(
		poolID,
		result.ConsensusPrice,
		result.TotalStake,
		attestationCount,
		result.ConfidenceLevel,
	)

	if err := s.eventConsumer.PushConsensusReachedEvent(ctx, &ev); err != nil {
		return types.NewInternalServiceError(fmt.Errorf("failed to push the consensus reached event to the queue: %w", err))
	}
	return nil
}

func (s *Service) emitSwapBlockedEvent(
	ctx context.Context,
	poolID string,
	actor string,
	requestedPrice sdkmath.Int,
	consensusPrice sdkmath.Int,
	reason string,
) *types.Error {
	ev := queue.NewSwapBlockedEvent(poolID, actor, requestedPrice, consensusPrice, reason)

	if err := s.eventConsumer.PushSwapBlockedEvent(ctx, &ev); err != nil {
		return types.NewInternalServiceError(fmt.Errorf("failed to push the swap blocked event to the queue: %w", err))
	}
	return nil
}

func (s *Service) emitManipulationDetectedEvent(
	ctx context.Context,
	poolID string,
	att consensus.Attestation,
	consensusPrice sdkmath.Int,
	deviationBps uint64,
) *types.Error {
	ev := queue.NewManipulationDetectedEvent(poolID, att.OperatorID, att.Price, consensusPrice, deviationBps)

	if err := s.eventConsumer.PushManipulationDetectedEvent(ctx, &ev); err != nil {
		return types.NewInternalServiceError(fmt.Errorf("failed to push the manipulation detected event to the queue: %w", err))
	}
	return nil
}
