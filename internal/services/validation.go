package services

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

// PriceValidation is the outcome of one validation request: the gate
// decision plus the consensus snapshot it was judged against. When the
// pool's oracle is disabled the action passes untouched and the snapshot
// fields are zero.
type PriceValidation struct {
	Result         consensus.ValidationResult
	OracleEnabled  bool
	ConsensusPrice sdkmath.Int
	Confidence     uint64
	ObservedAt     int64
}

// ValidatePriceForPool gates one proposed price for a dependent action
// against the pool's latest consensus snapshot. Checks run in fixed order
// with the first failure winning: confidence, staleness, deviation, then the
// participating stake floor. A denial publishes a swap blocked event.
func (s *Service) ValidatePriceForPool(
	ctx context.Context,
	poolID string,
	actor string,
	price sdkmath.Int,
) (*PriceValidation, *types.Error) {
	oracleCfg, err := s.db.GetOracleConfig(ctx, poolID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewNotFoundError(fmt.Errorf("no oracle config for pool %s", poolID))
		}
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to get oracle config: %w", err))
	}

	if !oracleCfg.Enabled {
		metrics.RecordPriceValidation(metrics.ValidationBypassed)
		return &PriceValidation{
			Result:         consensus.ValidationResult{Valid: true},
			OracleEnabled:  false,
			ConsensusPrice: sdkmath.ZeroInt(),
		}, nil
	}

	state, err := s.db.GetConsensusState(ctx, poolID)
	if err != nil {
		if db.IsNotFoundError(err) {
			// No round has completed yet; a missing snapshot is a
			// zero-confidence state, not an internal failure.
			return s.finishValidation(ctx, poolID, actor, price, sdkmath.ZeroInt(), &PriceValidation{
				Result:         consensus.ValidationResult{Reason: consensus.ReasonLowConfidence},
				OracleEnabled:  true,
				ConsensusPrice: sdkmath.ZeroInt(),
			}), nil
		}
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to get consensus state: %w", err))
	}

	consensusPrice, ok := sdkmath.NewIntFromString(state.Price)
	if !ok {
		return nil, types.NewInternalServiceError(fmt.Errorf("corrupt consensus price %q for pool %s", state.Price, poolID))
	}

	validation := &PriceValidation{
		OracleEnabled:  true,
		ConsensusPrice: consensusPrice,
		Confidence:     state.ConfidenceLevel,
		ObservedAt:     state.ObservedAt,
	}

	validation.Result = consensus.ValidatePrice(
		price,
		consensusPrice,
		state.ConfidenceLevel,
		state.ObservedAt,
		time.Now().Unix(),
		consensus.ValidationConfig{
			MinConfidence:   oracleCfg.ConsensusThresholdBps,
			MaxStaleness:    oracleCfg.MaxStalenessSeconds,
			MaxDeviationBps: oracleCfg.MaxPriceDeviationBps,
		},
	)

	if validation.Result.Valid {
		if reason, err := s.checkStakeFloor(oracleCfg, state); err != nil {
			return nil, err
		} else if reason != "" {
			validation.Result = consensus.ValidationResult{
				DeviationBps: validation.Result.DeviationBps,
				Reason:       reason,
			}
		}
	}

	return s.finishValidation(ctx, poolID, actor, price, consensusPrice, validation), nil
}

// checkStakeFloor compares the snapshot's participating stake against the
// pool's configured minimum. It returns the denial reason, or empty when the
// floor is met.
func (s *Service) checkStakeFloor(oracleCfg *model.OracleConfigDocument, state *model.ConsensusStateDocument) (string, *types.Error) {
	minStake, ok := sdkmath.NewIntFromString(oracleCfg.MinStakeRequired)
	if !ok {
		return "", types.NewInternalServiceError(fmt.Errorf("corrupt min stake %q for pool %s", oracleCfg.MinStakeRequired, oracleCfg.PoolID))
	}

	participating, ok := sdkmath.NewIntFromString(state.ParticipatingStake)
	if !ok {
		return "", types.NewInternalServiceError(fmt.Errorf("corrupt participating stake %q for pool %s", state.ParticipatingStake, state.PoolID))
	}

	if participating.LT(minStake) {
		return consensus.ReasonInsufficientStake, nil
	}
	return "", nil
}

// finishValidation records the validation metric and publishes a swap
// blocked event on denial. Event publication failures are logged, never
// surfaced; the caller still gets its decision.
func (s *Service) finishValidation(
	ctx context.Context,
	poolID string,
	actor string,
	requestedPrice sdkmath.Int,
	consensusPrice sdkmath.Int,
	validation *PriceValidation,
) *PriceValidation {
	if validation.Result.Valid {
		metrics.RecordPriceValidation(metrics.ValidationAllowed)
		return validation
	}

	metrics.RecordPriceValidation(metrics.ValidationDenied)
	if err := s.emitSwapBlockedEvent(ctx, poolID, actor, requestedPrice, consensusPrice, validation.Result.Reason); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("pool_id", poolID).
			Str("actor", actor).
			Msg("Failed to publish swap blocked event")
	}

	return validation
}

// GetConsensusSnapshot returns the pool's latest stored consensus snapshot.
func (s *Service) GetConsensusSnapshot(ctx context.Context, poolID string) (*model.ConsensusStateDocument, *types.Error) {
	state, err := s.db.GetConsensusState(ctx, poolID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewNotFoundError(fmt.Errorf("no consensus snapshot for pool %s", poolID))
		}
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to get consensus state: %w", err))
	}

	return state, nil
}

// UpsertPoolConfig writes one pool's oracle configuration. Governance owns
// these values; the service persists them as given.
func (s *Service) UpsertPoolConfig(ctx context.Context, cfg *model.OracleConfigDocument) *types.Error {
	if cfg.ConsensusThresholdBps < consensus.MinConsensusThresholdBps {
		return types.NewValidationFailedError(fmt.Errorf(
			"consensus threshold %d is below the %d bps minimum",
			cfg.ConsensusThresholdBps, consensus.MinConsensusThresholdBps,
		))
	}
	if _, ok := sdkmath.NewIntFromString(cfg.MinStakeRequired); !ok {
		return types.NewValidationFailedError(fmt.Errorf("min stake %q is not a valid integer", cfg.MinStakeRequired))
	}
	if cfg.MaxStalenessSeconds <= 0 {
		return types.NewValidationFailedError(fmt.Errorf("max staleness must be positive"))
	}

	if err := s.db.UpsertOracleConfig(ctx, cfg); err != nil {
		return types.NewInternalServiceError(fmt.Errorf("failed to upsert oracle config: %w", err))
	}

	return nil
}
