package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/types"
	"github.com/stakequorum/consensus-oracle/internal/utils/state"
)

// UpdateOperatorState moves an operator to a new administrative state. Only
// transitions allowed by the operator state machine go through; suspending an
// operator stops its attestations from entering rounds at intake.
func (s *Service) UpdateOperatorState(
	ctx context.Context,
	operatorID string,
	newState types.OperatorState,
) *types.Error {
	operator, err := s.db.GetOperator(ctx, operatorID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return types.NewNotFoundError(fmt.Errorf("operator %s not found", operatorID))
		}
		return types.NewInternalServiceError(fmt.Errorf("failed to get operator: %w", err))
	}

	if operator.State == newState {
		return nil
	}

	if !state.IsQualifiedStateForOperatorStateChange(operator.State.String(), newState.String()) {
		return types.NewValidationFailedError(fmt.Errorf(
			"operator %s cannot move from %s to %s",
			operatorID, operator.State, newState,
		))
	}

	operator.State = newState
	if err := s.db.UpsertOperator(ctx, operator); err != nil {
		return types.NewInternalServiceError(fmt.Errorf("failed to upsert operator: %w", err))
	}

	log.Ctx(ctx).Info().
		Str("operator_id", operatorID).
		Str("state", newState.String()).
		Msg("Operator state updated")

	return nil
}

// HealthCheck verifies the database connection is alive.
func (s *Service) HealthCheck(ctx context.Context) *types.Error {
	if err := s.db.Ping(ctx); err != nil {
		return types.NewInternalServiceError(fmt.Errorf("database ping failed: %w", err))
	}
	return nil
}
