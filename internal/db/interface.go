package db

import (
	"context"

	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	UpsertConsensusState(ctx context.Context, state *model.ConsensusStateDocument) error
	GetConsensusState(ctx context.Context, poolID string) (*model.ConsensusStateDocument, error)
	UpdateConsensusStatus(
		ctx context.Context,
		poolID string,
		qualifiedPreviousStatuses []types.ConsensusStatus,
		newStatus types.ConsensusStatus,
	) error
	FindExpiredConsensusStates(ctx context.Context, now int64, limit uint64) ([]model.ConsensusStateDocument, error)

	UpsertOracleConfig(ctx context.Context, cfg *model.OracleConfigDocument) error
	GetOracleConfig(ctx context.Context, poolID string) (*model.OracleConfigDocument, error)
	ListOracleConfigs(ctx context.Context) ([]*model.OracleConfigDocument, error)

	GetOperator(ctx context.Context, operatorID string) (*model.OperatorDocument, error)
	UpsertOperator(ctx context.Context, operator *model.OperatorDocument) error
	UpdateOperatorReliability(ctx context.Context, operatorID string, reliability uint64, lastSeen int64) error

	InsertPricePoint(ctx context.Context, point *model.PriceHistoryDocument) error
	GetPriceHistory(ctx context.Context, poolID string, limit int64) ([]model.PriceHistoryDocument, error)
	PrunePriceHistory(ctx context.Context, poolID string, keep uint64) error
}
