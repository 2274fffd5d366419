package db

import (
	"context"
	"time"

	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) UpsertConsensusState(ctx context.Context, state *model.ConsensusStateDocument) error {
	return d.run("UpsertConsensusState", func() error {
		return d.db.UpsertConsensusState(ctx, state)
	})
}

func (d *DbWithMetrics) GetConsensusState(ctx context.Context, poolID string) (result *model.ConsensusStateDocument, err error) {
	//nolint:errcheck
	d.run("GetConsensusState", func() error {
		result, err = d.db.GetConsensusState(ctx, poolID)
		return err
	})
	return
}

func (d *DbWithMetrics) UpdateConsensusStatus(ctx context.Context, poolID string, qualifiedPreviousStatuses []types.ConsensusStatus, newStatus types.ConsensusStatus) error {
	return d.run("UpdateConsensusStatus", func() error {
		return d.db.UpdateConsensusStatus(ctx, poolID, qualifiedPreviousStatuses, newStatus)
	})
}

func (d *DbWithMetrics) FindExpiredConsensusStates(ctx context.Context, now int64, limit uint64) (result []model.ConsensusStateDocument, err error) {
	//nolint:errcheck
	d.run("FindExpiredConsensusStates", func() error {
		result, err = d.db.FindExpiredConsensusStates(ctx, now, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertOracleConfig(ctx context.Context, cfg *model.OracleConfigDocument) error {
	return d.run("UpsertOracleConfig", func() error {
		return d.db.UpsertOracleConfig(ctx, cfg)
	})
}

func (d *DbWithMetrics) GetOracleConfig(ctx context.Context, poolID string) (result *model.OracleConfigDocument, err error) {
	//nolint:errcheck
	d.run("GetOracleConfig", func() error {
		result, err = d.db.GetOracleConfig(ctx, poolID)
		return err
	})
	return
}

func (d *DbWithMetrics) ListOracleConfigs(ctx context.Context) (result []*model.OracleConfigDocument, err error) {
	//nolint:errcheck
	d.run("ListOracleConfigs", func() error {
		result, err = d.db.ListOracleConfigs(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) GetOperator(ctx context.Context, operatorID string) (result *model.OperatorDocument, err error) {
	//nolint:errcheck
	d.run("GetOperator", func() error {
		result, err = d.db.GetOperator(ctx, operatorID)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertOperator(ctx context.Context, operator *model.OperatorDocument) error {
	return d.run("UpsertOperator", func() error {
		return d.db.UpsertOperator(ctx, operator)
	})
}

func (d *DbWithMetrics) UpdateOperatorReliability(ctx context.Context, operatorID string, reliability uint64, lastSeen int64) error {
	return d.run("UpdateOperatorReliability", func() error {
		return d.db.UpdateOperatorReliability(ctx, operatorID, reliability, lastSeen)
	})
}

func (d *DbWithMetrics) InsertPricePoint(ctx context.Context, point *model.PriceHistoryDocument) error {
	return d.run("InsertPricePoint", func() error {
		return d.db.InsertPricePoint(ctx, point)
	})
}

func (d *DbWithMetrics) GetPriceHistory(ctx context.Context, poolID string, limit int64) (result []model.PriceHistoryDocument, err error) {
	//nolint:errcheck
	d.run("GetPriceHistory", func() error {
		result, err = d.db.GetPriceHistory(ctx, poolID, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) PrunePriceHistory(ctx context.Context, poolID string, keep uint64) error {
	return d.run("PrunePriceHistory", func() error {
		return d.db.PrunePriceHistory(ctx, poolID, keep)
	})
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
