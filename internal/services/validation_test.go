package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/queue"
	"github.com/stakequorum/consensus-oracle/internal/types"
	"github.com/stakequorum/consensus-oracle/tests/mocks"
)

func freshConsensusState(poolID string) *model.ConsensusStateDocument {
	now := time.Now().Unix()
	return &model.ConsensusStateDocument{
		PoolID:             poolID,
		Price:              price18(2000).String(),
		TotalStake:         price18(30).String(),
		ParticipatingStake: price18(30).String(),
		ConfidenceLevel:    9000,
		ConvergenceScore:   9900,
		AttestationCount:   3,
		Status:             types.StatusConsensusReached,
		ObservedAt:         now,
		ExpiresAt:          now + 300,
	}
}

func expectSwapBlocked(eventConsumer *mocks.EventConsumer, poolID, reason string) {
	eventConsumer.On("PushSwapBlockedEvent", mock.Anything, mock.MatchedBy(func(ev *queue.SwapBlockedEvent) bool {
		return ev.PoolID == poolID && ev.Reason == reason && ev.Actor == "amm-router" && ev.MessageID != ""
	})).Return(nil)
}

func TestValidatePriceForPool(t *testing.T) {
	const poolID = "pool-1"
	const actor = "amm-router"

	t.Run("allowed within deviation", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		eventConsumer := mocks.NewEventConsumer(t)
		srv := NewService(testConfig(), database, nil, eventConsumer)

		database.On("GetOracleConfig", mock.Anything, poolID).Return(enabledOracleConfig(poolID), nil)
		database.On("GetConsensusState", mock.Anything, poolID).Return(freshConsensusState(poolID), nil)

		validation, err := srv.ValidatePriceForPool(t.Context(), poolID, actor, price18(2010))
		require.Nil(t, err)
		require.True(t, validation.Result.Valid)
		require.Equal(t, uint64(50), validation.Result.DeviationBps)
		require.True(t, validation.OracleEnabled)
		require.Equal(t, price18(2000), validation.ConsensusPrice)
		require.Equal(t, uint64(9000), validation.Confidence)
	})

	t.Run("bypassed when the oracle is disabled", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		eventConsumer := mocks.NewEventConsumer(t)
		srv := NewService(testConfig(), database, nil, eventConsumer)

		oracleCfg := enabledOracleConfig(poolID)
		oracleCfg.Enabled = false
		database.On("GetOracleConfig", mock.Anything, poolID).Return(oracleCfg, nil)

		validation, err := srv.ValidatePriceForPool(t.Context(), poolID, actor, price18(9999))
		require.Nil(t, err)
		require.True(t, validation.Result.Valid)
		require.False(t, validation.OracleEnabled)
		require.True(t, validation.ConsensusPrice.IsZero())
	})

	t.Run("denied without a snapshot", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		eventConsumer := mocks.NewEventConsumer(t)
		srv := NewService(testConfig(), database, nil, eventConsumer)

		database.On("GetOracleConfig", mock.Anything, poolID).Return(enabledOracleConfig(poolID), nil)
		database.On("GetConsensusState", mock.Anything, poolID).
			Return(nil, &db.NotFoundError{Key: poolID, Message: "no consensus state"})
		expectSwapBlocked(eventConsumer, poolID, consensus.ReasonLowConfidence)

		validation, err := srv.ValidatePriceForPool(t.Context(), poolID, actor, price18(2010))
		require.Nil(t, err)
		require.False(t, validation.Result.Valid)
		require.Equal(t, consensus.ReasonLowConfidence, validation.Result.Reason)
		require.True(t, validation.OracleEnabled)
	})

	t.Run("denied on low confidence", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		eventConsumer := mocks.NewEventConsumer(t)
		srv := NewService(testConfig(), database, nil, eventConsumer)

		state := freshConsensusState(poolID)
		state.ConfidenceLevel = 6000

		database.On("GetOracleConfig", mock.Anything, poolID).Return(enabledOracleConfig(poolID), nil)
		database.On("GetConsensusState", mock.Anything, poolID).Return(state, nil)
		expectSwapBlocked(eventConsumer, poolID, consensus.ReasonLowConfidence)

		validation, err := srv.ValidatePriceForPool(t.Context(), poolID, actor, price18(2010))
		require.Nil(t, err)
		require.Equal(t, consensus.ReasonLowConfidence, validation.Result.Reason)
	})

	t.Run("denied on stale snapshot", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		eventConsumer := mocks.NewEventConsumer(t)
		srv := NewService(testConfig(), database, nil, eventConsumer)

		state := freshConsensusState(poolID)
		state.ObservedAt = time.Now().Unix() - 400

		database.On("GetOracleConfig", mock.Anything, poolID).Return(enabledOracleConfig(poolID), nil)
		database.On("GetConsensusState", mock.Anything, poolID).Return(state, nil)
		expectSwapBlocked(eventConsumer, poolID, consensus.ReasonStalePrice)

		validation, err := srv.ValidatePriceForPool(t.Context(), poolID, actor, price18(2010))
		require.Nil(t, err)
		require.Equal(t, consensus.ReasonStalePrice, validation.Result.Reason)
	})

	t.Run("denied on excess deviation", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		eventConsumer := mocks.NewEventConsumer(t)
		srv := NewService(testConfig(), database, nil, eventConsumer)

		database.On("GetOracleConfig", mock.Anything, poolID).Return(enabledOracleConfig(poolID), nil)
		database.On("GetConsensusState", mock.Anything, poolID).Return(freshConsensusState(poolID), nil)
		expectSwapBlocked(eventConsumer, poolID, consensus.ReasonExcessDeviation)

		validation, err := srv.ValidatePriceForPool(t.Context(), poolID, actor, price18(2500))
		require.Nil(t, err)
		require.Equal(t, consensus.ReasonExcessDeviation, validation.Result.Reason)
		require.Equal(t, uint64(2500), validation.Result.DeviationBps)
	})

	t.Run("denied below the stake floor", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		eventConsumer := mocks.NewEventConsumer(t)
		srv := NewService(testConfig(), database, nil, eventConsumer)

		oracleCfg := enabledOracleConfig(poolID)
		oracleCfg.MinStakeRequired = price18(50).String()

		database.On("GetOracleConfig", mock.Anything, poolID).Return(oracleCfg, nil)
		database.On("GetConsensusState", mock.Anything, poolID).Return(freshConsensusState(poolID), nil)
		expectSwapBlocked(eventConsumer, poolID, consensus.ReasonInsufficientStake)

		validation, err := srv.ValidatePriceForPool(t.Context(), poolID, actor, price18(2010))
		require.Nil(t, err)
		require.Equal(t, consensus.ReasonInsufficientStake, validation.Result.Reason)
		// The measured deviation survives the stake floor denial.
		require.Equal(t, uint64(50), validation.Result.DeviationBps)
	})

	t.Run("unknown pool", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		database.On("GetOracleConfig", mock.Anything, poolID).
			Return(nil, &db.NotFoundError{Key: poolID, Message: "no oracle config"})

		validation, err := srv.ValidatePriceForPool(t.Context(), poolID, actor, price18(2010))
		require.Nil(t, validation)
		require.NotNil(t, err)
		require.Equal(t, http.StatusNotFound, err.StatusCode)
		require.Equal(t, types.NotFound, err.ErrorCode)
	})
}

func TestGetConsensusSnapshot(t *testing.T) {
	const poolID = "pool-1"

	t.Run("found", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		state := freshConsensusState(poolID)
		database.On("GetConsensusState", mock.Anything, poolID).Return(state, nil)

		got, err := srv.GetConsensusSnapshot(t.Context(), poolID)
		require.Nil(t, err)
		require.Equal(t, state, got)
	})

	t.Run("not found", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		database.On("GetConsensusState", mock.Anything, poolID).
			Return(nil, &db.NotFoundError{Key: poolID, Message: "no consensus state"})

		got, err := srv.GetConsensusSnapshot(t.Context(), poolID)
		require.Nil(t, got)
		require.NotNil(t, err)
		require.Equal(t, http.StatusNotFound, err.StatusCode)
	})
}

func TestUpsertPoolConfig(t *testing.T) {
	t.Run("persists a valid config", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		oracleCfg := enabledOracleConfig("pool-1")
		database.On("UpsertOracleConfig", mock.Anything, oracleCfg).Return(nil)

		require.Nil(t, srv.UpsertPoolConfig(t.Context(), oracleCfg))
	})

	t.Run("rejects a threshold below the minimum", func(t *testing.T) {
		srv := NewService(testConfig(), mocks.NewDbInterface(t), nil, mocks.NewEventConsumer(t))

		oracleCfg := enabledOracleConfig("pool-1")
		oracleCfg.ConsensusThresholdBps = 5000

		err := srv.UpsertPoolConfig(t.Context(), oracleCfg)
		require.NotNil(t, err)
		require.Equal(t, http.StatusBadRequest, err.StatusCode)
	})

	t.Run("rejects an unparseable stake floor", func(t *testing.T) {
		srv := NewService(testConfig(), mocks.NewDbInterface(t), nil, mocks.NewEventConsumer(t))

		oracleCfg := enabledOracleConfig("pool-1")
		oracleCfg.MinStakeRequired = "ten"

		err := srv.UpsertPoolConfig(t.Context(), oracleCfg)
		require.NotNil(t, err)
		require.Equal(t, http.StatusBadRequest, err.StatusCode)
	})

	t.Run("rejects a non-positive staleness window", func(t *testing.T) {
		srv := NewService(testConfig(), mocks.NewDbInterface(t), nil, mocks.NewEventConsumer(t))

		oracleCfg := enabledOracleConfig("pool-1")
		oracleCfg.MaxStalenessSeconds = 0

		err := srv.UpsertPoolConfig(t.Context(), oracleCfg)
		require.NotNil(t, err)
		require.Equal(t, http.StatusBadRequest, err.StatusCode)
	})
}
