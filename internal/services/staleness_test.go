package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/types"
	"github.com/stakequorum/consensus-oracle/tests/mocks"
)

func TestExpireStaleSnapshots(t *testing.T) {
	expiredState := func(poolID string) model.ConsensusStateDocument {
		now := time.Now().Unix()
		return model.ConsensusStateDocument{
			PoolID:     poolID,
			Status:     types.StatusConsensusReached,
			ObservedAt: now - 600,
			ExpiresAt:  now - 300,
		}
	}

	t.Run("marks expired snapshots stale", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		database.On("FindExpiredConsensusStates", mock.Anything, mock.Anything, uint64(100)).
			Return([]model.ConsensusStateDocument{expiredState("pool-a"), expiredState("pool-b")}, nil)
		database.On("UpdateConsensusStatus", mock.Anything, "pool-a", types.QualifiedStatesForStale(), types.StatusStale).
			Return(nil)
		database.On("UpdateConsensusStatus", mock.Anything, "pool-b", types.QualifiedStatesForStale(), types.StatusStale).
			Return(nil)

		require.NoError(t, srv.expireStaleSnapshots(t.Context()))
	})

	t.Run("skips a snapshot a fresh round replaced", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		database.On("FindExpiredConsensusStates", mock.Anything, mock.Anything, uint64(100)).
			Return([]model.ConsensusStateDocument{expiredState("pool-a"), expiredState("pool-b")}, nil)
		// pool-a got a fresh round between the query and the guarded update.
		database.On("UpdateConsensusStatus", mock.Anything, "pool-a", types.QualifiedStatesForStale(), types.StatusStale).
			Return(&db.NotFoundError{Key: "pool-a", Message: "no qualified state"})
		database.On("UpdateConsensusStatus", mock.Anything, "pool-b", types.QualifiedStatesForStale(), types.StatusStale).
			Return(nil)

		require.NoError(t, srv.expireStaleSnapshots(t.Context()))
	})

	t.Run("nothing expired", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		database.On("FindExpiredConsensusStates", mock.Anything, mock.Anything, uint64(100)).
			Return(nil, nil)

		require.NoError(t, srv.expireStaleSnapshots(t.Context()))
	})

	t.Run("query failure surfaces", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		database.On("FindExpiredConsensusStates", mock.Anything, mock.Anything, uint64(100)).
			Return(nil, errors.New("connection reset"))

		require.Error(t, srv.expireStaleSnapshots(t.Context()))
	})

	t.Run("update failure surfaces", func(t *testing.T) {
		database := mocks.NewDbInterface(t)
		srv := NewService(testConfig(), database, nil, mocks.NewEventConsumer(t))

		database.On("FindExpiredConsensusStates", mock.Anything, mock.Anything, uint64(100)).
			Return([]model.ConsensusStateDocument{expiredState("pool-a")}, nil)
		database.On("UpdateConsensusStatus", mock.Anything, "pool-a", types.QualifiedStatesForStale(), types.StatusStale).
			Return(errors.New("connection reset"))

		require.Error(t, srv.expireStaleSnapshots(t.Context()))
	})
}
