//go:build integration

package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/types"
	"github.com/stakequorum/consensus-oracle/testutil"
)

func TestOperator(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() {
		resetDatabase(t)
	})
	t.Run("no documents", func(t *testing.T) {
		_, err := testDB.GetOperator(ctx, "missing-operator")
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})
	t.Run("upsert and get", func(t *testing.T) {
		operator := testutil.RandomOperator()
		require.NoError(t, testDB.UpsertOperator(ctx, operator))

		stored, err := testDB.GetOperator(ctx, operator.OperatorID)
		require.NoError(t, err)
		assert.Equal(t, operator, stored)
	})
	t.Run("suspend via upsert", func(t *testing.T) {
		operator := testutil.RandomOperator()
		require.NoError(t, testDB.UpsertOperator(ctx, operator))

		operator.State = types.OperatorStateSuspended
		require.NoError(t, testDB.UpsertOperator(ctx, operator))

		stored, err := testDB.GetOperator(ctx, operator.OperatorID)
		require.NoError(t, err)
		assert.Equal(t, types.OperatorStateSuspended, stored.State)
	})
}

func TestUpdateOperatorReliability(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() {
		resetDatabase(t)
	})
	t.Run("existing operator", func(t *testing.T) {
		operator := model.NewOperatorDocument("op-1", types.OperatorStateActive, 5000)
		require.NoError(t, testDB.UpsertOperator(ctx, operator))

		require.NoError(t, testDB.UpdateOperatorReliability(ctx, "op-1", 5500, 1_700_000_000))
		require.NoError(t, testDB.UpdateOperatorReliability(ctx, "op-1", 6000, 1_700_000_060))

		stored, err := testDB.GetOperator(ctx, "op-1")
		require.NoError(t, err)
		assert.Equal(t, uint64(6000), stored.Reliability)
		assert.Equal(t, uint64(2), stored.Rounds)
		assert.Equal(t, int64(1_700_000_060), stored.LastSeen)
		assert.Equal(t, types.OperatorStateActive, stored.State)
	})
	t.Run("unknown operator is created active", func(t *testing.T) {
		require.NoError(t, testDB.UpdateOperatorReliability(ctx, "op-new", 4000, 1_700_000_000))

		stored, err := testDB.GetOperator(ctx, "op-new")
		require.NoError(t, err)
		assert.Equal(t, uint64(4000), stored.Reliability)
		assert.Equal(t, uint64(1), stored.Rounds)
		assert.Equal(t, types.OperatorStateActive, stored.State)
	})
}
