//go:build integration

package e2etest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
	"github.com/stakequorum/consensus-oracle/internal/queue"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

func TestMain(m *testing.M) {
	metrics.Init(0)
	os.Exit(m.Run())
}

func price18(whole int64) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(whole, 18)
}

func attestationMessage(poolID, operatorID string, price int64) *queue.AttestationMessage {
	return &queue.AttestationMessage{
		PoolID:        poolID,
		OperatorID:    operatorID,
		Price:         price18(price).String(),
		Stake:         price18(10).String(),
		Timestamp:     time.Now().Unix(),
		SchemaVersion: "v1.0.0",
	}
}

func seedPool(t *testing.T, tm *TestManager, poolID string) {
	t.Helper()

	ctx := t.Context()
	require.NoError(t, tm.Db.UpsertOracleConfig(ctx, &model.OracleConfigDocument{
		PoolID:                poolID,
		Enabled:               true,
		ConsensusThresholdBps: 6600,
		MaxPriceDeviationBps:  1000,
		MaxStalenessSeconds:   300,
		MinStakeRequired:      price18(1).String(),
	}))

	for _, operatorID := range []string{"op-1", "op-2", "op-3"} {
		require.NoError(t, tm.Db.UpsertOperator(ctx, model.NewOperatorDocument(
			operatorID, types.OperatorStateActive, 9000,
		)))
	}
}

func TestConsensusRoundEndToEnd(t *testing.T) {
	tm := StartManager(t)
	ctx := t.Context()

	const poolID = "pool-e2e"
	seedPool(t, tm, poolID)

	consensusEvents := tm.SubscribeToEvents(t, queue.ConsensusReachedRoutingKey)

	// Three converging attestations travel the broker, a round fires and the
	// snapshot lands in mongo.
	require.NoError(t, tm.QueueManager.SendAttestationMessage(ctx, attestationMessage(poolID, "op-1", 2100)))
	require.NoError(t, tm.QueueManager.SendAttestationMessage(ctx, attestationMessage(poolID, "op-2", 2105)))
	require.NoError(t, tm.QueueManager.SendAttestationMessage(ctx, attestationMessage(poolID, "op-3", 2110)))

	require.Eventually(t, func() bool {
		state, err := tm.Db.GetConsensusState(ctx, poolID)
		if err != nil {
			return false
		}
		return state.Status == types.StatusConsensusReached
	}, eventuallyWaitTimeOut, eventuallyPollTime)

	state, err := tm.Db.GetConsensusState(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, price18(2105).String(), state.Price)
	require.Equal(t, price18(30).String(), state.TotalStake)
	require.Equal(t, 3, state.AttestationCount)

	// The consensus reached event came out of the events exchange.
	select {
	case delivery := <-consensusEvents:
		var ev queue.ConsensusReachedEvent
		require.NoError(t, json.Unmarshal(delivery.Body, &ev))
		require.Equal(t, poolID, ev.PoolID)
		require.Equal(t, price18(2105).String(), ev.Price)
		require.NotEmpty(t, ev.MessageID)
	case <-time.After(eventuallyWaitTimeOut):
		t.Fatal("no consensus reached event received")
	}

	// The round folded this round's accuracy into operator reliability.
	operator, err := tm.Db.GetOperator(ctx, "op-2")
	require.NoError(t, err)
	require.Equal(t, uint64(9100), operator.Reliability)

	t.Run("validation gate over the api", func(t *testing.T) {
		resp := postValidate(t, tm, poolID, price18(2110).String(), "amm-router")
		require.True(t, resp.Valid)
		require.Equal(t, price18(2105).String(), resp.ConsensusPrice)

		blocked := postValidate(t, tm, poolID, price18(3000).String(), "amm-router")
		require.False(t, blocked.Valid)
		require.Equal(t, "Price deviation too high", blocked.Reason)
	})

	t.Run("snapshot over the api", func(t *testing.T) {
		httpResp, err := http.Get(fmt.Sprintf("%s/v1/pools/%s/consensus", tm.ApiBaseUrl, poolID))
		require.NoError(t, err)
		defer httpResp.Body.Close()
		require.Equal(t, http.StatusOK, httpResp.StatusCode)

		var snapshot struct {
			PoolID string `json:"pool_id"`
			Price  string `json:"price"`
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&snapshot))
		require.Equal(t, poolID, snapshot.PoolID)
		require.Equal(t, price18(2105).String(), snapshot.Price)
		require.Equal(t, types.StatusConsensusReached.String(), snapshot.Status)
	})
}

func TestSuspendedOperatorExcludedEndToEnd(t *testing.T) {
	tm := StartManager(t)
	ctx := t.Context()

	const poolID = "pool-suspended"
	seedPool(t, tm, poolID)
	require.NoError(t, tm.Db.UpsertOperator(ctx, model.NewOperatorDocument(
		"op-3", types.OperatorStateSuspended, 9000,
	)))

	require.NoError(t, tm.QueueManager.SendAttestationMessage(ctx, attestationMessage(poolID, "op-1", 2100)))
	require.NoError(t, tm.QueueManager.SendAttestationMessage(ctx, attestationMessage(poolID, "op-2", 2110)))
	// op-3 is suspended, so this delivery is discarded at intake.
	require.NoError(t, tm.QueueManager.SendAttestationMessage(ctx, attestationMessage(poolID, "op-3", 2105)))

	require.Eventually(t, func() bool {
		state, err := tm.Db.GetConsensusState(ctx, poolID)
		if err != nil {
			return false
		}
		return state.AttestationCount == 2
	}, eventuallyWaitTimeOut, eventuallyPollTime)

	state, err := tm.Db.GetConsensusState(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, price18(2105).String(), state.Price)
	require.Equal(t, price18(20).String(), state.TotalStake)
}

type validateResponseBody struct {
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason"`
	DeviationBps   uint64 `json:"deviation_bps"`
	OracleEnabled  bool   `json:"oracle_enabled"`
	ConsensusPrice string `json:"consensus_price"`
	Confidence     uint64 `json:"confidence"`
}

func postValidate(t *testing.T, tm *TestManager, poolID, price, actor string) validateResponseBody {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"price": price, "actor": actor})
	require.NoError(t, err)

	httpResp, err := http.Post(
		fmt.Sprintf("%s/v1/pools/%s/validate", tm.ApiBaseUrl, poolID),
		"application/json",
		bytes.NewReader(payload),
	)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	var body validateResponseBody
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&body))
	return body
}
