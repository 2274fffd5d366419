package queue

import (
	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/stakequorum/consensus-oracle/internal/types"
)

const (
	// AttestationQueueName is the queue operators publish price attestations
	// to. Authentication and operator registration happen upstream; messages
	// arriving here are already trusted.
	AttestationQueueName = "oracle_attestations"

	// EventsExchangeName is the direct exchange oracle events are published
	// to, one routing key per event type.
	EventsExchangeName = "oracle_events"
)

const (
	ConsensusReachedRoutingKey     = "consensus_reached"
	SwapBlockedRoutingKey          = "swap_blocked"
	ManipulationDetectedRoutingKey = "manipulation_detected"
)

// AttestationMessage is the wire shape of a single operator price report.
// Price and Stake are decimal strings carrying the full 18 fractional digits;
// Timestamp is unix seconds at observation time.
type AttestationMessage struct {
	PoolID        string `json:"pool_id"`
	OperatorID    string `json:"operator_id"`
	Price         string `json:"price"`
	Stake         string `json:"stake"`
	Timestamp     int64  `json:"timestamp"`
	SchemaVersion string `json:"schema_version"`
}

// ConsensusReachedEvent is published after a round whose confidence cleared
// the pool threshold.
type ConsensusReachedEvent struct {
	EventType        types.EventTypes `json:"event_type"`
	MessageID        string           `json:"message_id"`
	PoolID           string           `json:"pool_id"`
	Price            string           `json:"price"`
	TotalStake       string           `json:"total_stake"`
	AttestationCount int              `json:"attestation_count"`
	Confidence       uint64           `json:"confidence"`
}

func NewConsensusReachedEvent(
	poolID string,
	price sdkmath.Int,
	totalStake sdkmath.Int,
	attestationCount int,
	confidence uint64,
) ConsensusReachedEvent {
	return ConsensusReachedEvent{
		EventType:        types.EventConsensusReached,
		MessageID:        uuid.NewString(),
		PoolID:           poolID,
		Price:            price.String(),
		TotalStake:       totalStake.String(),
		AttestationCount: attestationCount,
		Confidence:       confidence,
	}
}

// SwapBlockedEvent is published when the validation gate denies an action.
type SwapBlockedEvent struct {
	EventType      types.EventTypes `json:"event_type"`
	MessageID      string           `json:"message_id"`
	PoolID         string           `json:"pool_id"`
	Actor          string           `json:"actor"`
	RequestedPrice string           `json:"requested_price"`
	ConsensusPrice string           `json:"consensus_price"`
	Reason         string           `json:"reason"`
}

func NewSwapBlockedEvent(
	poolID string,
	actor string,
	requestedPrice sdkmath.Int,
	consensusPrice sdkmath.Int,
	reason string,
) SwapBlockedEvent {
	return SwapBlockedEvent{
		EventType:      types.EventSwapBlocked,
		MessageID:      uuid.NewString(),
		PoolID:         poolID,
		Actor:          actor,
		RequestedPrice: requestedPrice.String(),
		ConsensusPrice: consensusPrice.String(),
		Reason:         reason,
	}
}

// ManipulationDetectedEvent is published for every attestation the outlier
// filter removed from a round, one event per filtered operator.
type ManipulationDetectedEvent struct {
	EventType      types.EventTypes `json:"event_type"`
	MessageID      string           `json:"message_id"`
	PoolID         string           `json:"pool_id"`
	OperatorID     string           `json:"operator_id"`
	ReportedPrice  string           `json:"reported_price"`
	ConsensusPrice string           `json:"consensus_price"`
	DeviationBps   uint64           `json:"deviation_bps"`
}

func NewManipulationDetectedEvent(
	poolID string,
	operatorID string,
	reportedPrice sdkmath.Int,
	consensusPrice sdkmath.Int,
	deviationBps uint64,
) ManipulationDetectedEvent {
	return ManipulationDetectedEvent{
		EventType:      types.EventManipulationDetected,
		MessageID:      uuid.NewString(),
		PoolID:         poolID,
		OperatorID:     operatorID,
		ReportedPrice:  reportedPrice.String(),
		ConsensusPrice: consensusPrice.String(),
		DeviationBps:   deviationBps,
	}
}
