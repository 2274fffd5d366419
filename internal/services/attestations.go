package services

import (
	"context"
	"encoding/json"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
	"golang.org/x/mod/semver"

	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
	"github.com/stakequorum/consensus-oracle/internal/queue"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

// messageOutcome is the settle decision for one attestation delivery.
type messageOutcome int

const (
	// ackMessage removes the delivery after successful buffering.
	ackMessage messageOutcome = iota
	// discardMessage drops the delivery for good; it can never succeed.
	discardMessage
	// requeueMessage parks the delivery for redelivery after a transient
	// failure, such as an unreachable database.
	requeueMessage
)

// roundBuffer accumulates attestations between round computations, one entry
// per operator per pool. A newer attestation from the same operator replaces
// the older one.
type roundBuffer struct {
	mu    sync.Mutex
	pools map[string]map[string]consensus.Attestation
}

func newRoundBuffer() *roundBuffer {
	return &roundBuffer{
		pools: make(map[string]map[string]consensus.Attestation),
	}
}

func (b *roundBuffer) put(poolID string, att consensus.Attestation) {
	b.mu.Lock()
	defer b.mu.Unlock()

	poolAtts, ok := b.pools[poolID]
	if !ok {
		poolAtts = make(map[string]consensus.Attestation)
		b.pools[poolID] = poolAtts
	}
	poolAtts[att.OperatorID] = att
}

// drain removes and returns the buffered attestations for every pool that
// has any. The next round starts from an empty buffer.
func (b *roundBuffer) drain() map[string][]consensus.Attestation {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pools) == 0 {
		return nil
	}

	out := make(map[string][]consensus.Attestation, len(b.pools))
	for poolID, poolAtts := range b.pools {
		atts := make([]consensus.Attestation, 0, len(poolAtts))
		for _, att := range poolAtts {
			atts = append(atts, att)
		}
		out[poolID] = atts
	}
	b.pools = make(map[string]map[string]consensus.Attestation)

	return out
}

// StartAttestationConsumer consumes the attestation queue until the context
// is cancelled or the delivery channel closes. It blocks the calling
// goroutine.
func (s *Service) StartAttestationConsumer(ctx context.Context) {
	messages, err := s.queueManager.ReceiveAttestationMessages()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start consuming attestation messages")
	}

	log.Info().Msg("Attestation consumer started")

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				log.Info().Msg("Attestation delivery channel closed")
				return
			}
			s.handleAttestationMessage(ctx, msg)
		case <-ctx.Done():
			log.Info().Msg("Attestation consumer stopped due to context cancellation")
			return
		}
	}
}

func (s *Service) handleAttestationMessage(ctx context.Context, msg queue.Message) {
	processingCtx, cancel := context.WithTimeout(ctx, s.cfg.Queue.ProcessingTimeout)
	defer cancel()

	outcome := s.processAttestationMessage(processingCtx, msg)

	if outcome == requeueMessage && msg.RetryAttempts >= s.queueManager.MaxRetryAttempts() {
		log.Error().
			Uint("retry_attempts", msg.RetryAttempts).
			Msg("Attestation message exhausted its retries, discarding")
		outcome = discardMessage
	}

	var settleErr error
	switch outcome {
	case ackMessage:
		settleErr = s.queueManager.DeleteAttestationMessage(msg.Receipt)
	case discardMessage:
		settleErr = s.queueManager.DiscardAttestationMessage(msg.Receipt)
	case requeueMessage:
		settleErr = s.queueManager.ReQueueAttestationMessage(processingCtx, msg)
	}
	if settleErr != nil {
		log.Error().Err(settleErr).Msg("Failed to settle attestation message")
	}
}

// processAttestationMessage parses and gates one delivery and, when it
// passes, stamps the operator's tracked reliability and buffers it for the
// next round. The returned outcome tells the caller how to settle the
// delivery with the broker.
func (s *Service) processAttestationMessage(ctx context.Context, msg queue.Message) messageOutcome {
	log := log.Ctx(ctx)

	var attMsg queue.AttestationMessage
	if err := json.Unmarshal([]byte(msg.Body), &attMsg); err != nil {
		log.Warn().Err(err).Msg("Rejecting malformed attestation message")
		metrics.IncAttestationsConsumed(metrics.AttestationRejected)
		return discardMessage
	}

	if semver.Major(attMsg.SchemaVersion) != s.cfg.Oracle.SupportedSchemaVersion {
		log.Warn().
			Str("schema_version", attMsg.SchemaVersion).
			Str("supported_version", s.cfg.Oracle.SupportedSchemaVersion).
			Msg("Rejecting attestation with incompatible schema version")
		metrics.IncAttestationsConsumed(metrics.AttestationSchemaIncompatible)
		return discardMessage
	}

	att, ok := s.parseAttestation(&attMsg)
	if !ok {
		log.Warn().
			Str("pool_id", attMsg.PoolID).
			Str("operator_id", attMsg.OperatorID).
			Msg("Rejecting attestation with invalid fields")
		metrics.IncAttestationsConsumed(metrics.AttestationRejected)
		return discardMessage
	}

	reliability, outcome := s.operatorReliability(ctx, att.OperatorID)
	if outcome != ackMessage {
		return outcome
	}
	att.Reliability = reliability

	s.rounds.put(attMsg.PoolID, att)
	metrics.IncAttestationsConsumed(metrics.AttestationAccepted)

	log.Debug().
		Str("pool_id", attMsg.PoolID).
		Str("operator_id", att.OperatorID).
		Msg("Buffered attestation for next round")

	return ackMessage
}

// parseAttestation validates the wire fields. Prices must be positive and
// stakes non-negative so bad reports can never reach the consensus engine.
func (s *Service) parseAttestation(msg *queue.AttestationMessage) (consensus.Attestation, bool) {
	if msg.PoolID == "" || msg.OperatorID == "" || msg.Timestamp <= 0 {
		return consensus.Attestation{}, false
	}

	price, ok := sdkmath.NewIntFromString(msg.Price)
	if !ok || !price.IsPositive() {
		return consensus.Attestation{}, false
	}

	stake, ok := sdkmath.NewIntFromString(msg.Stake)
	if !ok || stake.IsNegative() {
		return consensus.Attestation{}, false
	}

	return consensus.Attestation{
		OperatorID: msg.OperatorID,
		Price:      price,
		Stake:      stake,
		Timestamp:  msg.Timestamp,
	}, true
}

// operatorReliability resolves the tracked reliability for an operator.
// Unknown operators get the configured default; suspended operators are
// rejected outright. A database failure requeues the message instead of
// losing it.
func (s *Service) operatorReliability(ctx context.Context, operatorID string) (uint64, messageOutcome) {
	operator, err := s.db.GetOperator(ctx, operatorID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return s.cfg.Oracle.DefaultReliability, ackMessage
		}
		log.Ctx(ctx).Error().Err(err).
			Str("operator_id", operatorID).
			Msg("Failed to look up operator, requeueing attestation")
		return 0, requeueMessage
	}

	if operator.State == types.OperatorStateSuspended {
		log.Ctx(ctx).Warn().
			Str("operator_id", operatorID).
			Msg("Rejecting attestation from suspended operator")
		metrics.IncAttestationsConsumed(metrics.AttestationRejected)
		return 0, discardMessage
	}

	return operator.Reliability, ackMessage
}
