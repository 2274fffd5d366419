package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/stakequorum/consensus-oracle/internal/config"
	"github.com/stakequorum/consensus-oracle/internal/observability/metrics"
)

const (
	connectRetryAttempts = uint(5)
	connectRetryDelay    = 2 * time.Second
	publishRetryDelay    = 500 * time.Millisecond
)

// QueueManager owns the broker connection: a consumer client on the
// attestation queue and a publisher on the events exchange.
type QueueManager struct {
	cfg              *config.QueueConfig
	connection       *amqp.Connection
	attestationQueue *rabbitClient
	eventsPublisher  *rabbitClient
	logger           *zap.Logger
}

func NewQueueManager(cfg *config.QueueConfig, logger *zap.Logger) (*QueueManager, error) {
	amqpURI := fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url)

	conn, err := retry.DoWithData(
		func() (*amqp.Connection, error) {
			return amqp.Dial(amqpURI)
		},
		retry.Attempts(connectRetryAttempts),
		retry.Delay(connectRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("failed to connect to the message broker",
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", connectRetryAttempts),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the message broker: %w", err)
	}

	attestationQueue, err := newRabbitClient(conn, cfg, AttestationQueueName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the attestation queue: %w", err)
	}

	eventsPublisher, err := newExchangePublisher(conn, EventsExchangeName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the events exchange: %w", err)
	}

	return &QueueManager{
		cfg:              cfg,
		connection:       conn,
		attestationQueue: attestationQueue,
		eventsPublisher:  eventsPublisher,
		logger:           logger.Named("queue_manager"),
	}, nil
}

// Start is a no-op; the connection is established in NewQueueManager.
// It satisfies the event consumer interface.
func (qm *QueueManager) Start() error {
	return nil
}

// ReceiveAttestationMessages starts delivering attestation messages. Each
// message must be settled with DeleteAttestationMessage,
// ReQueueAttestationMessage or DiscardAttestationMessage.
func (qm *QueueManager) ReceiveAttestationMessages() (<-chan Message, error) {
	return qm.attestationQueue.ReceiveMessages()
}

// SendAttestationMessage publishes one attestation to the intake queue.
// Operator gateways are the usual producers; ops tooling and the end to end
// tests feed rounds through this.
func (qm *QueueManager) SendAttestationMessage(ctx context.Context, msg *AttestationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal attestation message: %w", err)
	}
	return qm.attestationQueue.SendMessage(ctx, string(body))
}

func (qm *QueueManager) DeleteAttestationMessage(receipt string) error {
	return qm.attestationQueue.DeleteMessage(receipt)
}

func (qm *QueueManager) ReQueueAttestationMessage(ctx context.Context, msg Message) error {
	return qm.attestationQueue.ReQueueMessage(ctx, msg)
}

func (qm *QueueManager) DiscardAttestationMessage(receipt string) error {
	return qm.attestationQueue.NackMessage(receipt)
}

// MaxRetryAttempts reports how many redeliveries a message gets before the
// consumer should discard it.
func (qm *QueueManager) MaxRetryAttempts() uint {
	return qm.cfg.MsgMaxRetryAttempts
}

func (qm *QueueManager) PushConsensusReachedEvent(ctx context.Context, ev *ConsensusReachedEvent) error {
	qm.logger.Info("pushing consensus reached event",
		zap.String("pool_id", ev.PoolID),
		zap.String("price", ev.Price),
		zap.Uint64("confidence", ev.Confidence),
	)
	return qm.publishEvent(ctx, ConsensusReachedRoutingKey, ev)
}

func (qm *QueueManager) PushSwapBlockedEvent(ctx context.Context, ev *SwapBlockedEvent) error {
	qm.logger.Info("pushing swap blocked event",
		zap.String("pool_id", ev.PoolID),
		zap.String("actor", ev.Actor),
		zap.String("reason", ev.Reason),
	)
	return qm.publishEvent(ctx, SwapBlockedRoutingKey, ev)
}

func (qm *QueueManager) PushManipulationDetectedEvent(ctx context.Context, ev *ManipulationDetectedEvent) error {
	qm.logger.Info("pushing manipulation detected event",
		zap.String("pool_id", ev.PoolID),
		zap.String("operator_id", ev.OperatorID),
		zap.Uint64("deviation_bps", ev.DeviationBps),
	)
	return qm.publishEvent(ctx, ManipulationDetectedRoutingKey, ev)
}

// publishEvent marshals the event and publishes it under routingKey,
// retrying transient broker failures. Exhausting all attempts counts against
// the queue send error metric and is reported to the caller, who logs and
// moves on rather than failing the round.
func (qm *QueueManager) publishEvent(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = retry.Do(
		func() error {
			return qm.eventsPublisher.PublishEvent(ctx, routingKey, body)
		},
		retry.Context(ctx),
		retry.Attempts(qm.cfg.MsgMaxRetryAttempts),
		retry.Delay(publishRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			qm.logger.Warn("failed to publish event",
				zap.String("routing_key", routingKey),
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", qm.cfg.MsgMaxRetryAttempts),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish event to %s: %w", routingKey, err)
	}

	return nil
}

// Stop closes both channels and the underlying connection. It satisfies the
// event consumer interface; Shutdown is the name the rest of the service
// uses.
func (qm *QueueManager) Stop() error {
	if err := qm.attestationQueue.Stop(); err != nil {
		return err
	}
	if err := qm.eventsPublisher.Stop(); err != nil {
		return err
	}
	if err := qm.connection.Close(); err != nil {
		return fmt.Errorf("failed to close amqp connection: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all
// resources are properly released.
func (qm *QueueManager) Shutdown() {
	if err := qm.Stop(); err != nil {
		qm.logger.Error("failed to shut down queue manager", zap.Error(err))
		return
	}
	qm.logger.Info("queue manager shut down")
}
