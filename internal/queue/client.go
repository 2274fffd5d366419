package queue

import (
	"context"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/stakequorum/consensus-oracle/internal/config"
)

const (
	delayedQueueSuffix  = "_delay"
	retryAttemptsHeader = "x-retry-attempts"
)

// Message is a single delivery pulled from the attestation queue. Receipt
// carries the broker delivery tag so the consumer can ack or requeue after
// processing.
type Message struct {
	Body          string
	Receipt       string
	RetryAttempts uint
}

type rabbitClient struct {
	channel          *amqp.Channel
	queueName        string
	delayedQueueName string
	exchange         string
	stopCh           chan struct{}
	logger           *zap.Logger
}

// newRabbitClient opens a channel on conn in confirm mode and declares the
// durable queue plus its companion delay queue. The delay queue has no
// consumers; messages parked there dead-letter back onto the main queue once
// their TTL expires, which turns requeues into a cool-off instead of a hot
// redelivery loop.
func newRabbitClient(conn *amqp.Connection, cfg *config.QueueConfig, queueName string, logger *zap.Logger) (*rabbitClient, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("failed to put channel into confirm mode: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	delayedQueueName := queueName + delayedQueueSuffix
	if _, err := ch.QueueDeclare(
		delayedQueueName,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queueName,
			"x-message-ttl":             cfg.ReQueueDelayTime.Milliseconds(),
		},
	); err != nil {
		return nil, fmt.Errorf("failed to declare delay queue %s: %w", delayedQueueName, err)
	}

	return &rabbitClient{
		channel:          ch,
		queueName:        queueName,
		delayedQueueName: delayedQueueName,
		stopCh:           make(chan struct{}),
		logger:           logger.With(zap.String("queue", queueName)),
	}, nil
}

// newExchangePublisher opens a confirm-mode channel dedicated to publishing
// on the named direct exchange. It never consumes.
func newExchangePublisher(conn *amqp.Connection, exchangeName string, logger *zap.Logger) (*rabbitClient, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("failed to put channel into confirm mode: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchangeName,
		"direct",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}

	return &rabbitClient{
		channel:  ch,
		exchange: exchangeName,
		stopCh:   make(chan struct{}),
		logger:   logger.With(zap.String("exchange", exchangeName)),
	}, nil
}

// ReceiveMessages starts consuming from the queue with manual acks. The
// returned channel closes when the broker channel closes or Stop is called;
// every received delivery must be settled with DeleteMessage or
// ReQueueMessage.
func (c *rabbitClient) ReceiveMessages() (<-chan Message, error) {
	deliveries, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag, broker-generated
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming queue %s: %w", c.queueName, err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				out <- Message{
					Body:          string(d.Body),
					Receipt:       strconv.FormatUint(d.DeliveryTag, 10),
					RetryAttempts: retryAttemptsFromHeaders(d.Headers),
				}
			case <-c.stopCh:
				return
			}
		}
	}()

	return out, nil
}

// SendMessage publishes body to the client's own queue through the default
// exchange and waits for broker confirmation.
func (c *rabbitClient) SendMessage(ctx context.Context, body string) error {
	return c.publish(ctx, "", c.queueName, []byte(body), nil)
}

// PublishEvent publishes body to the client's exchange under routingKey and
// waits for broker confirmation.
func (c *rabbitClient) PublishEvent(ctx context.Context, routingKey string, body []byte) error {
	return c.publish(ctx, c.exchange, routingKey, body, nil)
}

// DeleteMessage acks the delivery identified by receipt, removing it from
// the queue for good.
func (c *rabbitClient) DeleteMessage(receipt string) error {
	deliveryTag, err := strconv.ParseUint(receipt, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message receipt %q: %w", receipt, err)
	}

	return c.channel.Ack(deliveryTag, false)
}

// ReQueueMessage parks the message on the delay queue with an incremented
// retry counter and acks the original delivery. The broker routes it back to
// the main queue after the configured delay.
func (c *rabbitClient) ReQueueMessage(ctx context.Context, msg Message) error {
	headers := amqp.Table{
		retryAttemptsHeader: int64(msg.RetryAttempts + 1),
	}
	if err := c.publish(ctx, "", c.delayedQueueName, []byte(msg.Body), headers); err != nil {
		return fmt.Errorf("failed to requeue message: %w", err)
	}

	return c.DeleteMessage(msg.Receipt)
}

// NackMessage rejects the delivery without redelivery. Used for messages
// that can never succeed, such as malformed payloads.
func (c *rabbitClient) NackMessage(receipt string) error {
	deliveryTag, err := strconv.ParseUint(receipt, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message receipt %q: %w", receipt, err)
	}

	return c.channel.Nack(deliveryTag, false, false)
}

func (c *rabbitClient) publish(ctx context.Context, exchange, routingKey string, body []byte, headers amqp.Table) error {
	// Default-exchange sends target a queue this client declared and must be
	// routable. Exchange publishes fan out to whatever consumers have bound,
	// which may be nobody.
	mandatory := exchange == ""

	confirmation, err := c.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		exchange,
		routingKey,
		mandatory,
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      headers,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for publish confirmation: %w", err)
	}
	if !acked {
		return fmt.Errorf("message to %s/%s was nacked by the broker", exchange, routingKey)
	}

	return nil
}

func (c *rabbitClient) Stop() error {
	close(c.stopCh)
	if err := c.channel.Close(); err != nil {
		return fmt.Errorf("failed to close amqp channel: %w", err)
	}

	return nil
}

func retryAttemptsFromHeaders(headers amqp.Table) uint {
	raw, ok := headers[retryAttemptsHeader]
	if !ok {
		return 0
	}

	switch v := raw.(type) {
	case int32:
		if v > 0 {
			return uint(v)
		}
	case int64:
		if v > 0 {
			return uint(v)
		}
	}

	return 0
}
