package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cashflow/payment-reconciler/internal/core"
	"github.com/cashflow/payment-reconciler/internal/port/output"
)

const (
	ExchangeName  = "payments"
	QueueName     = "payment_intents"
	RoutingKey    = "payment_intent.finalizable"
	PrefetchCount = 1 // Process one message at a time per worker
)

// IntentMessage is the wire format of a reconciliation request
type IntentMessage struct {
	CartID          string    `json:"cart_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	EventType       string    `json:"event_type"`
	Timestamp       time.Time `json:"timestamp"`
}

// RabbitMQClient is a secondary adapter that implements IntentMessaging output port
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

var _ output.IntentMessaging = (*RabbitMQClient)(nil)

// NewRabbitMQClient connects and declares the exchange, queue and binding
func NewRabbitMQClient(amqpURL string, logger *zap.Logger) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare exchange
	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind queue to exchange
	err = channel.QueueBind(
		QueueName,
		RoutingKey,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

func encodeIntentEvent(event output.IntentEvent, now time.Time) ([]byte, error) {
	return json.Marshal(IntentMessage{
		CartID:          event.CartID,
		PaymentIntentID: event.PaymentIntentID,
		EventType:       event.EventType,
		Timestamp:       now,
	})
}

func decodeIntentMessage(body []byte) (IntentMessage, error) {
	var msg IntentMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, err
	}
	if msg.CartID == "" || msg.PaymentIntentID == "" {
		return msg, errors.New("message lacks cart or payment intent id")
	}
	return msg, nil
}

// PublishIntentEvent publishes a reconciliation request
func (c *RabbitMQClient) PublishIntentEvent(ctx context.Context, event output.IntentEvent) error {
	now := time.Now()
	body, err := encodeIntentEvent(event, now)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = c.channel.PublishWithContext(
		ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // Make message persistent
			MessageId:    event.PaymentIntentID,
			Body:         body,
			Timestamp:    now,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("published intent message",
		zap.String("cart_id", event.CartID),
		zap.String("intent_id", event.PaymentIntentID),
	)
	return nil
}

// ConsumeIntentMessages starts consuming reconciliation requests.
// A handler error is requeued only when it is worth retrying.
func (c *RabbitMQClient) ConsumeIntentMessages(handler func(IntentMessage) error) error {
	// Set QoS to process one message at a time
	err := c.channel.Qos(
		PrefetchCount,
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("started consuming intent messages", zap.String("queue", QueueName))

	go func() {
		for msg := range msgs {
			intentMsg, err := decodeIntentMessage(msg.Body)
			if err != nil {
				// A malformed message never becomes valid
				c.logger.Error("dropping malformed message", zap.Error(err))
				msg.Ack(false)
				continue
			}

			log := c.logger.With(
				zap.String("cart_id", intentMsg.CartID),
				zap.String("intent_id", intentMsg.PaymentIntentID),
			)

			// Process the message
			if err := handler(intentMsg); err != nil {
				if IsRetryable(err) {
					log.Warn("requeueing intent message", zap.Error(err))
					msg.Nack(false, true) // Requeue for retry
				} else {
					log.Error("intent message failed", zap.Error(err))
					msg.Ack(false) // Acknowledge to remove from queue
				}
				continue
			}

			// Successfully processed
			msg.Ack(false)
			log.Info("processed intent message")
		}
	}()

	return nil
}

// Close closes the RabbitMQ connection
func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsRetryable reports whether a handler error may succeed on redelivery:
// an unreachable gateway or an infrastructure failure while finalizing.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, core.ErrGatewayUnavailable) || errors.Is(err, core.ErrFinalizeRetryable)
}
