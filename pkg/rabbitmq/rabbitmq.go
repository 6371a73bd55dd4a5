package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// MessageQueue is the durable queue carrying mail events.
const MessageQueue = "message_queue"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares MessageQueue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected", zap.String("queue", MessageQueue))

	return &Client{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

func declareQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		MessageQueue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", MessageQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishMessageCreated publishes a message.created event as persistent JSON.
func (c *Client) PublishMessageCreated(event map[string]interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal message event to JSON: %w", err)
	}

	err = c.channel.Publish(
		"",           // default exchange
		MessageQueue, // routing key: the queue name
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "message.created",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message event: %w", err)
	}

	c.logger.Debug("published message event", zap.ByteString("body", body))
	return nil
}

// ConsumeMessageEvents delivers every event on MessageQueue to handler in a goroutine.
// Deliveries are acked when handler returns nil and requeued otherwise.
func (c *Client) ConsumeMessageEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	if err := declareQueue(c.channel); err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		MessageQueue, // queue
		"",           // consumer tag
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				c.logger.Warn("failed to process message event", zap.Uint64("deliveryTag", msg.DeliveryTag), zap.Error(err))
				if nackErr := msg.Nack(false, true); nackErr != nil {
					c.logger.Error("failed to nack message event", zap.Uint64("deliveryTag", msg.DeliveryTag), zap.Error(nackErr))
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.logger.Error("failed to ack message event", zap.Uint64("deliveryTag", msg.DeliveryTag), zap.Error(ackErr))
			}
		}
	}()

	return nil
}

// MessageCreatedEvent is the payload of a message.created event.
type MessageCreatedEvent struct {
	MessageID   int64 `json:"messageID"`
	SenderID    int64 `json:"senderID"`
	RecipientID int64 `json:"recipientID"`
}

// DecodeMessageCreated parses a delivery body.
func DecodeMessageCreated(body []byte) (MessageCreatedEvent, error) {
	var event MessageCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return MessageCreatedEvent{}, fmt.Errorf("failed to decode message event: %w", err)
	}
	if event.MessageID == 0 {
		return MessageCreatedEvent{}, fmt.Errorf("message event without messageID")
	}
	return event, nil
}
