package rabbitmq

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/go-faster/errors"
	amqp "github.com/streadway/amqp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// BindingKey routes every order event to the order queue.
const BindingKey = "order.#"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	logger   *zap.Logger
	// mu guards channel; amqp channels are not safe for concurrent publishes.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
	Queue    string
}

// NewClient connects to RabbitMQ and declares the topic exchange, the durable
// order queue and their binding.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err := declareTopology(ch, cfg.Exchange, cfg.Queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	logger.Info("rabbitmq connected",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
	)
	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		logger:   logger,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return errors.Wrapf(err, "declare exchange %s", exchange)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return errors.Wrapf(err, "declare queue %s", queue)
	}

	if err := ch.QueueBind(queue, BindingKey, exchange, false, nil); err != nil {
		return errors.Wrapf(err, "bind queue %s", queue)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.channel != nil {
		if cerr := c.channel.Close(); cerr != nil {
			err = multierr.Append(err, errors.Wrap(cerr, "close channel"))
		}
	}
	if c.conn != nil {
		if cerr := c.conn.Close(); cerr != nil {
			err = multierr.Append(err, errors.Wrap(cerr, "close connection"))
		}
	}
	return err
}

// Publish sends a persistent JSON message to the order exchange.
func (c *Client) Publish(routingKey string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil {
		return errors.New("rabbitmq channel is not available")
	}

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return errors.Wrapf(err, "publish %s", routingKey)
	}

	c.logger.Debug("order event published", zap.String("routing_key", routingKey))
	return nil
}

// ConsumeOrderEvents starts a goroutine that hands every message on the
// order queue to messageHandler. It returns once the consumer is registered.
func (c *Client) ConsumeOrderEvents(messageHandler func(msg amqp.Delivery) error) error {
	c.mu.Lock()
	if c.channel == nil {
		c.mu.Unlock()
		return errors.New("rabbitmq channel is not available for consumption")
	}
	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	c.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "register consumer")
	}

	c.logger.Info("waiting for order events", zap.String("queue", c.queue))
	go consume(c.logger, msgs, messageHandler)
	return nil
}

// consume acks handled messages. A failed message is requeued once; a
// failure on redelivery drops it.
func consume(logger *zap.Logger, msgs <-chan amqp.Delivery, messageHandler func(amqp.Delivery) error) {
	for msg := range msgs {
		if err := messageHandler(msg); err != nil {
			requeue := !msg.Redelivered
			logger.Warn("order event handling failed",
				zap.Uint64("delivery_tag", msg.DeliveryTag),
				zap.Bool("requeue", requeue),
				zap.Error(err),
			)
			if nackErr := msg.Nack(false, requeue); nackErr != nil {
				logger.Error("nack order event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
			}
			continue
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			logger.Error("ack order event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
		}
	}
}

// LoggingHandler returns a message handler that logs each order event.
func LoggingHandler(logger *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event struct {
			Event   string `json:"event"`
			OrderID string `json:"orderId"`
			Status  string `json:"status"`
		}
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return errors.Wrap(err, "decode order event")
		}
		logger.Info("order event received",
			zap.String("routing_key", msg.RoutingKey),
			zap.String("event", event.Event),
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status),
		)
		return nil
	}
}
