// Package notify publishes property and booking events to RabbitMQ so
// downstream systems (CRM sync, SMS gateways) can react to them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/estatedesk/backoffice/internal/models"
)

// publishTimeout bounds a single publish when the caller has no deadline.
const publishTimeout = 10 * time.Second

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialFunc opens a connection and a channel with the exchange declared.
type dialFunc func() (*amqp.Connection, channel, error)

// AMQPPublisher is a notification sink that publishes each notification to a
// durable topic exchange under the routing key of its type
// (e.g. "property.approved"). A dropped connection is redialed on the next
// publish.
type AMQPPublisher struct {
	exchange string
	log      *logrus.Logger
	dial     dialFunc

	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
}

// NewAMQPPublisher dials url and declares exchange as a durable topic exchange.
func NewAMQPPublisher(url, exchange string, log *logrus.Logger) (*AMQPPublisher, error) {
	if exchange == "" {
		return nil, fmt.Errorf("amqp publisher: exchange name is required")
	}

	p := &AMQPPublisher{
		exchange: exchange,
		log:      log,
	}
	p.dial = func() (*amqp.Connection, channel, error) {
		return dialExchange(url, exchange)
	}

	conn, ch, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.conn, p.ch = conn, ch

	log.WithField("exchange", exchange).Info("amqp publisher connected")

	return p, nil
}

func dialExchange(url, exchange string) (*amqp.Connection, channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp publisher: dialing broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp publisher: opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp publisher: declaring exchange %q: %w", exchange, err)
	}

	return conn, ch, nil
}

// Name implements service.Dispatcher.
func (p *AMQPPublisher) Name() string {
	return "amqp"
}

// Dispatch publishes n as a persistent JSON message.
func (p *AMQPPublisher) Dispatch(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("amqp publisher: encoding notification: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.CreatedAt,
		Type:         string(n.Type),
		AppId:        "backoffice",
		Body:         body,
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishTimeout)
		defer cancel()
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(ctx, p.exchange, RoutingKey(n), false, false, msg); err != nil {
		p.reset(ch)
		return fmt.Errorf("amqp publisher: publishing %s: %w", n.Type, err)
	}

	return nil
}

// RoutingKey returns the topic routing key for n.
func RoutingKey(n models.Notification) string {
	if n.Type == "" {
		return "property.event"
	}

	return string(n.Type)
}

// channel returns the live channel, redialing if the connection dropped.
func (p *AMQPPublisher) channel() (channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && (p.conn == nil || !p.conn.IsClosed()) {
		return p.ch, nil
	}

	p.log.WithField("exchange", p.exchange).Warn("amqp connection lost, redialing")

	conn, ch, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.conn, p.ch = conn, ch

	return ch, nil
}

// reset drops ch so the next publish redials.
func (p *AMQPPublisher) reset(ch channel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != ch {
		return
	}

	_ = p.ch.Close()
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.ch != nil {
		firstErr = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conn = nil
	}

	return firstErr
}
