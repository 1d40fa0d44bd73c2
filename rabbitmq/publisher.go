package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storemonitor/models"
	"storemonitor/services"

	"github.com/apex/log"
	"github.com/streadway/amqp"
)

// Channel is the part of an AMQP channel the publisher uses
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher represents a RabbitMQ publisher instance
type Publisher struct {
	conn       *amqp.Connection
	channel    Channel
	exchange   string
	routingKey string
	mu         sync.Mutex
}

// NewPublisher connects to RabbitMQ and declares a durable direct exchange
func NewPublisher(amqpURL, exchangeName, routingKey string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchangeName,
		routingKey: routingKey,
	}, nil
}

// NewPublisherWithChannel builds a publisher on an existing channel
func NewPublisherWithChannel(channel Channel, exchangeName, routingKey string) *Publisher {
	return &Publisher{channel: channel, exchange: exchangeName, routingKey: routingKey}
}

// Publish sends a JSON message to the exchange with the configured routing key
func (p *Publisher) Publish(message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Publish(p.exchange, p.routingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}

// ReportEvent is published when a report reaches a terminal status
type ReportEvent struct {
	ReportID   string              `json:"report_id"`
	Status     models.ReportStatus `json:"status"`
	Stores     int                 `json:"stores"`
	Error      string              `json:"error,omitempty"`
	DurationMs int64               `json:"duration_ms"`
}

// ReportEventObserver publishes a ReportEvent per finished report
type ReportEventObserver struct {
	Publisher *Publisher
}

func (o ReportEventObserver) ReportFinished(outcome services.Outcome) {
	event := ReportEvent{
		ReportID:   outcome.ReportID,
		Status:     outcome.Status,
		Stores:     len(outcome.Rows),
		DurationMs: outcome.Duration.Milliseconds(),
	}
	if outcome.Err != nil {
		event.Error = outcome.Err.Error()
	}
	if err := o.Publisher.Publish(event); err != nil {
		log.WithField("report_id", outcome.ReportID).Warnf("Failed to publish report event: %v", err)
	}
}
