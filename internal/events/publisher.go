// Package events publishes campaign lifecycle events to RabbitMQ for
// downstream consumers (dashboards, audit). Publishing is fire-and-forget:
// it never participates in the dispatch outcome.
package events

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/apexmark/campaign-console/internal/model"
)

// CampaignEvent describes one campaign status transition.
type CampaignEvent struct {
	CampaignID string               `json:"campaign_id"`
	Status     model.CampaignStatus `json:"status"`
	Detail     string               `json:"detail,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

type Publisher interface {
	Publish(event CampaignEvent) error
}

// AMQPPublisher publishes to a durable queue.
type AMQPPublisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *zap.Logger
}

func NewAMQPPublisher(url, queue string, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch, queue: queue, logger: log}, nil
}

func (p *AMQPPublisher) Publish(event CampaignEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.ch.Publish(
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NopPublisher is used when AMQP is not configured and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(CampaignEvent) error { return nil }
