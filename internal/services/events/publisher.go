// Package events publishes donation lifecycle events to a message queue so
// downstream consumers (notifications, reporting) can react without coupling
// to the API process.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Queue the donation events are published to.
const DonationQueue = "donation_events"

// Event types.
const (
	DonationCreated   = "donation.created"
	DonationConfirmed = "donation.confirmed"
	DonationCancelled = "donation.cancelled"
)

// DonationEvent is the wire format of a donation lifecycle event.
type DonationEvent struct {
	Type       string    `json:"type"`
	DonationID string    `json:"donation_id"`
	CampaignID string    `json:"campaign_id"`
	UserID     string    `json:"user_id"`
	ItemName   string    `json:"item_name"`
	Measure    string    `json:"measure"`
	Quantity   float64   `json:"quantity"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits donation events. Implementations must be safe for
// concurrent use by request handlers.
type Publisher interface {
	PublishDonationEvent(event DonationEvent) error
	Close() error
}

// RabbitMQPublisher publishes events to a durable RabbitMQ queue.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitMQPublisher connects to RabbitMQ using the RABBITMQ_* environment
// variables and declares the donation events queue.
func NewRabbitMQPublisher() (*RabbitMQPublisher, error) {
	host := getEnv("RABBITMQ_HOST", "localhost")
	port := getEnv("RABBITMQ_PORT", "5672")
	user := getEnv("RABBITMQ_USER", "guest")
	pass := getEnv("RABBITMQ_PASS", "guest")

	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		DonationQueue, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logrus.Info("RabbitMQ donation event publisher initialized")
	return &RabbitMQPublisher{conn: conn, channel: channel}, nil
}

// PublishDonationEvent publishes a single event as JSON.
func (p *RabbitMQPublisher) PublishDonationEvent(event DonationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.Publish(
		"",            // exchange
		DonationQueue, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logrus.Warnf("Error closing channel: %v", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			logrus.Warnf("Error closing connection: %v", err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
