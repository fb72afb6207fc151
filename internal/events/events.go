// Package events defines the auth events emitted for downstream consumers
// (marketing automation, analytics). Publishing is best-effort: a broker
// failure is logged by the caller and never surfaces to the end user.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/promptvault/promptvault/internal/lib/rabbitmq"
)

// Event types.
const (
	UserRegistered  = "user_registered"
	UserLoggedIn    = "user_logged_in"
	UserLoggedOut   = "user_logged_out"
	PasswordChanged = "password_changed"
)

// Event is one auth lifecycle occurrence.
type Event struct {
	ID    string    `json:"id"`
	Type  string    `json:"type"`
	Email string    `json:"email"`
	At    time.Time `json:"at"`
}

// New builds an event with a fresh id and the current timestamp.
func New(eventType, email string) Event {
	return Event{
		ID:    uuid.NewString(),
		Type:  eventType,
		Email: email,
		At:    time.Now().UTC(),
	}
}

// Publisher publishes auth events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// AMQPPublisher publishes events to a RabbitMQ exchange.
type AMQPPublisher struct {
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher creates a publisher over an open channel.
func NewAMQPPublisher(ch *amqp.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Publish sends the event with its type as the routing key.
func (p *AMQPPublisher) Publish(_ context.Context, event Event) error {
	return rabbitmq.PublishMessage(p.ch, p.exchange, event.Type, event)
}
