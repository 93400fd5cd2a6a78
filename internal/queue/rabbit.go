// Package queue moves sessions from the API to the analysis workers
// over RabbitMQ, and fans out progress updates.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// SessionsQueue carries queued sessions to the worker pool.
	SessionsQueue = "sessions"
	// UpdatesExchange receives per-session progress events, routed by
	// "session.<id>".
	UpdatesExchange = "session_updates"
)

type Producer struct {
	conn *amqp.Connection
}

func NewProducer(conn *amqp.Connection) *Producer {
	return &Producer{conn: conn}
}

// PublishSession enqueues one session for analysis. The message body is
// the session JSON the worker unmarshals.
func (p *Producer) PublishSession(payload any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareSessionsQueue(ch); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling session: %w", err)
	}

	return ch.Publish(
		"", // default exchange
		SessionsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// PublishUpdate sends a progress event for one session. Failures are
// for the caller to log; updates are best effort.
func (p *Producer) PublishUpdate(sessionID string, update map[string]any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, _ := json.Marshal(update)
	routingKey := fmt.Sprintf("session.%s", sessionID)

	return ch.Publish(
		UpdatesExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// DeclareSessionsQueue declares the durable sessions queue on ch.
func DeclareSessionsQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		SessionsQueue, // queue name
		true,          // durable (survives broker restarts)
		false,         // auto-delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare queue: %w", err)
	}
	return q, nil
}
