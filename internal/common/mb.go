package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Exchange string

type Queue string

type BindingKey string

type MessageProducer interface {
	Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error
}

type MessageConsumer interface {
	Consume(queue Queue, consumer string) (<-chan amqp.Delivery, error)
}

const (
	UserExchange     Exchange   = "user_exchange"
	UserCreatedQueue Queue      = "user_created_queue"
	UserCreatedKey   BindingKey = "user.created"
)

// Binding routes messages published on Exchange with Key into Queue.
type Binding struct {
	Exchange Exchange
	Queue    Queue
	Key      BindingKey
}

// UserCreatedBinding carries sign-up events to the mail service.
var UserCreatedBinding = Binding{Exchange: UserExchange, Queue: UserCreatedQueue, Key: UserCreatedKey}

// UserCreatedEvent is the payload published after a successful sign-up.
type UserCreatedEvent struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type MessageBroker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	prefetch int
}

func NewMessageBroker(URI string) (*MessageBroker, error) {
	conn, err := amqp.Dial(URI)
	if err != nil {
		return nil, fmt.Errorf("could not connect to AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	return &MessageBroker{conn: conn, ch: ch, prefetch: 1}, nil
}

func (mb *MessageBroker) Close() error {
	if err := mb.ch.Close(); err != nil {
		return err
	}
	return mb.conn.Close()
}

// IsClosed reports whether the connection to the broker has been lost.
func (mb *MessageBroker) IsClosed() bool {
	return mb.conn.IsClosed()
}

// Declare creates the durable exchange and queue of every binding and binds them.
// Declaring an existing topology again is a no-op.
func (mb *MessageBroker) Declare(bindings ...Binding) error {
	for _, b := range bindings {
		err := mb.ch.ExchangeDeclare(string(b.Exchange), amqp.ExchangeDirect, true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", b.Exchange, err)
		}

		_, err = mb.ch.QueueDeclare(string(b.Queue), true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", b.Queue, err)
		}

		err = mb.ch.QueueBind(string(b.Queue), string(b.Key), string(b.Exchange), false, nil)
		if err != nil {
			return fmt.Errorf("bind %s to %s: %w", b.Queue, b.Exchange, err)
		}
	}

	return nil
}

// Publish sends a persistent JSON message stamped with a fresh message id.
func (mb *MessageBroker) Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error {
	err := mb.ch.PublishWithContext(ctx, string(exchange), string(key), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         msg,
	})
	if err != nil {
		return fmt.Errorf("could not publish message: %w", err)
	}

	return nil
}

// Consume starts delivering messages from queue with manual acknowledgement,
// one unacknowledged message at a time.
func (mb *MessageBroker) Consume(queue Queue, consumer string) (<-chan amqp.Delivery, error) {
	err := mb.ch.Qos(mb.prefetch, 0, false)
	if err != nil {
		return nil, fmt.Errorf("could not set prefetch: %w", err)
	}

	msgs, err := mb.ch.Consume(string(queue), consumer, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("could not consume message: %w", err)
	}

	return msgs, nil
}

// PublishJSON encodes event as JSON and publishes it on exchange with key.
func PublishJSON(ctx context.Context, p MessageProducer, event any, key BindingKey, exchange Exchange) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Publish(ctx, body, key, exchange)
}
