// Package service provides the publisher that pushes activity events to
// RabbitMQ.  Errors are logged and returned so callers can ignore failures
// without interrupting the request that caused the event.
package service

import (
    "context"
    "encoding/json"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/postboard/internal/queue"
)

// QueuePublisher publishes ActivityEvents to the durable activity queue.  A
// connection is dialled per event; writes are rare enough that pooling is
// not worth the reconnect bookkeeping.
type QueuePublisher struct {
    URL string
}

// NewQueuePublisher returns a publisher for the broker at url.
func NewQueuePublisher(url string) *QueuePublisher { return &QueuePublisher{URL: url} }

// Publish sends event as a persistent JSON message.
func (p *QueuePublisher) Publish(ctx context.Context, event q.ActivityEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        slog.Warn("rabbitmq: dial failed", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        slog.Warn("rabbitmq: channel open failed", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.ActivityQueue, // name
        true,            // durable
        false,           // autoDelete
        false,           // exclusive
        false,           // noWait
        nil,             // args
    ); err != nil {
        slog.Warn("rabbitmq: queue declare failed", "error", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         event.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.ActivityQueue, false, false, pub); err != nil {
        slog.Warn("rabbitmq: publish failed", "error", err, "type", event.Type)
        return err
    }
    return nil
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.ActivityEvent) error { return nil }
