package services

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SmsMessage is the payload exchanged over the SMS dispatch queue. It is the
// only place an OTP code exists outside the hashed challenge row.
type SmsMessage struct {
	Phone     string `json:"phone"`
	Body      string `json:"body"`
	StoreSlug string `json:"store_slug"`
}

// SmsPublisher publishes dispatch messages to RabbitMQ. Publish errors are
// logged and returned so callers can decide whether to fail the request.
type SmsPublisher struct {
	ch    *amqp.Channel
	queue string
}

// NewSmsPublisher opens a channel and declares the durable dispatch queue.
func NewSmsPublisher(conn *amqp.Connection, queue string) (*SmsPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &SmsPublisher{ch: ch, queue: queue}, nil
}

// Dispatch publishes one message, marked persistent.
func (p *SmsPublisher) Dispatch(ctx context.Context, msg SmsMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Printf("[SMS] publish failed for store %s: %v", msg.StoreSlug, err)
		return err
	}
	return nil
}

// Close releases the underlying channel.
func (p *SmsPublisher) Close() error {
	return p.ch.Close()
}

// SmsSender delivers one SMS to the carrier side.
type SmsSender interface {
	Send(ctx context.Context, phone, body string) error
}

// ConsumeSmsQueue drains the dispatch queue and hands each message to the
// sender until ctx is cancelled. Delivery failures are logged without the
// message body, since the body carries verification codes.
func ConsumeSmsQueue(ctx context.Context, conn *amqp.Connection, queue string, sender SmsSender) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	log.Printf("[SMS] consumer started on queue %s", queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return nil
			}
			handleSmsDelivery(ctx, delivery, sender)
		}
	}
}

// handleSmsDelivery sends one queued message and acks it only after the
// send succeeded, so a crash mid-delivery leaves the message on the queue
// instead of silently losing a verification code. Failed sends are dropped
// without requeue; the code expires anyway and retrying a dead carrier in a
// tight loop helps nobody.
func handleSmsDelivery(ctx context.Context, delivery amqp.Delivery, sender SmsSender) {
	var msg SmsMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		log.Printf("[SMS] dropping malformed dispatch message: %v", err)
		_ = delivery.Nack(false, false)
		return
	}
	if err := sender.Send(ctx, msg.Phone, msg.Body); err != nil {
		log.Printf("[SMS] delivery to %s failed: %v", msg.Phone, err)
		_ = delivery.Nack(false, false)
		return
	}
	_ = delivery.Ack(false)
}

// NoopSender is used when the SMS gateway is not configured. It drops
// messages with a warning and never logs their bodies.
type NoopSender struct{}

// Send discards the message.
func (NoopSender) Send(ctx context.Context, phone, body string) error {
	log.Printf("[SMS] gateway not configured, dropping message for %s", phone)
	return nil
}
