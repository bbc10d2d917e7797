package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends seating events to RabbitMQ.  Each publish opens its
// own connection; fills are rare enough that pooling is not worth the
// reconnect handling.  Errors are logged and returned so the caller can
// ignore them without failing the request.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns nil for an empty url, which disables events.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, log: log.Named("publisher")}
}

// PublishSeatingFilled publishes ev as a persistent JSON message.
func (p *Publisher) PublishSeatingFilled(ctx context.Context, ev SeatingFilledEvent) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("marshal event failed", zap.Error(err))
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(SeatingFilledQueue, true, false, false, false, nil); err != nil {
		p.log.Warn("queue declare failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", SeatingFilledQueue, false, false, pub); err != nil {
		p.log.Warn("publish failed", zap.Error(err), zap.String("record_id", ev.RecordID))
		return err
	}
	p.log.Debug("seating event published", zap.String("record_id", ev.RecordID), zap.String("layout_id", ev.LayoutID))
	return nil
}
