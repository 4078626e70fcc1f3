package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/observability"
)

const (
	headerEventType = "event_type"
	headerSource    = "source"
	source          = "workout-tracker"

	defaultPublishTimeout = 3 * time.Second
)

// Publisher encodes payloads as JSON and writes them to one topic keyed by user id, so every
// change for a user lands on the same partition in order.
type Publisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
}

// NewPublisher constructs a Publisher.
func NewPublisher(writer MessageWriter, topic string) *Publisher {
	return &Publisher{writer: writer, topic: topic, timeout: defaultPublishTimeout}
}

// Publish writes one event. The request context's cancellation is ignored so a client that
// disconnects after a successful write does not drop its event, but the write is still bounded.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload any) (err error) {
	defer func() { observability.RecordPublish(eventType, err) }()

	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	return p.writer.WriteMessages(ctx, p.topic, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(eventType)},
			{Key: headerSource, Value: []byte(source)},
		},
	})
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
