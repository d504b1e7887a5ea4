package messaging

import (
	"context"
	"errors"
	"io"
	"maps"
	"time"
)

var (
	// ErrTopicRequired is returned when Publish is called without a topic.
	ErrTopicRequired = errors.New("pkgmessage: topic is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("pkgmessage: handler is required")
	// ErrClosed is returned by operations on a closed broker.
	ErrClosed = errors.New("pkgmessage: broker is closed")
)

// Publisher publishes messages to a topic (Pub/Sub topic, Kafka topic,
// NATS subject, NSQ topic).
type Publisher interface {
	Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer pulls messages from a subscription until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, subscription string, handler Handler, opts ...ConsumeOption) error
}

// Broker is a Publisher that owns a connection.
type Broker interface {
	io.Closer
	Publisher
}

// Handler processes a received message. A nil return acknowledges the
// message; an error asks the broker to redeliver it.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a broker-agnostic message to be published.
type OutgoingMessage struct {
	Body []byte

	// Key drives partitioning on Kafka and ordering on Pub/Sub.
	Key string

	// Attributes become message headers (Kafka, NATS) or attributes (Pub/Sub).
	// NSQ has no header support and drops them.
	Attributes map[string]string
}

// PublishResult is what the broker reported back for a publish.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// Message is a received message.
type Message struct {
	ID          string
	Body        []byte
	Attributes  map[string]string
	PublishTime time.Time
	// DeliveryAttempt is zero when the broker does not track it.
	DeliveryAttempt int
}

func cloneAttributes(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	return maps.Clone(in)
}
