package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrKafkaBrokersRequired is returned when no Kafka brokers are configured.
var ErrKafkaBrokersRequired = errors.New("pkgmessage: kafka brokers are required")

// KafkaConfig configures the Kafka implementation.
type KafkaConfig struct {
	Brokers []string

	// BatchTimeout bounds how long a write waits to fill a batch.
	// Zero uses 10ms, which suits one message per commit.
	BatchTimeout time.Duration

	// Transport overrides the default transport (TLS, SASL).
	Transport kafka.RoundTripper
}

// Kafka is a publish-only broker backed by kafka-go.
//
// Messages are hash-partitioned on Key so all events of one key land on the
// same partition and keep their order.
type Kafka struct {
	cfg KafkaConfig

	mu      sync.Mutex
	closed  bool
	writers map[string]*kafka.Writer
}

// NewKafka constructs a Kafka broker.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	cfg.Brokers = append([]string(nil), cfg.Brokers...)

	return &Kafka{cfg: cfg, writers: map[string]*kafka.Writer{}}, nil
}

// Close flushes and closes all writers.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers := k.writers
	k.writers = nil
	k.mu.Unlock()

	var err error
	for _, w := range writers {
		err = errors.Join(err, w.Close())
	}
	return err
}

// Publish writes msg to topic synchronously; attributes become headers.
func (k *Kafka) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}

	w, err := k.writer(topic)
	if err != nil {
		return PublishResult{}, err
	}

	km := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Body,
		Time:  time.Now(),
	}
	for name, value := range msg.Attributes {
		km.Headers = append(km.Headers, kafka.Header{Key: name, Value: []byte(value)})
	}

	if err := w.WriteMessages(ctx, km); err != nil {
		return PublishResult{}, fmt.Errorf("pkgmessage: kafka publish: %w", err)
	}

	return PublishResult{Topic: topic, Timestamp: km.Time}, nil
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           k.cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		Transport:              k.cfg.Transport,
	}
	k.writers[topic] = w
	return w, nil
}
