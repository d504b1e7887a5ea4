package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

var (
	// ErrPubSubProjectIDRequired is returned when neither a client nor a project is provided.
	ErrPubSubProjectIDRequired = errors.New("pkgmessage: pubsub project id is required")
	// ErrPubSubSubscriptionRequired is returned when Consume is called without a subscription.
	ErrPubSubSubscriptionRequired = errors.New("pkgmessage: pubsub subscription is required")
)

// PubSubConfig configures the Google Pub/Sub implementation.
type PubSubConfig struct {
	ProjectID string

	// Client is used as-is when set; ProjectID and ClientOptions are ignored.
	Client        *pubsub.Client
	ClientOptions []option.ClientOption
}

// PubSub publishes to and consumes from Google Pub/Sub.
//
// Publishers are created per topic with message ordering enabled so that
// messages sharing a Key are delivered in publish order.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	closed     bool
	publishers map[string]*pubsub.Publisher
}

var _ Consumer = (*PubSub)(nil)

// NewPubSub constructs a PubSub broker.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	client := cfg.Client
	if client == nil {
		if cfg.ProjectID == "" {
			return nil, ErrPubSubProjectIDRequired
		}

		c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
		if err != nil {
			return nil, fmt.Errorf("pkgmessage: pubsub new client: %w", err)
		}
		client = c
	}

	return &PubSub{client: client, publishers: map[string]*pubsub.Publisher{}}, nil
}

// Close flushes pending publishes and closes the client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pubs := p.publishers
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}
	return p.client.Close()
}

// Publish sends msg to topic and waits for the server to acknowledge it.
func (p *PubSub) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}

	pub, err := p.publisher(topic)
	if err != nil {
		return PublishResult{}, err
	}

	id, err := pub.Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  cloneAttributes(msg.Attributes),
		OrderingKey: msg.Key,
	}).Get(ctx)
	if err != nil {
		if msg.Key != "" {
			// an ordered publish failure pauses the key until resumed
			pub.ResumePublish(msg.Key)
		}
		return PublishResult{}, fmt.Errorf("pkgmessage: pubsub publish: %w", err)
	}

	return PublishResult{MessageID: id, Topic: topic}, nil
}

// Consume receives from subscription until ctx is cancelled. Handler
// errors and panics nack the message.
func (p *PubSub) Consume(ctx context.Context, subscription string, handler Handler, opts ...ConsumeOption) error {
	if subscription == "" {
		return ErrPubSubSubscriptionRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	if p.isClosed() {
		return ErrClosed
	}

	co := newConsumeOptions(opts...)
	sub := p.client.Subscriber(subscription)
	sub.ReceiveSettings.NumGoroutines = co.concurrency
	if co.maxInFlight > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = co.maxInFlight
	}

	err := sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		if herr := safeHandle(ctx, handler, fromPubSub(m)); herr != nil {
			m.Nack()
			return
		}
		m.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("pkgmessage: pubsub receive: %w", err)
	}
	return nil
}

func (p *PubSub) publisher(topic string) (*pubsub.Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if pub, ok := p.publishers[topic]; ok {
		return pub, nil
	}

	pub := p.client.Publisher(topic)
	pub.EnableMessageOrdering = true
	p.publishers[topic] = pub
	return pub, nil
}

func (p *PubSub) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func fromPubSub(m *pubsub.Message) Message {
	msg := Message{
		ID:          m.ID,
		Body:        m.Data,
		Attributes:  m.Attributes,
		PublishTime: m.PublishTime,
	}
	if m.DeliveryAttempt != nil {
		msg.DeliveryAttempt = *m.DeliveryAttempt
	}
	return msg
}
