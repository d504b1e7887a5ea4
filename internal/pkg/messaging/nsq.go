package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// ErrNSQProducerAddrRequired is returned when the nsqd address is missing.
var ErrNSQProducerAddrRequired = errors.New("pkgmessage: nsq producer address is required")

// NSQConfig configures the NSQ implementation.
type NSQConfig struct {
	// ProducerAddr is the nsqd TCP address.
	ProducerAddr string
	// Config overrides nsq.NewConfig().
	Config *nsq.Config
}

// NSQ is a publish-only broker backed by a single nsqd producer.
type NSQ struct {
	producer *nsq.Producer
	closed   atomic.Bool
}

// NewNSQ constructs an NSQ broker.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, ErrNSQProducerAddrRequired
	}

	ncfg := cfg.Config
	if ncfg == nil {
		ncfg = nsq.NewConfig()
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, ncfg)
	if err != nil {
		return nil, fmt.Errorf("pkgmessage: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{producer: p}, nil
}

// Close stops the producer.
func (n *NSQ) Close() error {
	if n.closed.Swap(true) {
		return nil
	}
	n.producer.Stop()
	return nil
}

// Publish sends the body to topic. NSQ carries no headers, so Key and
// Attributes are not transmitted.
func (n *NSQ) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}
	if n.closed.Load() {
		return PublishResult{}, ErrClosed
	}

	if err := n.producer.Publish(topic, msg.Body); err != nil {
		return PublishResult{}, fmt.Errorf("pkgmessage: nsq publish: %w", err)
	}

	return PublishResult{Topic: topic, Timestamp: time.Now()}, nil
}
