package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
	DriverMemory       = "memory"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("pkgmessage: unknown driver")

// FactoryOptions groups config for supported messaging backends.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

// NewFromDriver constructs a Broker by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Broker, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverNSQ:
		return NewNSQ(opts.NSQ)
	case DriverKafka:
		return NewKafka(opts.Kafka)
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverGooglePubSub:
		return NewPubSub(ctx, opts.PubSub)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
