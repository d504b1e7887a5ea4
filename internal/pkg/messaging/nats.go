package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrNATSURLRequired is returned when the NATS server URL is missing.
var ErrNATSURLRequired = errors.New("pkgmessage: nats url is required")

// NATSConfig configures the NATS implementation.
type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS is a publish-only broker backed by core NATS. The topic is used as
// the subject.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("pkgmessage: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() error {
	if n.conn.IsClosed() {
		return nil
	}
	return n.conn.Drain()
}

// Publish sends msg to the subject and flushes so the server has it before
// returning. Attributes become NATS headers.
func (n *NATS) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}
	if n.conn.IsClosed() || n.conn.IsDraining() {
		return PublishResult{}, ErrClosed
	}

	nm := nats.NewMsg(topic)
	nm.Data = msg.Body
	for name, value := range msg.Attributes {
		nm.Header.Set(name, value)
	}

	if err := n.conn.PublishMsg(nm); err != nil {
		return PublishResult{}, fmt.Errorf("pkgmessage: nats publish: %w", err)
	}
	if err := n.flush(ctx); err != nil {
		return PublishResult{}, fmt.Errorf("pkgmessage: nats flush: %w", err)
	}

	return PublishResult{Topic: topic, Timestamp: time.Now()}, nil
}

// flush bounds the round trip by ctx when it carries a deadline;
// FlushWithContext rejects contexts without one.
func (n *NATS) flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); ok {
		return n.conn.FlushWithContext(ctx)
	}
	return n.conn.Flush()
}
