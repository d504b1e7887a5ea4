package messaging

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Published is a message captured by Memory.
type Published struct {
	Topic   string
	Message OutgoingMessage
}

// Memory is an in-process Broker that records every publish. It backs the
// "memory" driver for local runs and is the broker used in tests.
type Memory struct {
	mu     sync.Mutex
	seq    int
	closed bool
	sent   []Published
	// FailWith, when set, is returned by every Publish.
	FailWith error
}

// NewMemory returns an empty Memory broker.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return PublishResult{}, ErrClosed
	}
	if m.FailWith != nil {
		return PublishResult{}, m.FailWith
	}

	m.seq++
	msg.Attributes = cloneAttributes(msg.Attributes)
	msg.Body = append([]byte(nil), msg.Body...)
	m.sent = append(m.sent, Published{Topic: topic, Message: msg})

	return PublishResult{MessageID: strconv.Itoa(m.seq), Topic: topic, Timestamp: time.Now()}, nil
}

// Sent returns a copy of everything published so far.
func (m *Memory) Sent() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Published(nil), m.sent...)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
