package messaging

type consumeOptions struct {
	concurrency int
	maxInFlight int
}

// ConsumeOption tunes how a Consumer receives messages.
type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	return co
}

// WithConcurrency sets how many handlers run in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMaxInFlight caps the number of unacknowledged messages.
func WithMaxInFlight(n int) ConsumeOption {
	return func(o *consumeOptions) {
		if n > 0 {
			o.maxInFlight = n
		}
	}
}
