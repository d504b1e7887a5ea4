// Package goroutine runs long-lived background tasks (queue consumers) with
// a concurrency cap, panic recovery and a single join point.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/tailor/internal/pkg/stacktrace"
)

// DefaultMax is used when NewManager receives a non-positive limit.
const DefaultMax = 16

// ErrClosed is returned by Go once Wait has been called.
var ErrClosed = errors.New("goroutine: manager is closed")

// ErrLimit is returned by Go when every slot is taken.
var ErrLimit = errors.New("goroutine: concurrency limit reached")

// Manager runs functions in goroutines and collects their errors.
type Manager struct {
	wg     sync.WaitGroup
	sema   chan struct{}
	mu     sync.Mutex
	errs   []error
	closed bool
}

// NewManager creates a Manager allowing up to limit concurrent tasks.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultMax
	}
	return &Manager{sema: make(chan struct{}, limit)}
}

// Go starts f in a new goroutine. A panic inside f is logged and recorded as
// an error instead of crashing the process.
func (m *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	select {
	case m.sema <- struct{}{}:
	default:
		return ErrLimit
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() { <-m.sema }()

		if err := m.run(ctx, name, f); err != nil {
			m.mu.Lock()
			m.errs = append(m.errs, err)
			m.mu.Unlock()
		}
	}()

	return nil
}

func (m *Manager) run(ctx context.Context, name string, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in background task",
				"task", name, "panic", rvr, "stack", stacktrace.InternalPaths(debug.Stack()))
			err = errors.New("goroutine: task " + name + " panicked")
		}
	}()

	if err := f(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "background task stopped", "task", name, "error", err)
		return err
	}
	return nil
}

// Wait refuses new tasks, blocks until running ones return and joins their errors.
func (m *Manager) Wait() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}
