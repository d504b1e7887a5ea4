package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/tailor/internal/pkg/stacktrace"
)

// safeHandle runs handler and turns a panic into an error so the message is
// redelivered instead of crashing the receive loop.
func safeHandle(ctx context.Context, handler Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in message handler",
				"message_id", msg.ID,
				"panic", rvr,
				"stack", stacktrace.InternalPaths(debug.Stack()),
			)
			err = fmt.Errorf("pkgmessage: handler panicked: %v", rvr)
		}
	}()

	return handler(ctx, msg)
}
