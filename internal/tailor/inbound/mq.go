package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/pkg/goroutine"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/messaging"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
)

// ConsumerConfig enables the Pub/Sub pull consumer for Gmail notifications.
// An empty Subscription leaves the push endpoint as the only entry point.
type ConsumerConfig struct {
	Subscription string
	Concurrency  int
}

func RegisterMQConsumer(
	ctx context.Context,
	cfg ConsumerConfig,
	routine *goroutine.Manager,
	consumer messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) error {
	if cfg.Subscription == "" || consumer == nil {
		return nil
	}

	h := &MQHandler{uc: uc, uuid: uuid, ins: ins}
	concurrency := max(cfg.Concurrency, 1)

	return routine.Go(ctx, "gmail-subscription-consumer", func(pCtx context.Context) error {
		slog.InfoContext(pCtx, "Running job for handling consumer", "subscription", cfg.Subscription)
		return consumer.Consume(pCtx,
			cfg.Subscription,
			h.GmailNotification,
			messaging.WithConcurrency(concurrency),
			messaging.WithMaxInFlight(concurrency),
		)
	})
}
