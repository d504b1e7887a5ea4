package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/messaging"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/shared/event"
	"github.com/shandysiswandi/tailor/internal/tailor/usecase"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, attrs map[string]string) context.Context {
	if cid := attrs[keyOfCorrelationID]; cid != "" {
		return instrument.SetCorrelationID(ctx, cid)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// GmailNotification handles a mailbox change published by the Gmail watch.
// Malformed bodies are acked and dropped; usecase errors are nacked.
func (h *MQHandler) GmailNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Attributes)

	ctx, span := h.ins.Tracer("tailor.inbound.mq").Start(ctx, "GmailNotification")
	defer span.End()

	slog.InfoContext(ctx, "consume: gmail notification", "msg_id", msg.ID, "msg_body", string(msg.Body))

	var payload event.GmailNotificationMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of gmail notification", "msg_body", string(msg.Body), "error", err)
		return nil
	}

	if err := h.uc.SubscriptionNotify(ctx, usecase.SubscriptionNotifyInput{
		EmailAddress: payload.EmailAddress,
		HistoryID:    payload.HistoryID,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume gmail notification", "msg_body", string(msg.Body), "error", err)
		return err
	}

	return nil
}
