package mq

import (
	"context"
	"fmt"
	"time"

	ceevent "github.com/cloudevents/sdk-go/v2/event"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/messaging"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/shared/event"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	keyOfCorrelationID string = "cID"
	eventSource        string = "tailor"
)

var destinations = map[entity.FieldGroup]string{
	entity.GroupChannels:    event.UserChannelsUpdatedDestination,
	entity.GroupFilters:     event.UserFiltersUpdatedDestination,
	entity.GroupCredentials: event.UserCredentialsUpdatedDestination,
	entity.GroupDeleted:     event.UserDeletedDestination,
}

type clocker interface {
	Now() time.Time
}

type Messaging struct {
	client messaging.Publisher
	uuid   uid.StringID
	clock  clocker
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, uuid uid.StringID, clock clocker, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, uuid: uuid, clock: clock, ins: ins}
}

// PublishUser announces a committed change of group. The body is the full
// user snapshot wrapped as a binary-mode CloudEvent: the ce-* context lives
// in the message attributes and the message key is the user id.
func (m *Messaging) PublishUser(ctx context.Context, group entity.FieldGroup, user entity.User) error {
	ctx, span := m.ins.Tracer("tailor.outbound.mq").Start(ctx, "PublishUser")
	defer span.End()

	topic, ok := destinations[group]
	if !ok {
		err := fmt.Errorf("mq: no destination for group %q", group)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("messaging.destination", topic))

	ev, err := m.newEvent(topic, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	attrs := map[string]string{
		"ce-specversion": ev.SpecVersion(),
		"ce-id":          ev.ID(),
		"ce-source":      ev.Source(),
		"ce-type":        ev.Type(),
		"ce-subject":     ev.Subject(),
		"ce-time":        ev.Time().UTC().Format(time.RFC3339Nano),
		"content-type":   ev.DataContentType(),
	}
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		attrs[keyOfCorrelationID] = cID
	}

	if _, err := m.client.Publish(ctx, topic, messaging.OutgoingMessage{
		Body:       ev.Data(),
		Key:        user.ID,
		Attributes: attrs,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) newEvent(topic string, user entity.User) (*ceevent.Event, error) {
	ev := ceevent.New()
	ev.SetID(m.uuid.Generate())
	ev.SetSource(eventSource)
	ev.SetType(event.EventTypePrefix + topic)
	ev.SetSubject(user.ID)
	ev.SetTime(m.clock.Now())

	if err := ev.SetData(ceevent.ApplicationJSON, user); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
