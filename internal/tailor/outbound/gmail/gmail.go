package gmail

import (
	"context"
	"strings"
	"time"

	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	gm "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const me = "me"

// mailAPI is the part of the Gmail API the mailbox calls.
type mailAPI interface {
	Watch(ctx context.Context, req *gm.WatchRequest) (*gm.WatchResponse, error)
	ListMessages(ctx context.Context, label string, limit int64) ([]*gm.Message, error)
	GetMessage(ctx context.Context, id string) (*gm.Message, error)
}

type Config struct {
	// Topic is the Pub/Sub topic Gmail publishes mailbox changes to.
	Topic string
	// Label restricts notifications and reads to one label.
	Label string
}

// Mailbox reads the signup mailbox and keeps its push subscription alive.
type Mailbox struct {
	api mailAPI
	cfg Config
	ins instrument.Instrumentation
}

func New(ctx context.Context, cfg Config, ins instrument.Instrumentation, opts ...option.ClientOption) (*Mailbox, error) {
	svc, err := gm.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return newMailbox(googleMail{svc: svc}, cfg, ins), nil
}

func newMailbox(api mailAPI, cfg Config, ins instrument.Instrumentation) *Mailbox {
	if cfg.Label == "" {
		cfg.Label = "INBOX"
	}
	return &Mailbox{api: api, cfg: cfg, ins: ins}
}

func (m *Mailbox) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return m.ins.Tracer("tailor.outbound.gmail").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Watch (re)subscribes the label to the topic. Gmail requires a renewal at
// least every seven days.
func (m *Mailbox) Watch(ctx context.Context) (_ *entity.MailWatch, err error) {
	ctx, span := m.startSpan(ctx, "Watch")
	defer func() { endSpan(span, err) }()

	resp, err := m.api.Watch(ctx, &gm.WatchRequest{
		TopicName:           m.cfg.Topic,
		LabelIds:            []string{m.cfg.Label},
		LabelFilterBehavior: "include",
	})
	if err != nil {
		return nil, err
	}

	return &entity.MailWatch{HistoryID: resp.HistoryId, Expiration: time.UnixMilli(resp.Expiration)}, nil
}

// LatestMessage returns the newest labelled message, or nil when the label
// is empty.
func (m *Mailbox) LatestMessage(ctx context.Context) (_ *entity.MailMessage, err error) {
	ctx, span := m.startSpan(ctx, "LatestMessage")
	defer func() { endSpan(span, err) }()

	msgs, err := m.api.ListMessages(ctx, m.cfg.Label, 1)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	msg, err := m.api.GetMessage(ctx, msgs[0].Id)
	if err != nil {
		return nil, err
	}

	return &entity.MailMessage{ID: msg.Id, From: header(msg, "From"), Snippet: msg.Snippet}, nil
}

func header(msg *gm.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

type googleMail struct {
	svc *gm.Service
}

func (g googleMail) Watch(ctx context.Context, req *gm.WatchRequest) (*gm.WatchResponse, error) {
	return g.svc.Users.Watch(me, req).Context(ctx).Do()
}

func (g googleMail) ListMessages(ctx context.Context, label string, limit int64) ([]*gm.Message, error) {
	resp, err := g.svc.Users.Messages.List(me).LabelIds(label).MaxResults(limit).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (g googleMail) GetMessage(ctx context.Context, id string) (*gm.Message, error) {
	return g.svc.Users.Messages.Get(me, id).Format("metadata").MetadataHeaders("From").Context(ctx).Do()
}
