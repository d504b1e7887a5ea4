package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type ChannelEventInput struct {
	ID    string
	Event string
}

func (s *Usecase) ChannelEventEnable(ctx context.Context, in ChannelEventInput) error {
	ctx, span := s.startSpan(ctx, "ChannelEventEnable")
	defer span.End()

	return s.toggleEvent(ctx, in, entity.EventMask.Enable)
}

func (s *Usecase) ChannelEventDisable(ctx context.Context, in ChannelEventInput) error {
	ctx, span := s.startSpan(ctx, "ChannelEventDisable")
	defer span.End()

	return s.toggleEvent(ctx, in, entity.EventMask.Disable)
}

func (s *Usecase) toggleEvent(
	ctx context.Context,
	in ChannelEventInput,
	toggle func(entity.EventMask, entity.EventKind) (entity.EventMask, error),
) error {
	kind, err := entity.ParseEventKind(in.Event)
	if err != nil {
		return goerror.NewInvalidInput(nil, "event", unknownEventMessage())
	}

	user, err := s.caller(ctx, constant.PermTailorChannels, constant.PermActWrite)
	if err != nil {
		return err
	}

	ch, ok := user.Channels[in.ID]
	if !ok {
		slog.WarnContext(ctx, "channel not found", "user_id", user.ID, "channel_id", in.ID)
		return errChannelNotFound
	}

	mask, err := toggle(ch.Events, kind)
	switch {
	case errors.Is(err, entity.ErrEventAlreadyEnabled):
		return errEventEnabled
	case errors.Is(err, entity.ErrEventAlreadyDisabled):
		return errEventDisabled
	case err != nil:
		return goerror.NewInvalidInput(nil, "event", err.Error())
	}

	ch.Events = mask
	user.Channels[ch.ID] = ch
	return s.commit(ctx, *user, entity.GroupChannels)
}

func unknownEventMessage() string {
	kinds := lo.Map(entity.EventKinds(), func(k entity.EventKind, _ int) string { return string(k) })
	return "unknown event kind, want one of " + strings.Join(kinds, ", ")
}
