package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type ChannelCreateInput struct {
	Type    string
	Payload valueobject.JSONMap
}

func (s *Usecase) ChannelCreate(ctx context.Context, in ChannelCreateInput) (*entity.Channel, error) {
	ctx, span := s.startSpan(ctx, "ChannelCreate")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorChannels, constant.PermActWrite)
	if err != nil {
		return nil, err
	}

	payload := in.Payload.Clone()
	if payload == nil {
		payload = valueobject.JSONMap{}
	}
	payload["type"] = in.Type
	payload["id"] = s.uuid.Generate()

	ch, err := s.buildChannel(payload)
	if err != nil {
		slog.WarnContext(ctx, "invalid channel payload", "user_id", user.ID, "type", in.Type, "error", err)
		return nil, err
	}

	if err := validateChannel(*user, ch, s.maxWebhooks()); err != nil {
		slog.WarnContext(ctx, "channel rejected", "user_id", user.ID, "type", ch.Type(), "error", err)
		return nil, err
	}

	user.Channels[ch.ID] = ch
	if err := s.commit(ctx, *user, entity.GroupChannels); err != nil {
		return nil, err
	}

	return &ch, nil
}

// buildChannel is the only way untyped input becomes a Channel.
func (s *Usecase) buildChannel(m valueobject.JSONMap) (entity.Channel, error) {
	ch, err := entity.ChannelFromMap(m)
	if errors.Is(err, entity.ErrUnknownChannelType) {
		return entity.Channel{}, goerror.NewInvalidInput(nil, "type", "unknown channel type")
	}
	if err != nil {
		return entity.Channel{}, shapeError(err)
	}

	if err := s.validator.Validate(ch.Settings); err != nil {
		return entity.Channel{}, shapeError(err)
	}

	return ch, nil
}
