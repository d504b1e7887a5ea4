package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type ChannelGetInput struct {
	ID string `validate:"required"`
}

func (s *Usecase) ChannelGet(ctx context.Context, in ChannelGetInput) (*entity.Channel, error) {
	ctx, span := s.startSpan(ctx, "ChannelGet")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorChannels, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	ch, ok := user.Channels[in.ID]
	if !ok {
		slog.WarnContext(ctx, "channel not found", "user_id", user.ID, "channel_id", in.ID)
		return nil, errChannelNotFound
	}

	return &ch, nil
}
