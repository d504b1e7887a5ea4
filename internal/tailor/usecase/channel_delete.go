package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type ChannelDeleteInput struct {
	ID string
}

func (s *Usecase) ChannelDelete(ctx context.Context, in ChannelDeleteInput) error {
	ctx, span := s.startSpan(ctx, "ChannelDelete")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorChannels, constant.PermActWrite)
	if err != nil {
		return err
	}

	if _, ok := user.Channels[in.ID]; !ok {
		slog.WarnContext(ctx, "channel not found", "user_id", user.ID, "channel_id", in.ID)
		return errChannelNotFound
	}

	delete(user.Channels, in.ID)
	return s.commit(ctx, *user, entity.GroupChannels)
}
