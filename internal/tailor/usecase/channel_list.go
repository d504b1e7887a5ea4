package usecase

import (
	"context"

	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

func (s *Usecase) ChannelList(ctx context.Context) ([]entity.Channel, error) {
	ctx, span := s.startSpan(ctx, "ChannelList")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorChannels, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	return user.ChannelList(), nil
}
