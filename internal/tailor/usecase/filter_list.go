package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

func (s *Usecase) FilterList(ctx context.Context) ([]entity.Filter, error) {
	ctx, span := s.startSpan(ctx, "FilterList")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorFilters, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	return user.FilterList(), nil
}

type FilterGetInput struct {
	ID string
}

func (s *Usecase) FilterGet(ctx context.Context, in FilterGetInput) (*entity.Filter, error) {
	ctx, span := s.startSpan(ctx, "FilterGet")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorFilters, constant.PermActRead)
	if err != nil {
		return nil, err
	}

	f, ok := user.Filters[in.ID]
	if !ok {
		slog.WarnContext(ctx, "filter not found", "user_id", user.ID, "filter_id", in.ID)
		return nil, errFilterNotFound
	}

	return &f, nil
}
