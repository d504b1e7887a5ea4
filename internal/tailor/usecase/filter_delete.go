package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type FilterDeleteInput struct {
	ID string
}

func (s *Usecase) FilterDelete(ctx context.Context, in FilterDeleteInput) error {
	ctx, span := s.startSpan(ctx, "FilterDelete")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorFilters, constant.PermActWrite)
	if err != nil {
		return err
	}

	if _, ok := user.Filters[in.ID]; !ok {
		slog.WarnContext(ctx, "filter not found", "user_id", user.ID, "filter_id", in.ID)
		return errFilterNotFound
	}

	delete(user.Filters, in.ID)
	return s.commit(ctx, *user, entity.GroupFilters)
}
