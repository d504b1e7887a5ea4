package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type FilterUpdateInput struct {
	ID    string
	Patch valueobject.JSONMap
}

func (s *Usecase) FilterUpdate(ctx context.Context, in FilterUpdateInput) (*entity.Filter, error) {
	ctx, span := s.startSpan(ctx, "FilterUpdate")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorFilters, constant.PermActWrite)
	if err != nil {
		return nil, err
	}

	original, ok := user.Filters[in.ID]
	if !ok {
		slog.WarnContext(ctx, "filter not found", "user_id", user.ID, "filter_id", in.ID)
		return nil, errFilterNotFound
	}

	base, err := valueobject.FromStruct(original)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode filter", "filter_id", original.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	merged := base.Merge(in.Patch)
	merged["id"] = original.ID

	updated, err := s.buildFilter(merged)
	if err != nil {
		slog.WarnContext(ctx, "invalid filter patch", "user_id", user.ID, "filter_id", in.ID, "error", err)
		return nil, err
	}

	if updated.Equal(original) {
		return nil, errNothingToUpdate
	}

	if err := validateUpdatedFilter(*user, original, updated); err != nil {
		slog.WarnContext(ctx, "filter update rejected", "user_id", user.ID, "filter_id", in.ID, "error", err)
		return nil, err
	}

	user.Filters[updated.ID] = updated
	if err := s.commit(ctx, *user, entity.GroupFilters); err != nil {
		return nil, err
	}

	return &updated, nil
}
