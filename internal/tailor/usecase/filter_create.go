package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type FilterCreateInput struct {
	Payload valueobject.JSONMap
}

func (s *Usecase) FilterCreate(ctx context.Context, in FilterCreateInput) (*entity.Filter, error) {
	ctx, span := s.startSpan(ctx, "FilterCreate")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorFilters, constant.PermActWrite)
	if err != nil {
		return nil, err
	}

	payload := in.Payload.Clone()
	if payload == nil {
		payload = valueobject.JSONMap{}
	}
	payload["id"] = s.uuid.Generate()

	f, err := s.buildFilter(payload)
	if err != nil {
		slog.WarnContext(ctx, "invalid filter payload", "user_id", user.ID, "error", err)
		return nil, err
	}

	if err := validateNewFilter(*user, f, s.maxFilters()); err != nil {
		slog.WarnContext(ctx, "filter rejected", "user_id", user.ID, "error", err)
		return nil, err
	}

	user.Filters[f.ID] = f
	if err := s.commit(ctx, *user, entity.GroupFilters); err != nil {
		return nil, err
	}

	return &f, nil
}

func (s *Usecase) buildFilter(m valueobject.JSONMap) (entity.Filter, error) {
	var f entity.Filter
	if err := m.Decode(&f); err != nil {
		return entity.Filter{}, shapeError(err)
	}

	f = f.Normalize()
	if err := s.validator.Validate(f); err != nil {
		return entity.Filter{}, shapeError(err)
	}
	if err := f.CheckRanges(); err != nil {
		return entity.Filter{}, shapeError(err)
	}

	return f, nil
}
