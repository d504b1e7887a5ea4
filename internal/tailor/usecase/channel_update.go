package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type ChannelUpdateInput struct {
	ID    string
	Patch valueobject.JSONMap
}

func (s *Usecase) ChannelUpdate(ctx context.Context, in ChannelUpdateInput) (*entity.Channel, error) {
	ctx, span := s.startSpan(ctx, "ChannelUpdate")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorChannels, constant.PermActWrite)
	if err != nil {
		return nil, err
	}

	original, ok := user.Channels[in.ID]
	if !ok {
		slog.WarnContext(ctx, "channel not found", "user_id", user.ID, "channel_id", in.ID)
		return nil, errChannelNotFound
	}

	if t, ok := in.Patch["type"]; ok && t != string(original.Type()) {
		return nil, errChannelTypeChange
	}

	base, err := valueobject.FromStruct(original)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode channel", "channel_id", original.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	// A new enabled_events list replaces the whole mask.
	if _, ok := in.Patch["enabled_events"]; ok {
		if _, ok := in.Patch["disabled_events"]; !ok {
			delete(base, "disabled_events")
		}
	}

	merged := base.Merge(in.Patch)
	merged["id"] = original.ID
	merged["type"] = string(original.Type())

	updated, err := s.buildChannel(merged)
	if err != nil {
		slog.WarnContext(ctx, "invalid channel patch", "user_id", user.ID, "channel_id", in.ID, "error", err)
		return nil, err
	}

	if updated.Equal(original) {
		return nil, errNothingToUpdate
	}

	if err := validateChannel(*user, updated, s.maxWebhooks()); err != nil {
		slog.WarnContext(ctx, "channel update rejected", "user_id", user.ID, "channel_id", in.ID, "error", err)
		return nil, err
	}

	user.Channels[updated.ID] = updated
	if err := s.commit(ctx, *user, entity.GroupChannels); err != nil {
		return nil, err
	}

	return &updated, nil
}
