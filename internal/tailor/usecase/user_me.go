package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

// ResolveAPIKey returns the id of the user owning apiKey.
func (s *Usecase) ResolveAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, span := s.startSpan(ctx, "ResolveAPIKey")
	defer span.End()

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", goerror.NewBusiness("Invalid API key", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserByAPIKey(ctx, apiKey)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "api key not found")
		return "", goerror.NewBusiness("Invalid API key", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by api key", "error", err)
		return "", goerror.NewServer(err)
	}

	return user.ID, nil
}

func (s *Usecase) Profile(ctx context.Context) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	return s.caller(ctx, constant.PermTailorProfile, constant.PermActRead)
}

func (s *Usecase) ProfileDelete(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "ProfileDelete")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorProfile, constant.PermActWrite)
	if err != nil {
		return err
	}

	return s.deleteUser(ctx, *user)
}

func (s *Usecase) ProfileDisable(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "ProfileDisable")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorProfile, constant.PermActWrite)
	if err != nil {
		return err
	}

	return s.disableUser(ctx, *user)
}

func (s *Usecase) deleteUser(ctx context.Context, user entity.User) error {
	if err := s.repoDB.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return errUserNotFound
		}
		slog.ErrorContext(ctx, "failed to repo delete user", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.publish(ctx, user, entity.GroupDeleted)
	return nil
}

func (s *Usecase) disableUser(ctx context.Context, user entity.User) error {
	if err := s.repoDB.DisableUser(ctx, user); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return errUserNotFound
		}
		slog.ErrorContext(ctx, "failed to repo disable user", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.publish(ctx, user, entity.GroupDeleted)
	return nil
}
