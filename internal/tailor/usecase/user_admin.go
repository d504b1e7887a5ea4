package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

var (
	errUserNotFound = goerror.NewBusiness("User not found", goerror.CodeNotFound)
	errUserExists   = goerror.NewBusiness("User with that email already exists", goerror.CodeConflict)
)

func (s *Usecase) UserList(ctx context.Context) ([]entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermTailorUsers, constant.PermActRead); err != nil {
		return nil, err
	}

	users, err := s.repoDB.ListUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	return users, nil
}

type UserGetInput struct {
	ID string
}

func (s *Usecase) UserGet(ctx context.Context, in UserGetInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserGet")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermTailorUsers, constant.PermActRead); err != nil {
		return nil, err
	}

	return s.findUser(ctx, in.ID)
}

type UserCreateInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"required,max=100"`
}

func (s *Usecase) UserCreate(ctx context.Context, in UserCreateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserCreate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermTailorUsers, constant.PermActWrite); err != nil {
		return nil, err
	}

	return s.createUser(ctx, entity.Signup{Name: in.Name, Email: in.Email})
}

// createUser provisions an API key for a new user and stores it. An email
// already in use is a conflict.
func (s *Usecase) createUser(ctx context.Context, in entity.Signup) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	if err := s.checkEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	id := s.uuid.Generate()
	apiKey, err := s.apiKeys.CreateAPIKey(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create api key", "user_id", id, "error", err)
		return nil, goerror.NewUpstream("Failed to create API key", err)
	}

	user := entity.NewUser(id, email, name, apiKey)
	if err := s.validator.Validate(user); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	err = s.repoDB.CreateUser(ctx, user)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "user already exists", "user_id", id)
		return nil, errUserExists
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "user_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user created", "user_id", id)
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// checkEmailFree fails with a conflict when a user other than ownerID holds
// email, active or disabled.
func (s *Usecase) checkEmailFree(ctx context.Context, email, ownerID string) error {
	lookups := []func(context.Context, string) (*entity.User, error){
		s.repoDB.GetUserByEmail,
		s.repoDB.GetDisabledUserByEmail,
	}
	for _, lookup := range lookups {
		u, err := lookup(ctx, email)
		if errors.Is(err, goerror.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
			return goerror.NewServer(err)
		}
		if u.ID != ownerID {
			slog.WarnContext(ctx, "user account already exists", "email", email, "user_id", u.ID)
			return errUserExists
		}
	}
	return nil
}

type UserUpdateInput struct {
	ID    string
	Patch valueobject.JSONMap
}

// UserUpdate deep merges the patch into the stored user. Every field group
// whose content changed is announced once.
func (s *Usecase) UserUpdate(ctx context.Context, in UserUpdateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserUpdate")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermTailorUsers, constant.PermActWrite); err != nil {
		return nil, err
	}

	original, err := s.findUser(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	base, err := valueobject.FromStruct(original)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode user", "user_id", original.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	merged := base.Merge(in.Patch)
	if merged.GetString("id") != original.ID {
		return nil, goerror.NewInvalidInput(nil, "id", "cannot be changed")
	}
	if merged.GetString("api_key") != original.APIKey {
		return nil, goerror.NewInvalidInput(nil, "api_key", "cannot be changed")
	}

	var updated entity.User
	if err := merged.Decode(&updated); err != nil {
		return nil, shapeError(err)
	}
	updated.EnsureCollections()
	updated.Email = normalizeEmail(updated.Email)
	for id, f := range updated.Filters {
		updated.Filters[id] = f.Normalize()
	}
	if err := s.validateUser(updated); err != nil {
		return nil, err
	}

	groups, err := changedGroups(*original, updated)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compare users", "user_id", original.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if len(groups) == 0 && original.Email == updated.Email && original.Name == updated.Name {
		return nil, errNothingToUpdate
	}
	if updated.Email != original.Email {
		if err := s.checkEmailFree(ctx, updated.Email, original.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repoDB.PutUser(ctx, updated); err != nil {
		slog.ErrorContext(ctx, "failed to repo put user", "user_id", updated.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	for _, g := range groups {
		s.publish(ctx, updated, g)
	}

	return &updated, nil
}

// validateUser checks the user shape and every nested entity, including the
// per-user channel and filter rules.
func (s *Usecase) validateUser(u entity.User) error {
	if err := s.validator.Validate(u); err != nil {
		return goerror.NewInvalidInput(err)
	}

	for id, ch := range u.Channels {
		if ch.ID != id {
			return goerror.NewInvalidInput(nil, "channels", "channel id does not match its key")
		}
		if err := s.validator.Validate(ch.Settings); err != nil {
			return shapeError(err)
		}
		if err := validateChannel(u, ch, s.maxWebhooks()); err != nil {
			return err
		}
	}

	if len(u.Filters) > s.maxFilters() {
		return errMaxFilters
	}
	for id, f := range u.Filters {
		if f.ID != id {
			return goerror.NewInvalidInput(nil, "filters", "filter id does not match its key")
		}
		if err := s.validator.Validate(f); err != nil {
			return shapeError(err)
		}
		if err := f.CheckRanges(); err != nil {
			return shapeError(err)
		}
		if lo.ContainsBy(u.OtherFilters(f.ID), f.Equal) {
			return errUpdatedFilterExists
		}
	}

	return nil
}

func changedGroups(before, after entity.User) ([]entity.FieldGroup, error) {
	pairs := []struct {
		group  entity.FieldGroup
		before any
		after  any
	}{
		{entity.GroupChannels, before.Channels, after.Channels},
		{entity.GroupFilters, before.Filters, after.Filters},
		{entity.GroupCredentials, before.Credentials, after.Credentials},
	}

	var out []entity.FieldGroup
	for _, p := range pairs {
		a, err := json.Marshal(p.before)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(p.after)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(a, b) {
			out = append(out, p.group)
		}
	}
	return out, nil
}

type UserDeleteInput struct {
	ID string
}

func (s *Usecase) UserDelete(ctx context.Context, in UserDeleteInput) error {
	ctx, span := s.startSpan(ctx, "UserDelete")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermTailorUsers, constant.PermActWrite); err != nil {
		return err
	}

	user, err := s.findUser(ctx, in.ID)
	if err != nil {
		return err
	}

	return s.deleteUser(ctx, *user)
}

func (s *Usecase) UserDisable(ctx context.Context, in UserDeleteInput) error {
	ctx, span := s.startSpan(ctx, "UserDisable")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermTailorUsers, constant.PermActWrite); err != nil {
		return err
	}

	user, err := s.findUser(ctx, in.ID)
	if err != nil {
		return err
	}

	return s.disableUser(ctx, *user)
}

func (s *Usecase) UserEnable(ctx context.Context, in UserDeleteInput) error {
	ctx, span := s.startSpan(ctx, "UserEnable")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermTailorUsers, constant.PermActWrite); err != nil {
		return err
	}

	err := s.repoDB.EnableUser(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "disabled user not found", "user_id", in.ID)
		return errUserNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo enable user", "user_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

func (s *Usecase) findUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.repoDB.GetUser(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "user_id", id)
		return nil, errUserNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user", "user_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	user.EnsureCollections()
	return user, nil
}
