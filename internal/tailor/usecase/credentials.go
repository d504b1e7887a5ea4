package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

type CredentialsUpsertInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

func (s *Usecase) CredentialsUpsert(ctx context.Context, in CredentialsUpsertInput) error {
	ctx, span := s.startSpan(ctx, "CredentialsUpsert")
	defer span.End()

	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.caller(ctx, constant.PermTailorCredentials, constant.PermActWrite)
	if err != nil {
		return err
	}

	user.Credentials = &entity.Credentials{
		Email:    in.Email,
		Password: in.Password,
		CumploID: entity.CumploID,
	}
	return s.commit(ctx, *user, entity.GroupCredentials)
}

// CredentialsDelete clears the credentials. Clearing absent credentials is
// still announced.
func (s *Usecase) CredentialsDelete(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "CredentialsDelete")
	defer span.End()

	user, err := s.caller(ctx, constant.PermTailorCredentials, constant.PermActWrite)
	if err != nil {
		return err
	}

	user.Credentials = nil
	return s.commit(ctx, *user, entity.GroupCredentials)
}
