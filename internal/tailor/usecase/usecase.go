package usecase

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/shandysiswandi/tailor/internal/pkg/config"
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/idempotency"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/jwt"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/pkg/validator"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxFilters  = 3
	defaultMaxWebhooks = 5
)

type repoDB interface {
	GetUser(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetDisabledUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByAPIKey(ctx context.Context, apiKey string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	CreateUser(ctx context.Context, user entity.User) error
	PutUser(ctx context.Context, user entity.User) error
	DeleteUser(ctx context.Context, id string) error
	DisableUser(ctx context.Context, user entity.User) error
	EnableUser(ctx context.Context, id string) error
}

type repoMessaging interface {
	PublishUser(ctx context.Context, group entity.FieldGroup, user entity.User) error
}

type apiKeyIssuer interface {
	CreateAPIKey(ctx context.Context, name string) (string, error)
}

type mailbox interface {
	Watch(ctx context.Context) (*entity.MailWatch, error)
	LatestMessage(ctx context.Context) (*entity.MailMessage, error)
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	apiKeys       apiKeyIssuer
	mailbox       mailbox
	idemp         idempotency.Guard
	validator     validator.Validator
	cfg           config.Config
	uuid          uid.StringID
	ins           instrument.Instrumentation
	enforcer      enforcer
	patterns      map[string]*regexp.Regexp
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	APIKeys       apiKeyIssuer
	Mailbox       mailbox
	Idempotency   idempotency.Guard
	Validator     validator.Validator
	Config        config.Config
	UUID          uid.StringID
	Instrument    instrument.Instrumentation
	Enforcer      enforcer
	// SenderPatterns maps a signup email sender to the regex whose first two
	// groups capture the new user's name and email from the snippet.
	SenderPatterns map[string]*regexp.Regexp
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		apiKeys:       dep.APIKeys,
		mailbox:       dep.Mailbox,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uuid:          dep.UUID,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		patterns:      dep.SenderPatterns,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("tailor.usecase").Start(ctx, name)
}

func (s *Usecase) maxFilters() int {
	if n := s.cfg.GetInt("tailor.max_filters"); n > 0 {
		return n
	}
	return defaultMaxFilters
}

func (s *Usecase) maxWebhooks() int {
	if n := s.cfg.GetInt("tailor.max_webhooks"); n > 0 {
		return n
	}
	return defaultMaxWebhooks
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(clm.Role, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "role", clm.Role, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

// caller authorizes the request and loads the end user it acts for.
func (s *Usecase) caller(ctx context.Context, obj, act string) (*entity.User, error) {
	clm, err := s.authenticatedAndAuthorized(ctx, obj, act)
	if err != nil {
		return nil, err
	}
	if clm.UserID == "" {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	user, err := s.repoDB.GetUser(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "authenticated user not found", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("Invalid API key", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	user.EnsureCollections()
	return user, nil
}

// commit persists the whole user, then announces group. A publish failure
// is logged; the write stands.
func (s *Usecase) commit(ctx context.Context, user entity.User, group entity.FieldGroup) error {
	ctx, span := s.startSpan(ctx, "commit")
	defer span.End()

	if err := s.repoDB.PutUser(ctx, user); err != nil {
		slog.ErrorContext(ctx, "failed to repo put user", "user_id", user.ID, "group", group, "error", err)
		return goerror.NewServer(err)
	}

	s.publish(ctx, user, group)
	return nil
}

func (s *Usecase) publish(ctx context.Context, user entity.User, group entity.FieldGroup) {
	if err := s.repoMessaging.PublishUser(ctx, group, user); err != nil {
		slog.ErrorContext(ctx, "failed to publish user event", "user_id", user.ID, "group", group, "error", err)
	}
}

// shapeError turns an entity build failure into a 422.
func shapeError(err error) error {
	var fe *entity.FieldError
	if errors.As(err, &fe) {
		return goerror.NewInvalidInput(nil, fe.Field, fe.Err.Error())
	}

	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		return goerror.NewInvalidInput(err)
	}

	return goerror.NewInvalidInput(nil, "payload", err.Error())
}
