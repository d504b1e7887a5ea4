package apikey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/apikeys/v2"
	"google.golang.org/api/option"
)

var (
	// ErrPending is returned when the create operation is still running after
	// the configured timeout.
	ErrPending = errors.New("apikey: operation did not complete in time")
	// ErrMissingKey is returned when a finished operation carries no key.
	ErrMissingKey = errors.New("apikey: operation response has no key string")
)

// keysAPI is the part of the API Keys service the issuer calls.
type keysAPI interface {
	Create(ctx context.Context, parent string, key *apikeys.V2Key) (*apikeys.Operation, error)
	Operation(ctx context.Context, name string) (*apikeys.Operation, error)
}

type Config struct {
	// Project is the Google Cloud project owning the keys.
	Project string
	// Service restricts every key to one API target, e.g. "cumplo.api.example.cloud.goog".
	Service  string
	Timeout  time.Duration
	Interval time.Duration
}

// Issuer creates API keys through the Google Cloud API Keys service and
// waits for the long running operation to finish.
type Issuer struct {
	api keysAPI
	cfg Config
	ins instrument.Instrumentation
}

// New builds an Issuer backed by apikeys/v2.
func New(ctx context.Context, cfg Config, ins instrument.Instrumentation, opts ...option.ClientOption) (*Issuer, error) {
	svc, err := apikeys.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return newIssuer(googleKeys{svc: svc}, cfg, ins), nil
}

func newIssuer(api keysAPI, cfg Config, ins instrument.Instrumentation) *Issuer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Issuer{api: api, cfg: cfg, ins: ins}
}

// CreateAPIKey creates a key named name and returns its key string.
func (i *Issuer) CreateAPIKey(ctx context.Context, name string) (_ string, err error) {
	ctx, span := i.ins.Tracer("tailor.outbound.apikey").Start(ctx, "CreateAPIKey")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	key := &apikeys.V2Key{
		DisplayName: name,
		Restrictions: &apikeys.V2Restrictions{
			ApiTargets: []*apikeys.V2ApiTarget{{Service: i.cfg.Service}},
		},
	}
	parent := fmt.Sprintf("projects/%s/locations/global", i.cfg.Project)

	op, err := i.api.Create(ctx, parent, key)
	if err != nil {
		return "", fmt.Errorf("apikey: create: %w", err)
	}

	b := retry.WithMaxDuration(i.cfg.Timeout, retry.NewConstant(i.cfg.Interval))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if op.Done {
			return nil
		}
		next, err := i.api.Operation(ctx, op.Name)
		if err != nil {
			return err
		}
		op = next
		if !op.Done {
			return retry.RetryableError(ErrPending)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return keyString(op)
}

func keyString(op *apikeys.Operation) (string, error) {
	if op.Error != nil {
		return "", fmt.Errorf("apikey: operation failed: %s", op.Error.Message)
	}

	var resp struct {
		KeyString string `json:"keyString"`
	}
	if len(op.Response) > 0 {
		if err := json.Unmarshal(op.Response, &resp); err != nil {
			return "", fmt.Errorf("apikey: decode response: %w", err)
		}
	}
	if resp.KeyString == "" {
		return "", ErrMissingKey
	}
	return resp.KeyString, nil
}

type googleKeys struct {
	svc *apikeys.Service
}

func (g googleKeys) Create(ctx context.Context, parent string, key *apikeys.V2Key) (*apikeys.Operation, error) {
	return g.svc.Projects.Locations.Keys.Create(parent, key).Context(ctx).Do()
}

func (g googleKeys) Operation(ctx context.Context, name string) (*apikeys.Operation, error) {
	return g.svc.Operations.Get(name).Context(ctx).Do()
}
