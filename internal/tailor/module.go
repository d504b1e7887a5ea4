package tailor

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/shandysiswandi/tailor/internal/pkg/clock"
	"github.com/shandysiswandi/tailor/internal/pkg/config"
	"github.com/shandysiswandi/tailor/internal/pkg/docstore"
	"github.com/shandysiswandi/tailor/internal/pkg/goroutine"
	"github.com/shandysiswandi/tailor/internal/pkg/idempotency"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/messaging"
	"github.com/shandysiswandi/tailor/internal/pkg/router"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/pkg/validator"
	"github.com/shandysiswandi/tailor/internal/tailor/inbound"
	"github.com/shandysiswandi/tailor/internal/tailor/outbound/apikey"
	"github.com/shandysiswandi/tailor/internal/tailor/outbound/db"
	"github.com/shandysiswandi/tailor/internal/tailor/outbound/gmail"
	"github.com/shandysiswandi/tailor/internal/tailor/outbound/mq"
	"github.com/shandysiswandi/tailor/internal/tailor/usecase"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/apikeys/v2"
	gm "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type Dependency struct {
	Ctx         context.Context
	DocStore    docstore.Store             `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Enforcer    *casbin.Enforcer           `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Guard          `validate:"required"`
	Messaging   messaging.Publisher        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	// Consumer is set when the broker can pull (Google Pub/Sub).
	Consumer messaging.Consumer
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ctx := dep.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	patterns, err := senderPatterns(dep.Config.GetArray("tailor.gmail.patterns"))
	if err != nil {
		return err
	}

	keyOpts, err := googleOptions(ctx, dep.Config, apikeys.CloudPlatformScope)
	if err != nil {
		return err
	}
	issuer, err := apikey.New(ctx, apikey.Config{
		Project:  dep.Config.GetString("tailor.api_key.project"),
		Service:  dep.Config.GetString("tailor.api_key.service"),
		Timeout:  dep.Config.GetSecond("tailor.api_key.timeout_seconds"),
		Interval: dep.Config.GetSecond("tailor.api_key.interval_seconds"),
	}, dep.Instrument, keyOpts...)
	if err != nil {
		return fmt.Errorf("tailor: api key client: %w", err)
	}

	mailOpts, err := gmailOptions(ctx, dep.Config)
	if err != nil {
		return err
	}
	mailbox, err := gmail.New(ctx, gmail.Config{
		Topic: dep.Config.GetString("tailor.gmail.topic"),
		Label: dep.Config.GetString("tailor.gmail.label"),
	}, dep.Instrument, mailOpts...)
	if err != nil {
		return fmt.Errorf("tailor: gmail client: %w", err)
	}

	repoDB := db.NewDB(dep.DocStore, db.Collections{
		Users:    dep.Config.GetString("docstore.collections.users"),
		Disabled: dep.Config.GetString("docstore.collections.disabled"),
	}, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.UUID, dep.Clock, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:         repoDB,
		RepoMessaging:  repoMsg,
		APIKeys:        issuer,
		Mailbox:        mailbox,
		Idempotency:    dep.Idempotency,
		Validator:      dep.Validator,
		Config:         dep.Config,
		UUID:           dep.UUID,
		Instrument:     dep.Instrument,
		Enforcer:       dep.Enforcer,
		SenderPatterns: patterns,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetString("tailor.gmail.push_token"))
	if dep.Ctx != nil {
		return inbound.RegisterMQConsumer(dep.Ctx, inbound.ConsumerConfig{
			Subscription: dep.Config.GetString("tailor.gmail.subscription"),
			Concurrency:  dep.Config.GetInt("tailor.gmail.concurrency"),
		}, dep.Goroutine, dep.Consumer, dep.UUID, uc, dep.Instrument)
	}

	return nil
}

// senderPatterns compiles "sender=regex" entries. Senders are matched
// lowercased.
func senderPatterns(entries []string) (map[string]*regexp.Regexp, error) {
	out := make(map[string]*regexp.Regexp, len(entries))
	for _, entry := range entries {
		sender, expr, ok := strings.Cut(entry, "=")
		sender = strings.ToLower(strings.TrimSpace(sender))
		if !ok || sender == "" || expr == "" {
			return nil, fmt.Errorf("tailor: invalid gmail pattern %q, want sender=regex", entry)
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("tailor: gmail pattern for %s: %w", sender, err)
		}
		if re.NumSubexp() < 2 {
			return nil, fmt.Errorf("tailor: gmail pattern for %s needs name and email groups", sender)
		}
		out[sender] = re
	}
	return out, nil
}

func googleOptions(ctx context.Context, cfg config.Config, scopes ...string) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if cfg.GetBool("tailor.google.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}
	if v := strings.TrimSpace(cfg.GetString("tailor.google.credentials_file")); v != "" {
		// #nosec G304 -- path is from trusted config file.
		credsJSON, err := os.ReadFile(v)
		if err != nil {
			return nil, fmt.Errorf("tailor: read google credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, credsJSON, scopes...)
		if err != nil {
			return nil, fmt.Errorf("tailor: parse google credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if v := strings.TrimSpace(cfg.GetString("tailor.google.endpoint")); v != "" {
		opts = append(opts, option.WithEndpoint(v))
	}
	return opts, nil
}

// gmailOptions impersonates the signup mailbox through domain-wide
// delegation when a subject is configured.
func gmailOptions(ctx context.Context, cfg config.Config) ([]option.ClientOption, error) {
	subject := strings.TrimSpace(cfg.GetString("tailor.gmail.subject"))
	file := strings.TrimSpace(cfg.GetString("tailor.google.credentials_file"))
	if subject == "" || file == "" {
		return googleOptions(ctx, cfg, gm.GmailReadonlyScope)
	}

	// #nosec G304 -- path is from trusted config file.
	credsJSON, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("tailor: read google credentials: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(credsJSON, gm.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("tailor: parse gmail delegation credentials: %w", err)
	}
	jwtCfg.Subject = subject

	return []option.ClientOption{option.WithTokenSource(jwtCfg.TokenSource(ctx))}, nil
}
