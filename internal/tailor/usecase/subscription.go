package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/idempotency"
	"github.com/shandysiswandi/tailor/internal/shared/constant"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
)

func (s *Usecase) SubscriptionRenew(ctx context.Context) (*entity.MailWatch, error) {
	ctx, span := s.startSpan(ctx, "SubscriptionRenew")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermTailorSubscriptions, constant.PermActWrite); err != nil {
		return nil, err
	}

	watch, err := s.mailbox.Watch(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to renew gmail watch", "error", err)
		return nil, goerror.NewUpstream("Failed to renew subscription", err)
	}

	slog.InfoContext(ctx, "gmail watch renewed", "history_id", watch.HistoryID, "expiration", watch.Expiration)
	return watch, nil
}

type SubscriptionNotifyInput struct {
	EmailAddress string
	HistoryID    uint64
}

// SubscriptionNotify handles a mailbox change notification: the newest
// signup email is parsed and its sender becomes a new user. Notifications
// that carry no usable signup are acknowledged without error.
func (s *Usecase) SubscriptionNotify(ctx context.Context, in SubscriptionNotifyInput) error {
	ctx, span := s.startSpan(ctx, "SubscriptionNotify")
	defer span.End()

	key := "gmail:history:" + strconv.FormatUint(in.HistoryID, 10)
	err := s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		return s.handleSignupMail(ctx, in)
	}, s.dedupOptions()...)
	if errors.Is(err, idempotency.ErrDuplicate) {
		slog.InfoContext(ctx, "gmail notification already handled", "history_id", in.HistoryID)
		return nil
	}

	return err
}

func (s *Usecase) dedupOptions() []idempotency.Option {
	var opts []idempotency.Option
	if d := s.cfg.GetSecond("tailor.gmail.dedup_lock_seconds"); d > 0 {
		opts = append(opts, idempotency.WithLockDuration(d))
	}
	if d := s.cfg.GetSecond("tailor.gmail.dedup_ttl_seconds"); d > 0 {
		opts = append(opts, idempotency.WithStateTTL(d))
	}
	return opts
}

func (s *Usecase) handleSignupMail(ctx context.Context, in SubscriptionNotifyInput) error {
	msg, err := s.mailbox.LatestMessage(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read latest gmail message", "history_id", in.HistoryID, "error", err)
		return goerror.NewUpstream("Failed to read mailbox", err)
	}
	if msg == nil {
		slog.WarnContext(ctx, "message not found", "history_id", in.HistoryID)
		return nil
	}

	signup, ok := s.parseSignup(ctx, *msg)
	if !ok {
		return nil
	}

	slog.InfoContext(ctx, "extracted signup from notification", "message_id", msg.ID, "email", signup.Email)

	user, err := s.createUser(ctx, signup)
	if errors.Is(err, errUserExists) {
		slog.InfoContext(ctx, "user already subscribed", "email", signup.Email, "mailbox", in.EmailAddress)
		return nil
	}
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "subscribed user", "user_id", user.ID)
	return nil
}

func (s *Usecase) parseSignup(ctx context.Context, msg entity.MailMessage) (entity.Signup, bool) {
	sender := senderAddress(msg.From)
	if sender == "" {
		slog.WarnContext(ctx, "sender not found", "message_id", msg.ID)
		return entity.Signup{}, false
	}

	pattern, ok := s.patterns[sender]
	if !ok {
		slog.WarnContext(ctx, "unknown sender", "sender", sender)
		return entity.Signup{}, false
	}

	match := pattern.FindStringSubmatch(msg.Snippet)
	if len(match) < 3 {
		slog.WarnContext(ctx, "pattern not found", "sender", sender)
		return entity.Signup{}, false
	}

	return entity.Signup{Name: strings.TrimSpace(match[1]), Email: strings.TrimSpace(match[2])}, true
}

// senderAddress extracts the bare address of a From header such as
// `"Alerts" <alerts@example.com>`.
func senderAddress(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(from); err == nil {
		return strings.ToLower(addr.Address)
	}
	return strings.ToLower(from)
}
