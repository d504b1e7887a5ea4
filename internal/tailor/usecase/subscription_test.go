package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/idempotency"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_SubscriptionRenew(t *testing.T) {
	f := newFixture(t)
	f.mailbox.watch = &entity.MailWatch{HistoryID: 7, Expiration: time.Unix(1700000000, 0)}

	got, err := f.uc.SubscriptionRenew(asRole("scheduler"))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.HistoryID)

	_, err = f.uc.SubscriptionRenew(asUser("u1"))
	code, _ := errMessage(t, err)
	assert.Equal(t, goerror.CodeForbidden, code)

	f.mailbox.errWatch = errors.New("quota")
	_, err = f.uc.SubscriptionRenew(asRole("admin"))
	code, _ = errMessage(t, err)
	assert.Equal(t, goerror.CodeBadGateway, code)
}

func TestUsecase_SubscriptionNotify(t *testing.T) {
	snippet := "Nuevo registro Nombre: Ana Pérez Email: ana@example.com gracias"

	tests := []struct {
		name    string
		msg     *entity.MailMessage
		errMsg  error
		wantErr goerror.Code
		created bool
	}{
		{
			name:    "creates user",
			msg:     &entity.MailMessage{ID: "m1", From: `"Cumplo" <Alerts@cumplo.cl>`, Snippet: snippet},
			created: true,
		},
		{name: "no message"},
		{name: "no sender", msg: &entity.MailMessage{ID: "m1", Snippet: snippet}},
		{name: "unknown sender", msg: &entity.MailMessage{ID: "m1", From: "spam@example.com", Snippet: snippet}},
		{name: "no match", msg: &entity.MailMessage{ID: "m1", From: "alerts@cumplo.cl", Snippet: "hola"}},
		{
			name:    "already subscribed",
			msg:     &entity.MailMessage{ID: "m1", From: "alerts@cumplo.cl", Snippet: "Nombre: Jane Email: jane@example.com"},
			created: false,
		},
		{name: "mailbox down", errMsg: errors.New("down"), wantErr: goerror.CodeBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, baseUser())
			f.mailbox.msg = tt.msg
			f.mailbox.errMsg = tt.errMsg

			// Act
			err := f.uc.SubscriptionNotify(asUser(""), SubscriptionNotifyInput{EmailAddress: "inbox@cumplo.cl", HistoryID: 42})

			// Assert
			if tt.wantErr != goerror.CodeInternal {
				code, _ := errMessage(t, err)
				assert.Equal(t, tt.wantErr, code)
				return
			}
			require.NoError(t, err)

			created := f.db.stored("id-1")
			if !tt.created {
				assert.Nil(t, created)
				return
			}
			require.NotNil(t, created)
			assert.Equal(t, "Ana Pérez", created.Name)
			assert.Equal(t, "ana@example.com", created.Email)
		})
	}
}

type recordingGuard struct {
	keys []string
	opts int
	err  error
}

func (g *recordingGuard) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...idempotency.Option) error {
	g.keys = append(g.keys, key)
	g.opts = len(opts)
	if g.err != nil {
		return g.err
	}
	return fn(ctx)
}

func TestUsecase_SubscriptionNotify_Dedup(t *testing.T) {
	tests := []struct {
		name     string
		guardErr error
		wantErr  bool
	}{
		{name: "first delivery"},
		{name: "duplicate is acknowledged", guardErr: idempotency.ErrDuplicate},
		{name: "guard failure", guardErr: errors.New("redis down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			guard := &recordingGuard{err: tt.guardErr}
			f.uc.idemp = guard

			// Act
			err := f.uc.SubscriptionNotify(context.Background(), SubscriptionNotifyInput{HistoryID: 42})

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{"gmail:history:42"}, guard.keys)
			assert.Equal(t, 2, guard.opts)
		})
	}
}

func TestSenderAddress(t *testing.T) {
	assert.Equal(t, "a@b.cl", senderAddress(`"A" <A@b.cl>`))
	assert.Equal(t, "a@b.cl", senderAddress("a@b.cl"))
	assert.Equal(t, "", senderAddress("  "))
}
