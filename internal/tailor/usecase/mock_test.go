package usecase

import (
	"context"
	"encoding/json"
	"maps"
	"regexp"
	"slices"
	"testing"

	"github.com/shandysiswandi/tailor/internal/pkg/config"
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/idempotency"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/jwt"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/pkg/validator"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"github.com/stretchr/testify/require"
)

// mockRepoDB keeps users as JSON so every read returns a fresh copy.
type mockRepoDB struct {
	users    map[string][]byte
	disabled map[string][]byte

	errGet    error
	errPut    error
	errCreate error
	puts      int
}

func newMockRepoDB(users ...entity.User) *mockRepoDB {
	m := &mockRepoDB{users: map[string][]byte{}, disabled: map[string][]byte{}}
	for _, u := range users {
		m.users[u.ID] = mustJSON(u)
	}
	return m
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func decodeUser(b []byte) *entity.User {
	var u entity.User
	if err := json.Unmarshal(b, &u); err != nil {
		panic(err)
	}
	return &u
}

func (m *mockRepoDB) stored(id string) *entity.User {
	b, ok := m.users[id]
	if !ok {
		return nil
	}
	return decodeUser(b)
}

func (m *mockRepoDB) GetUser(_ context.Context, id string) (*entity.User, error) {
	if m.errGet != nil {
		return nil, m.errGet
	}
	b, ok := m.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return decodeUser(b), nil
}

func (m *mockRepoDB) find(pred func(entity.User) bool) (*entity.User, error) {
	if m.errGet != nil {
		return nil, m.errGet
	}
	for _, id := range slices.Sorted(maps.Keys(m.users)) {
		if u := decodeUser(m.users[id]); pred(*u) {
			return u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *mockRepoDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.Email == email })
}

func (m *mockRepoDB) GetDisabledUserByEmail(_ context.Context, email string) (*entity.User, error) {
	if m.errGet != nil {
		return nil, m.errGet
	}
	for _, id := range slices.Sorted(maps.Keys(m.disabled)) {
		if u := decodeUser(m.disabled[id]); u.Email == email {
			return u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *mockRepoDB) GetUserByAPIKey(_ context.Context, apiKey string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.APIKey == apiKey })
}

func (m *mockRepoDB) ListUsers(context.Context) ([]entity.User, error) {
	if m.errGet != nil {
		return nil, m.errGet
	}
	out := make([]entity.User, 0, len(m.users))
	for _, id := range slices.Sorted(maps.Keys(m.users)) {
		out = append(out, *decodeUser(m.users[id]))
	}
	return out, nil
}

func (m *mockRepoDB) CreateUser(_ context.Context, user entity.User) error {
	if m.errCreate != nil {
		return m.errCreate
	}
	if _, ok := m.users[user.ID]; ok {
		return goerror.ErrConflict
	}
	m.users[user.ID] = mustJSON(user)
	return nil
}

func (m *mockRepoDB) PutUser(_ context.Context, user entity.User) error {
	if m.errPut != nil {
		return m.errPut
	}
	m.puts++
	m.users[user.ID] = mustJSON(user)
	return nil
}

func (m *mockRepoDB) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return goerror.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockRepoDB) DisableUser(_ context.Context, user entity.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return goerror.ErrNotFound
	}
	m.disabled[user.ID] = mustJSON(user)
	delete(m.users, user.ID)
	return nil
}

func (m *mockRepoDB) EnableUser(_ context.Context, id string) error {
	b, ok := m.disabled[id]
	if !ok {
		return goerror.ErrNotFound
	}
	m.users[id] = b
	delete(m.disabled, id)
	return nil
}

type published struct {
	group entity.FieldGroup
	user  entity.User
}

type mockMessaging struct {
	sent []published
	err  error
}

func (m *mockMessaging) PublishUser(_ context.Context, group entity.FieldGroup, user entity.User) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, published{group: group, user: user})
	return nil
}

func (m *mockMessaging) groups() []entity.FieldGroup {
	out := make([]entity.FieldGroup, 0, len(m.sent))
	for _, p := range m.sent {
		out = append(out, p.group)
	}
	return out
}

type mockAPIKeys struct {
	key   string
	err   error
	names []string
}

func (m *mockAPIKeys) CreateAPIKey(_ context.Context, name string) (string, error) {
	m.names = append(m.names, name)
	return m.key, m.err
}

type mockMailbox struct {
	watch    *entity.MailWatch
	msg      *entity.MailMessage
	errWatch error
	errMsg   error
	reads    int
}

func (m *mockMailbox) Watch(context.Context) (*entity.MailWatch, error) {
	return m.watch, m.errWatch
}

func (m *mockMailbox) LatestMessage(context.Context) (*entity.MailMessage, error) {
	m.reads++
	return m.msg, m.errMsg
}

// mockEnforcer allows "role:obj:act" triples listed in allow.
type mockEnforcer struct {
	allow []string
	err   error
}

func (m *mockEnforcer) Enforce(rvals ...any) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	key := rvals[0].(string) + ":" + rvals[1].(string) + ":" + rvals[2].(string)
	return slices.Contains(m.allow, key), nil
}

type fixture struct {
	uc      *Usecase
	db      *mockRepoDB
	mq      *mockMessaging
	keys    *mockAPIKeys
	mailbox *mockMailbox
	enf     *mockEnforcer
}

const testConfig = `
tailor:
  max_filters: 2
  max_webhooks: 2
  gmail:
    dedup_lock_seconds: 30
    dedup_ttl_seconds: 3600
`

func newFixture(t *testing.T, users ...entity.User) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)
	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)

	f := &fixture{
		db:      newMockRepoDB(users...),
		mq:      &mockMessaging{},
		keys:    &mockAPIKeys{key: "key-new"},
		mailbox: &mockMailbox{},
		enf: &mockEnforcer{allow: []string{
			"user:channels:read", "user:channels:write",
			"user:filters:read", "user:filters:write",
			"user:credentials:write",
			"user:profile:read", "user:profile:write",
			"admin:users:read", "admin:users:write",
			"admin:subscriptions:write", "scheduler:subscriptions:write",
		}},
	}
	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoMessaging: f.mq,
		APIKeys:       f.keys,
		Mailbox:       f.mailbox,
		Idempotency:   idempotency.Noop{},
		Validator:     v,
		Config:        cfg,
		UUID:          uid.NewSequence("id-1", "id-2", "id-3"),
		Instrument:    instrument.NewNoop(),
		Enforcer:      f.enf,
		SenderPatterns: map[string]*regexp.Regexp{
			"alerts@cumplo.cl": regexp.MustCompile(`Nombre: (.+?) Email: (\S+)`),
		},
	})
	return f
}

func asUser(id string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: id, Role: "user"})
}

func asRole(role string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{Role: role})
}

func baseUser() entity.User {
	return entity.NewUser("u1", "jane@example.com", "Jane", "key-1")
}

func whatsapp(id, phone string) entity.Channel {
	return entity.Channel{ID: id, Events: entity.AllEvents(), Settings: entity.WhatsApp{PhoneNumber: phone}}
}

func ifttt(id, key, event string) entity.Channel {
	return entity.Channel{ID: id, Events: entity.AllEvents(), Settings: entity.IFTTT{Key: key, Event: event}}
}

func webhook(id, url string) entity.Channel {
	return entity.Channel{ID: id, Events: entity.AllEvents(), Settings: entity.Webhook{URL: url}}
}

func withChannels(u entity.User, chs ...entity.Channel) entity.User {
	for _, c := range chs {
		u.Channels[c.ID] = c
	}
	return u
}

func withFilters(u entity.User, fs ...entity.Filter) entity.User {
	for _, f := range fs {
		u.Filters[f.ID] = f
	}
	return u
}

func ptr[T any](v T) *T { return &v }

func errMessage(t *testing.T, err error) (goerror.Code, string) {
	t.Helper()
	var e *goerror.Error
	require.ErrorAs(t, err, &e)
	return e.Code(), e.Msg()
}
