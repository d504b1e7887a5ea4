package inbound

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/jwt"
	"github.com/shandysiswandi/tailor/internal/pkg/router"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"github.com/shandysiswandi/tailor/internal/tailor/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUC implements only what the tests call; anything else panics through
// the nil embedded interface.
type mockUC struct {
	uc

	keys     map[string]string
	claims   *jwt.Claims
	channel  *entity.Channel
	filters  []entity.Filter
	user     *entity.User
	err      error
	notified []usecase.SubscriptionNotifyInput
	created  usecase.ChannelCreateInput
	event    usecase.ChannelEventInput
}

func (m *mockUC) ResolveAPIKey(_ context.Context, key string) (string, error) {
	if id, ok := m.keys[key]; ok {
		return id, nil
	}
	return "", goerror.NewBusiness("Invalid API key", goerror.CodeUnauthorized)
}

func (m *mockUC) ChannelCreate(ctx context.Context, in usecase.ChannelCreateInput) (*entity.Channel, error) {
	m.claims = jwt.GetAuth(ctx)
	m.created = in
	return m.channel, m.err
}

func (m *mockUC) ChannelEventDisable(ctx context.Context, in usecase.ChannelEventInput) error {
	m.claims = jwt.GetAuth(ctx)
	m.event = in
	return m.err
}

func (m *mockUC) FilterList(ctx context.Context) ([]entity.Filter, error) {
	m.claims = jwt.GetAuth(ctx)
	return m.filters, m.err
}

func (m *mockUC) Profile(ctx context.Context) (*entity.User, error) {
	m.claims = jwt.GetAuth(ctx)
	return m.user, m.err
}

func (m *mockUC) UserList(ctx context.Context) ([]entity.User, error) {
	m.claims = jwt.GetAuth(ctx)
	if m.user == nil {
		return nil, m.err
	}
	return []entity.User{*m.user}, m.err
}

func (m *mockUC) SubscriptionNotify(_ context.Context, in usecase.SubscriptionNotifyInput) error {
	m.notified = append(m.notified, in)
	return m.err
}

type mockJWT struct {
	claims jwt.Claims
	err    error
}

func (m *mockJWT) Generate(string, string) (string, error) { return "", nil }

func (m *mockJWT) Verify(string) (jwt.Claims, error) { return m.claims, m.err }

func newServer(t *testing.T, m *mockUC) http.Handler {
	t.Helper()

	r := router.NewRouter(router.Config{
		UUID:   uid.NewSequence("cid"),
		JWT:    &mockJWT{claims: jwt.Claims{Role: "admin"}},
		Public: PublicRoutes,
	})
	RegisterHTTPEndpoint(r, m, "push-secret")
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
		wantUser string
		wantRole string
	}{
		{
			name:     "known key resolves the owner",
			headers:  map[string]string{router.HeaderAPIKey: "key-1"},
			wantCode: http.StatusOK,
			wantUser: "u1",
			wantRole: RoleUser,
		},
		{
			name:     "unknown key",
			headers:  map[string]string{router.HeaderAPIKey: "nope"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "bearer claims pass through",
			headers:  map[string]string{"Authorization": "Bearer token"},
			wantCode: http.StatusOK,
			wantRole: "admin",
		},
		{
			name:     "no credentials",
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := &mockUC{keys: map[string]string{"key-1": "u1"}}
			srv := newServer(t, m)

			// Act
			rec, _ := do(t, srv, http.MethodGet, "/filters", "", tt.headers)

			// Assert
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				assert.Nil(t, m.claims)
				return
			}
			require.NotNil(t, m.claims)
			assert.Equal(t, tt.wantUser, m.claims.UserID)
			assert.Equal(t, tt.wantRole, m.claims.Role)
		})
	}
}

func TestFilterList_EmptyIsArray(t *testing.T) {
	m := &mockUC{keys: map[string]string{"key-1": "u1"}}
	srv := newServer(t, m)

	rec, body := do(t, srv, http.MethodGet, "/filters", "", map[string]string{router.HeaderAPIKey: "key-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["data"])
}

func TestChannelCreate(t *testing.T) {
	m := &mockUC{
		keys:    map[string]string{"key-1": "u1"},
		channel: &entity.Channel{ID: "c1", Settings: entity.Webhook{URL: "https://hooks.example/x"}, Events: entity.AllEvents()},
	}
	srv := newServer(t, m)

	rec, body := do(t, srv, http.MethodPost, "/channels/webhook", `{"url":"https://hooks.example/x"}`,
		map[string]string{router.HeaderAPIKey: "key-1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "webhook", m.created.Type)
	assert.Equal(t, "https://hooks.example/x", m.created.Payload["url"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "c1", data["id"])
	assert.Equal(t, "webhook", data["type"])
}

func TestChannelCreate_ErrorEnvelope(t *testing.T) {
	m := &mockUC{
		keys: map[string]string{"key-1": "u1"},
		err:  goerror.NewBusiness("Max amount of webhooks reached", goerror.CodeConflict),
	}
	srv := newServer(t, m)

	rec, body := do(t, srv, http.MethodPost, "/channels/webhook", `{"url":"https://hooks.example/x"}`,
		map[string]string{router.HeaderAPIKey: "key-1"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Max amount of webhooks reached", body["message"])
}

func TestChannelCreate_BodyMustBeObject(t *testing.T) {
	m := &mockUC{keys: map[string]string{"key-1": "u1"}}
	srv := newServer(t, m)

	rec, _ := do(t, srv, http.MethodPost, "/channels/webhook", `[1,2]`, map[string]string{router.HeaderAPIKey: "key-1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChannelEventDisable(t *testing.T) {
	m := &mockUC{keys: map[string]string{"key-1": "u1"}}
	srv := newServer(t, m)

	rec, _ := do(t, srv, http.MethodDelete, "/channels/c1/events/funding_request.promising", "", map[string]string{router.HeaderAPIKey: "key-1"})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, usecase.ChannelEventInput{ID: "c1", Event: "funding_request.promising"}, m.event)
}

func TestProfile_HidesPassword(t *testing.T) {
	u := entity.NewUser("u1", "jane@example.com", "Jane", "key-1")
	u.Credentials = &entity.Credentials{Email: "jane@cumplo.cl", Password: "hunter2", CumploID: entity.CumploID}
	m := &mockUC{keys: map[string]string{"key-1": "u1"}, user: &u}
	srv := newServer(t, m)

	rec, body := do(t, srv, http.MethodGet, "/users/me", "", map[string]string{router.HeaderAPIKey: "key-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	data := body["data"].(map[string]any)
	assert.Equal(t, map[string]any{"email": "jane@cumplo.cl", "cumplo_id": "1"}, data["credentials"])
	assert.Equal(t, []any{}, data["channels"])
}

func TestUserList_Bearer(t *testing.T) {
	u := entity.NewUser("u1", "jane@example.com", "Jane", "key-1")
	m := &mockUC{user: &u}
	srv := newServer(t, m)

	rec, body := do(t, srv, http.MethodGet, "/admin/users", "", map[string]string{"Authorization": "Bearer token"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, m.claims)
	assert.Equal(t, "admin", m.claims.Role)
	assert.Len(t, body["data"], 1)
}

func pushBody(t *testing.T, data string) string {
	t.Helper()
	env := map[string]any{
		"message": map[string]any{
			"data":       base64.StdEncoding.EncodeToString([]byte(data)),
			"messageId":  "m1",
			"message_id": "m1",
		},
		"subscription": "projects/p/subscriptions/s",
	}
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return string(raw)
}

func TestSubscriptionPush(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		ucErr      error
		wantCode   int
		wantNotify []usecase.SubscriptionNotifyInput
	}{
		{
			name:       "delivers the notification",
			path:       "/subscriptions?token=push-secret",
			body:       `{"emailAddress":"signup@example.com","historyId":42}`,
			wantCode:   http.StatusOK,
			wantNotify: []usecase.SubscriptionNotifyInput{{EmailAddress: "signup@example.com", HistoryID: 42}},
		},
		{
			name:     "wrong token",
			path:     "/subscriptions?token=guess",
			body:     `{"emailAddress":"signup@example.com","historyId":42}`,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "missing token",
			path:     "/subscriptions",
			body:     `{"emailAddress":"signup@example.com","historyId":42}`,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed data is acked",
			path:     "/subscriptions?token=push-secret",
			body:     `not json`,
			wantCode: http.StatusOK,
		},
		{
			name:       "usecase failure asks for redelivery",
			path:       "/subscriptions?token=push-secret",
			body:       `{"emailAddress":"signup@example.com","historyId":7}`,
			ucErr:      goerror.NewUpstream("Failed to read mailbox", assert.AnError),
			wantCode:   http.StatusBadGateway,
			wantNotify: []usecase.SubscriptionNotifyInput{{EmailAddress: "signup@example.com", HistoryID: 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := &mockUC{err: tt.ucErr}
			srv := newServer(t, m)

			// Act
			rec, _ := do(t, srv, http.MethodPost, tt.path, pushBody(t, tt.body), nil)

			// Assert
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantNotify, m.notified)
		})
	}
}
