package usecase

import (
	"errors"
	"testing"

	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
	"github.com/shandysiswandi/tailor/internal/tailor/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_ResolveAPIKey(t *testing.T) {
	f := newFixture(t, baseUser())

	id, err := f.uc.ResolveAPIKey(asUser(""), "key-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	for _, key := range []string{"", "  ", "key-2"} {
		_, err := f.uc.ResolveAPIKey(asUser(""), key)
		code, msg := errMessage(t, err)
		assert.Equal(t, goerror.CodeUnauthorized, code)
		assert.Equal(t, "Invalid API key", msg)
	}

	f.db.errGet = errors.New("down")
	_, err = f.uc.ResolveAPIKey(asUser(""), "key-1")
	code, _ := errMessage(t, err)
	assert.Equal(t, goerror.CodeInternal, code)
}

func TestUsecase_Credentials(t *testing.T) {
	// Arrange
	f := newFixture(t, baseUser())
	ctx := asUser("u1")

	// Act
	err := f.uc.CredentialsUpsert(ctx, CredentialsUpsertInput{Email: " jane@cumplo.cl ", Password: "secret"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &entity.Credentials{Email: "jane@cumplo.cl", Password: "secret", CumploID: "1"}, f.db.stored("u1").Credentials)

	require.NoError(t, f.uc.CredentialsDelete(ctx))
	assert.Nil(t, f.db.stored("u1").Credentials)
	assert.Equal(t, []entity.FieldGroup{entity.GroupCredentials, entity.GroupCredentials}, f.mq.groups())

	err = f.uc.CredentialsUpsert(ctx, CredentialsUpsertInput{Email: "nope"})
	code, _ := errMessage(t, err)
	assert.Equal(t, goerror.CodeInvalidInput, code)
}

func TestUsecase_Profile(t *testing.T) {
	f := newFixture(t, baseUser())

	got, err := f.uc.Profile(asUser("u1"))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
}

func TestUsecase_ProfileDeleteAndDisable(t *testing.T) {
	other := entity.NewUser("u2", "john@example.com", "John", "key-2")
	f := newFixture(t, baseUser(), other)

	require.NoError(t, f.uc.ProfileDelete(asUser("u1")))
	assert.Nil(t, f.db.stored("u1"))

	require.NoError(t, f.uc.ProfileDisable(asUser("u2")))
	assert.Nil(t, f.db.stored("u2"))
	assert.Contains(t, f.db.disabled, "u2")

	assert.Equal(t, []entity.FieldGroup{entity.GroupDeleted, entity.GroupDeleted}, f.mq.groups())
	assert.Equal(t, "u2", f.mq.sent[1].user.ID)
}

func TestUsecase_UserCreate(t *testing.T) {
	tests := []struct {
		name     string
		in       UserCreateInput
		setup    func(f *fixture)
		wantCode goerror.Code
	}{
		{name: "ok", in: UserCreateInput{Email: "New@Example.com", Name: "New"}},
		{name: "invalid", in: UserCreateInput{Email: "x"}, wantCode: goerror.CodeInvalidInput},
		{name: "email taken", in: UserCreateInput{Email: "jane@example.com", Name: "J"}, wantCode: goerror.CodeConflict},
		{
			name:     "api key provider fails",
			in:       UserCreateInput{Email: "new@example.com", Name: "New"},
			setup:    func(f *fixture) { f.keys.err = errors.New("timeout") },
			wantCode: goerror.CodeBadGateway,
		},
		{
			name:     "store fails",
			in:       UserCreateInput{Email: "new@example.com", Name: "New"},
			setup:    func(f *fixture) { f.db.errCreate = errors.New("down") },
			wantCode: goerror.CodeInternal,
		},
		{
			name:  "email held by disabled user",
			in:    UserCreateInput{Email: "Old@example.com", Name: "Old"},
			setup: func(f *fixture) {
				f.db.disabled["u9"] = mustJSON(entity.NewUser("u9", "old@example.com", "Old", "key-9"))
			},
			wantCode: goerror.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, baseUser())
			if tt.setup != nil {
				tt.setup(f)
			}

			// Act
			got, err := f.uc.UserCreate(asRole("admin"), tt.in)

			// Assert
			if tt.name != "ok" {
				code, _ := errMessage(t, err)
				assert.Equal(t, tt.wantCode, code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "id-1", got.ID)
			assert.Equal(t, "new@example.com", got.Email)
			assert.Equal(t, "key-new", got.APIKey)
			assert.Equal(t, []string{"id-1"}, f.keys.names)
			assert.NotNil(t, f.db.stored("id-1"))
		})
	}
}

func TestUsecase_UserAdmin_RequiresAdmin(t *testing.T) {
	f := newFixture(t, baseUser())

	_, err := f.uc.UserList(asUser("u1"))
	code, _ := errMessage(t, err)
	assert.Equal(t, goerror.CodeForbidden, code)

	users, err := f.uc.UserList(asRole("admin"))
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = f.uc.UserGet(asRole("admin"), UserGetInput{ID: "nope"})
	assert.Equal(t, errUserNotFound, err)
}

func TestUsecase_UserUpdate(t *testing.T) {
	seed := withFilters(withChannels(baseUser(), webhook("c1", "https://a.example")), sampleFilter("f1", "a", 10))

	tests := []struct {
		name       string
		patch      valueobject.JSONMap
		setup      func(f *fixture)
		wantCode   goerror.Code
		wantGroups []entity.FieldGroup
		wantEmail  string
	}{
		{name: "rename", patch: valueobject.JSONMap{"name": "Janet"}},
		{name: "email normalized", patch: valueobject.JSONMap{"email": "  Janet@Example.com "}, wantEmail: "janet@example.com"},
		{
			name:  "email owned by another user",
			patch: valueobject.JSONMap{"email": "Bob@example.com"},
			setup: func(f *fixture) {
				f.db.users["u2"] = mustJSON(entity.NewUser("u2", "bob@example.com", "Bob", "key-2"))
			},
			wantCode: goerror.CodeConflict,
		},
		{
			name:  "email owned by disabled user",
			patch: valueobject.JSONMap{"email": "old@example.com"},
			setup: func(f *fixture) {
				f.db.disabled["u9"] = mustJSON(entity.NewUser("u9", "old@example.com", "Old", "key-9"))
			},
			wantCode: goerror.CodeConflict,
		},
		{
			name:       "nested channel",
			patch:      valueobject.JSONMap{"channels": map[string]any{"c1": map[string]any{"url": "https://b.example"}}},
			wantGroups: []entity.FieldGroup{entity.GroupChannels},
		},
		{
			name: "credentials and filter",
			patch: valueobject.JSONMap{
				"credentials": map[string]any{"email": "j@cumplo.cl", "password": "p", "cumplo_id": "1"},
				"filters":     map[string]any{"f1": map[string]any{"name": "b"}},
			},
			wantGroups: []entity.FieldGroup{entity.GroupFilters, entity.GroupCredentials},
		},
		{name: "id change", patch: valueobject.JSONMap{"id": "u9"}, wantCode: goerror.CodeInvalidInput},
		{name: "api key change", patch: valueobject.JSONMap{"api_key": "k"}, wantCode: goerror.CodeInvalidInput},
		{name: "bad email", patch: valueobject.JSONMap{"email": "x"}, wantCode: goerror.CodeInvalidInput},
		{name: "nothing", patch: valueobject.JSONMap{"name": "Jane"}, wantCode: goerror.CodeInvalidFormat},
		{
			name:     "invalid nested channel",
			patch:    valueobject.JSONMap{"channels": map[string]any{"c1": map[string]any{"url": "nope"}}},
			wantCode: goerror.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, seed)
			if tt.setup != nil {
				tt.setup(f)
			}

			// Act
			got, err := f.uc.UserUpdate(asRole("admin"), UserUpdateInput{ID: "u1", Patch: tt.patch})

			// Assert
			if tt.wantCode != goerror.CodeInternal {
				code, _ := errMessage(t, err)
				assert.Equal(t, tt.wantCode, code)
				assert.Zero(t, f.db.puts)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "u1", got.ID)
			assert.Equal(t, tt.wantGroups, nilIfEmpty(f.mq.groups()))
			if tt.wantEmail != "" {
				assert.Equal(t, tt.wantEmail, got.Email)
				assert.Equal(t, tt.wantEmail, f.db.stored("u1").Email)
			}
		})
	}
}

func nilIfEmpty(g []entity.FieldGroup) []entity.FieldGroup {
	if len(g) == 0 {
		return nil
	}
	return g
}

func TestUsecase_UserLifecycle(t *testing.T) {
	f := newFixture(t, baseUser())
	admin := asRole("admin")

	require.NoError(t, f.uc.UserDisable(admin, UserDeleteInput{ID: "u1"}))
	assert.Equal(t, errUserNotFound, f.uc.UserDisable(admin, UserDeleteInput{ID: "u1"}))

	require.NoError(t, f.uc.UserEnable(admin, UserDeleteInput{ID: "u1"}))
	assert.Equal(t, errUserNotFound, f.uc.UserEnable(admin, UserDeleteInput{ID: "u1"}))
	assert.NotNil(t, f.db.stored("u1"))

	require.NoError(t, f.uc.UserDelete(admin, UserDeleteInput{ID: "u1"}))
	assert.Equal(t, errUserNotFound, f.uc.UserDelete(admin, UserDeleteInput{ID: "u1"}))

	assert.Equal(t, []entity.FieldGroup{entity.GroupDeleted, entity.GroupDeleted}, f.mq.groups())
}
