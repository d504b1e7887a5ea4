package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite checks the Store contract against any driver.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Create(ctx, "users", "u1", []byte(`{"id":"u1"}`), Index{"email": "a@x.io"}))

		got, err := s.Get(ctx, "users", "u1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"u1"}`, string(got))

		err = s.Create(ctx, "users", "u1", []byte(`{"id":"u1"}`), nil)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(ctx, "users", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put replaces document and index", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "users", "u1", []byte(`{"v":1}`), Index{"api_key": "k1"}))
		require.NoError(t, s.Put(ctx, "users", "u1", []byte(`{"v":2}`), Index{"api_key": "k2"}))

		got, err := s.Get(ctx, "users", "u1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(got))

		_, err = s.FindOne(ctx, "users", "api_key", "k1")
		assert.ErrorIs(t, err, ErrNotFound)

		got, err = s.FindOne(ctx, "users", "api_key", "k2")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(got))
	})

	t.Run("find one picks lowest id", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "users", "b", []byte(`{"id":"b"}`), Index{"email": "same@x.io"}))
		require.NoError(t, s.Put(ctx, "users", "a", []byte(`{"id":"a"}`), Index{"email": "same@x.io"}))

		got, err := s.FindOne(ctx, "users", "email", "same@x.io")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"a"}`, string(got))

		_, err = s.FindOne(ctx, "users", "email", "other@x.io")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list is ordered and scoped to collection", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "users", "u2", []byte(`{"id":"u2"}`), nil))
		require.NoError(t, s.Put(ctx, "users", "u1", []byte(`{"id":"u1"}`), nil))
		require.NoError(t, s.Put(ctx, "disabled", "u3", []byte(`{"id":"u3"}`), nil))

		docs, err := s.List(ctx, "users")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.JSONEq(t, `{"id":"u1"}`, string(docs[0]))
		assert.JSONEq(t, `{"id":"u2"}`, string(docs[1]))

		docs, err = s.List(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "users", "u1", []byte(`{"id":"u1"}`), Index{"email": "a@x.io"}))
		require.NoError(t, s.Delete(ctx, "users", "u1"))

		_, err := s.Get(ctx, "users", "u1")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.FindOne(ctx, "users", "email", "a@x.io")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, s.Delete(ctx, "users", "u1"), ErrNotFound)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(ctx, "", "u1")
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.ErrorIs(t, s.Put(ctx, "users", "", nil, nil), ErrInvalidArgument)
		_, err = s.FindOne(ctx, "users", "", "x")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
