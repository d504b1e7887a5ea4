package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	runStoreSuite(t, func(*testing.T) Store { return NewMemory() })
}

func TestMemory_CopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	data := []byte(`{"id":"u1"}`)
	require.NoError(t, s.Put(ctx, "users", "u1", data, nil))
	data[2] = 'X'

	got, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1"}`, string(got))
}
