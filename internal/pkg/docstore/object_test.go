package docstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/shandysiswandi/tailor/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMockBucket() *mockBucket { return &mockBucket{objects: map[string][]byte{}} }

func (b *mockBucket) Put(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = slices.Clone(data)
	return nil
}

func (b *mockBucket) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrNotExist
	}
	return slices.Clone(data), nil
}

func (b *mockBucket) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok, nil
}

func (b *mockBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *mockBucket) List(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []string
	for _, k := range slices.Sorted(maps.Keys(b.objects)) {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (b *mockBucket) Close() error { return nil }

func TestObject(t *testing.T) {
	runStoreSuite(t, func(*testing.T) Store { return NewObject(newMockBucket()) })
}

func TestObject_Layout(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bucket := newMockBucket()
	s := NewObject(bucket)

	// Act
	require.NoError(t, s.Put(ctx, "users", "u1", []byte(`{"id":"u1"}`), Index{"email": "a@x.io"}))
	require.NoError(t, bucket.Put(ctx, "users/readme.txt", []byte("ignored"), "text/plain"))

	// Assert
	raw, ok := bucket.objects["users/u1.json"]
	require.True(t, ok)
	assert.JSONEq(t, `{"index":{"email":"a@x.io"},"data":{"id":"u1"}}`, string(raw))

	docs, err := s.List(ctx, "users")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
