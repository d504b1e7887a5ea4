package docstore

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type memDoc struct {
	data  []byte
	index Index
}

// Memory keeps documents in process memory. Contents are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]map[string]memDoc
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{cols: map[string]map[string]memDoc{}}
}

func (m *Memory) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := checkKey(collection, id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.cols[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(doc.data), nil
}

func (m *Memory) Create(ctx context.Context, collection, id string, data []byte, index Index) error {
	return m.write(ctx, collection, id, data, index, true)
}

func (m *Memory) Put(ctx context.Context, collection, id string, data []byte, index Index) error {
	return m.write(ctx, collection, id, data, index, false)
}

func (m *Memory) write(ctx context.Context, collection, id string, data []byte, index Index, mustCreate bool) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.cols[collection]
	if !ok {
		col = map[string]memDoc{}
		m.cols[collection] = col
	}
	if _, exists := col[id]; exists && mustCreate {
		return ErrConflict
	}

	col[id] = memDoc{data: slices.Clone(data), index: maps.Clone(index)}
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cols[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.cols[collection], id)
	return nil
}

func (m *Memory) List(ctx context.Context, collection string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	col := m.cols[collection]
	out := make([][]byte, 0, len(col))
	for _, id := range slices.Sorted(maps.Keys(col)) {
		out = append(out, slices.Clone(col[id].data))
	}
	return out, nil
}

func (m *Memory) FindOne(ctx context.Context, collection, field, value string) ([]byte, error) {
	if collection == "" || field == "" {
		return nil, ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	col := m.cols[collection]
	for _, id := range slices.Sorted(maps.Keys(col)) {
		if v, ok := col[id].index[field]; ok && v == value {
			return slices.Clone(col[id].data), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Close() error { return nil }
