package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/shandysiswandi/tailor/internal/pkg/storage"
)

// objectEnvelope is what Object writes for each document.
type objectEnvelope struct {
	Index Index           `json:"index,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// Object stores each document as "{collection}/{id}.json" in a bucket.
//
// FindOne reads the whole collection, and Create checks existence before
// writing without a lock, so this driver suits small single-writer
// deployments.
type Object struct {
	bucket storage.Bucket
}

// NewObject wraps bucket. The bucket stays owned by the caller.
func NewObject(bucket storage.Bucket) *Object {
	return &Object{bucket: bucket}
}

func objectKey(collection, id string) string {
	return path.Join(collection, id+".json")
}

func (o *Object) read(ctx context.Context, key string) (objectEnvelope, error) {
	raw, err := o.bucket.Get(ctx, key)
	if errors.Is(err, storage.ErrNotExist) {
		return objectEnvelope{}, ErrNotFound
	}
	if err != nil {
		return objectEnvelope{}, err
	}

	var env objectEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return objectEnvelope{}, err
	}
	return env, nil
}

func (o *Object) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := checkKey(collection, id); err != nil {
		return nil, err
	}

	env, err := o.read(ctx, objectKey(collection, id))
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (o *Object) Create(ctx context.Context, collection, id string, data []byte, index Index) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	exists, err := o.bucket.Exists(ctx, objectKey(collection, id))
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}
	return o.Put(ctx, collection, id, data, index)
}

func (o *Object) Put(ctx context.Context, collection, id string, data []byte, index Index) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	raw, err := json.Marshal(objectEnvelope{Index: index, Data: data})
	if err != nil {
		return err
	}
	return o.bucket.Put(ctx, objectKey(collection, id), raw, "application/json")
}

func (o *Object) Delete(ctx context.Context, collection, id string) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	key := objectKey(collection, id)
	exists, err := o.bucket.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return o.bucket.Delete(ctx, key)
}

func (o *Object) listEnvelopes(ctx context.Context, collection string) ([]objectEnvelope, error) {
	keys, err := o.bucket.List(ctx, collection+"/")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, collection+"/")
		if id, ok := strings.CutSuffix(name, ".json"); ok && id != "" && !strings.Contains(id, "/") {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]objectEnvelope, 0, len(ids))
	for _, id := range ids {
		env, err := o.read(ctx, objectKey(collection, id))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

func (o *Object) List(ctx context.Context, collection string) ([][]byte, error) {
	envs, err := o.listEnvelopes(ctx, collection)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(envs))
	for i, env := range envs {
		out[i] = env.Data
	}
	return out, nil
}

func (o *Object) FindOne(ctx context.Context, collection, field, value string) ([]byte, error) {
	if collection == "" || field == "" {
		return nil, ErrInvalidArgument
	}

	envs, err := o.listEnvelopes(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, env := range envs {
		if v, ok := env.Index[field]; ok && v == value {
			return env.Data, nil
		}
	}
	return nil, ErrNotFound
}

// Close is a no-op; the bucket belongs to the caller.
func (o *Object) Close() error { return nil }
