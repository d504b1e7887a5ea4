package docstore

import (
	"context"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"
)

// Redis stores each document as a string key and keeps, per collection, a
// set of IDs plus one lookup key per indexed field value:
//
//	{prefix}{collection}:doc:{id}              document JSON
//	{prefix}{collection}:ids                   set of IDs
//	{prefix}{collection}:lookup:{id}           hash of the document's index
//	{prefix}{collection}:idx:{field}:{value}   set of IDs holding value
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps client. prefix namespaces every key, e.g. "tailor:".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) docKey(col, id string) string    { return r.prefix + col + ":doc:" + id }
func (r *Redis) idsKey(col string) string        { return r.prefix + col + ":ids" }
func (r *Redis) lookupKey(col, id string) string { return r.prefix + col + ":lookup:" + id }
func (r *Redis) idxKey(col, field, value string) string {
	return r.prefix + col + ":idx:" + field + ":" + value
}

func (r *Redis) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := checkKey(collection, id); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, r.docKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *Redis) Create(ctx context.Context, collection, id string, data []byte, index Index) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, r.docKey(collection, id), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return r.write(ctx, collection, id, data, index)
}

func (r *Redis) Put(ctx context.Context, collection, id string, data []byte, index Index) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}
	return r.write(ctx, collection, id, data, index)
}

// write replaces the document and swaps its old lookup entries for new ones
// in one MULTI/EXEC.
func (r *Redis) write(ctx context.Context, collection, id string, data []byte, index Index) error {
	old, err := r.client.HGetAll(ctx, r.lookupKey(collection, id)).Result()
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for field, value := range old {
			pipe.SRem(ctx, r.idxKey(collection, field, value), id)
		}
		pipe.Del(ctx, r.lookupKey(collection, id))

		pipe.Set(ctx, r.docKey(collection, id), data, 0)
		pipe.SAdd(ctx, r.idsKey(collection), id)
		for field, value := range index {
			pipe.SAdd(ctx, r.idxKey(collection, field, value), id)
			pipe.HSet(ctx, r.lookupKey(collection, id), field, value)
		}
		return nil
	})
	return err
}

func (r *Redis) Delete(ctx context.Context, collection, id string) error {
	if err := checkKey(collection, id); err != nil {
		return err
	}

	old, err := r.client.HGetAll(ctx, r.lookupKey(collection, id)).Result()
	if err != nil {
		return err
	}

	var removed *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for field, value := range old {
			pipe.SRem(ctx, r.idxKey(collection, field, value), id)
		}
		pipe.Del(ctx, r.lookupKey(collection, id))
		pipe.SRem(ctx, r.idsKey(collection), id)
		removed = pipe.Del(ctx, r.docKey(collection, id))
		return nil
	})
	if err != nil {
		return err
	}
	if removed.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) List(ctx context.Context, collection string) ([][]byte, error) {
	ids, err := r.client.SMembers(ctx, r.idsKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return r.fetch(ctx, collection, ids)
}

func (r *Redis) FindOne(ctx context.Context, collection, field, value string) ([]byte, error) {
	if collection == "" || field == "" {
		return nil, ErrInvalidArgument
	}

	ids, err := r.client.SMembers(ctx, r.idxKey(collection, field, value)).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)

	docs, err := r.fetch(ctx, collection, ids)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

// fetch loads ids in order, skipping any removed since the ID set was read.
func (r *Redis) fetch(ctx context.Context, collection string, ids []string) ([][]byte, error) {
	out := make([][]byte, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(collection, id)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, []byte(s))
		}
	}
	return out, nil
}

// Close is a no-op; the client belongs to the caller.
func (r *Redis) Close() error { return nil }
