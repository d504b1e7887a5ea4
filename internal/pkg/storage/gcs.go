package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// Client is used as-is when set.
	Client        *gcs.Client
	ClientOptions []option.ClientOption
}

// GCS implements Bucket using Google Cloud Storage.
type GCS struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	owned  bool
}

// NewGCS constructs a GCS bucket. Application default credentials are used
// unless ClientOptions say otherwise.
func NewGCS(ctx context.Context, bucket string, opts GCSOptions) (*GCS, error) {
	client, owned := opts.Client, false
	if client == nil {
		c, err := gcs.NewClient(ctx, opts.ClientOptions...)
		if err != nil {
			return nil, err
		}
		client, owned = c, true
	}

	return &GCS{client: client, bucket: client.Bucket(bucket), owned: owned}, nil
}

func (g *GCS) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		return errors.Join(err, w.Close())
	}
	return w.Close()
}

func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := g.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (g *GCS) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (g *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	it := g.bucket.Objects(ctx, &gcs.Query{Prefix: prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, attrs.Name)
	}
}

// Close closes the client when NewGCS created it.
func (g *GCS) Close() error {
	if !g.owned {
		return nil
	}
	return g.client.Close()
}
