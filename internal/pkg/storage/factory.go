package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverS3    = "s3"
	DriverGCS   = "gcs"
	DriverMinIO = "minio"
)

var (
	// ErrUnknownDriver indicates an unsupported storage driver.
	ErrUnknownDriver = errors.New("storage: unknown driver")
	// ErrBucketRequired is returned when no bucket name is configured.
	ErrBucketRequired = errors.New("storage: bucket is required")
)

// FactoryOptions groups configuration for storage drivers.
type FactoryOptions struct {
	Bucket string

	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
}

// NewFromDriver constructs a Bucket by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Bucket, error) {
	if opts.Bucket == "" {
		return nil, ErrBucketRequired
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverS3:
		return NewS3(ctx, opts.Bucket, opts.S3)
	case DriverGCS:
		return NewGCS(ctx, opts.Bucket, opts.GCS)
	case DriverMinIO:
		return NewMinIO(opts.Bucket, opts.MinIO)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
