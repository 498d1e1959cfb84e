// Package storage fetches and persists route files in an S3-compatible
// object store.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fleetsim-io/fleetsim/internal/route"
	"github.com/fleetsim-io/fleetsim/pkg/log"
	"github.com/fleetsim-io/fleetsim/pkg/options"
)

// RouteStore reads and writes route files by bucket and key.
type RouteStore interface {
	Fetch(ctx context.Context, bucket, key string) (*route.Route, error)
	Put(ctx context.Context, bucket, key string, r *route.Route) error
}

type minioStore struct {
	client *minio.Client
}

// NewMinIOStore creates a RouteStore backed by an S3-compatible endpoint.
func NewMinIOStore(opts *options.S3Options) (RouteStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &minioStore{client: client}, nil
}

func (s *minioStore) Fetch(ctx context.Context, bucket, key string) (*route.Route, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get route object %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read route object %s/%s: %w", bucket, key, err)
	}

	return route.Decode(raw)
}

func (s *minioStore) Put(ctx context.Context, bucket, key string, r *route.Route) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		log.Info("Bucket does not exist, creating", "bucket", bucket)
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	raw, err := r.Encode()
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, bucket, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put route object %s/%s: %w", bucket, key, err)
	}
	return nil
}
