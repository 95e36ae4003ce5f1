package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"yochan/config"
	"yochan/logger"
)

// GCSBackend stores artifacts in a Google Cloud Storage bucket.
type GCSBackend struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
}

// NewGCS creates a client using the service account key file from cfg, or
// application default credentials when none is set.
func NewGCS(ctx context.Context, cfg config.GCSConfig) (*GCSBackend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs backend: bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read gcs credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSBackend{client: client, bucket: client.Bucket(cfg.Bucket), name: cfg.Bucket}, nil
}

func (b *GCSBackend) Name() string { return "gcs" }

func (b *GCSBackend) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	wc := b.bucket.Object(key).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Debugf("Uploaded object '%s' to bucket '%s'", key, b.name)
	return nil
}

func (b *GCSBackend) Open(ctx context.Context, key string) (*Object, error) {
	r, err := b.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, notFoundFile()
		}
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}
	return &Object{
		Body:        r,
		Size:        r.Attrs.Size,
		ContentType: r.Attrs.ContentType,
		ModTime:     r.Attrs.LastModified,
	}, nil
}

func (b *GCSBackend) Delete(ctx context.Context, key string) error {
	if err := b.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return notFoundFile()
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (b *GCSBackend) DeleteNamespace(ctx context.Context, purpose string) error {
	if !validNamespace(purpose) {
		return notFoundDirectory()
	}
	keys, err := b.listKeys(ctx, purpose+"/")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return notFoundDirectory()
	}
	for _, key := range keys {
		err := b.bucket.Object(key).Delete(ctx)
		if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("delete object %s: %w", key, err)
		}
	}
	return nil
}

func (b *GCSBackend) List(ctx context.Context) ([]Namespace, error) {
	keys, err := b.listKeys(ctx, "")
	if err != nil {
		return nil, err
	}
	return groupKeys(keys), nil
}

func (b *GCSBackend) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var query *gcs.Query
	if prefix != "" {
		query = &gcs.Query{Prefix: prefix}
	}

	var keys []string
	it := b.bucket.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", b.name, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (b *GCSBackend) Close() error { return b.client.Close() }
