package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"yochan/config"
	"yochan/logger"
)

// MinioBackend stores artifacts in a MinIO bucket.
type MinioBackend struct {
	client *minio.Client
	bucket string
}

// NewMinio creates a MinIO client and ensures the bucket exists.
func NewMinio(ctx context.Context, cfg config.MinioConfig) (*MinioBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		logger.Infof("storage: created bucket %q", cfg.Bucket)
	}

	return &MinioBackend{client: client, bucket: cfg.Bucket}, nil
}

func (b *MinioBackend) Name() string { return "minio" }

// Put streams r under key. size must be the exact byte count.
func (b *MinioBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (b *MinioBackend) Open(ctx context.Context, key string) (*Object, error) {
	info, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, notFoundFile()
		}
		return nil, fmt.Errorf("stat object %q: %w", key, err)
	}
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	return &Object{
		Body:        obj,
		Size:        info.Size,
		ContentType: info.ContentType,
		ModTime:     info.LastModified,
	}, nil
}

func (b *MinioBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMinioNotFound(err) {
			return notFoundFile()
		}
		return fmt.Errorf("stat object %q: %w", key, err)
	}
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

func (b *MinioBackend) DeleteNamespace(ctx context.Context, purpose string) error {
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

	ch := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	close(ch)

	var firstErr error
	for rErr := range b.client.RemoveObjects(ctx, b.bucket, ch, minio.RemoveObjectsOptions{}) {
		if firstErr == nil {
			firstErr = fmt.Errorf("remove object %q: %w", rErr.ObjectName, rErr.Err)
		}
	}
	return firstErr
}

func (b *MinioBackend) List(ctx context.Context) ([]Namespace, error) {
	keys, err := b.listKeys(ctx, "")
	if err != nil {
		return nil, err
	}
	return groupKeys(keys), nil
}

// listKeys collects every key under prefix. The listing is cancelled on
// return so an early error does not leave the producer goroutine blocked.
func (b *MinioBackend) listKeys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects in %q: %w", b.bucket, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (b *MinioBackend) Close() error { return nil }

func isMinioNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
