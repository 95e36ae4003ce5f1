// Package storage places artifacts under {purpose}/{id}.{format} keys and
// persists them in one of several backends. The key layout is the whole
// index: listing and existence checks always go to the backend.
package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"yochan/config"
	"yochan/failures"
)

const (
	msgFileNotFound      = "File not found."
	msgDirectoryNotFound = "Directory not found."
)

// Object is an opened artifact. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Namespace is one purpose and the file names stored under it.
type Namespace struct {
	Purpose string
	Files   []string
}

// Backend persists artifacts. Missing keys and namespaces are reported as
// failures.ErrNotFound.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	DeleteNamespace(ctx context.Context, purpose string) error
	List(ctx context.Context) ([]Namespace, error)
	Close() error
}

// New builds the backend selected by cfg.Storage.Backend.
func New(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendLocal, "":
		return NewLocal(cfg.UploadsDir)
	case config.BackendS3:
		return NewS3(ctx, cfg.Storage.S3)
	case config.BackendGCS:
		return NewGCS(ctx, cfg.Storage.GCS)
	case config.BackendSFTP:
		return NewSFTP(ctx, cfg.Storage.SFTP)
	case config.BackendMinio:
		return NewMinio(ctx, cfg.Storage.Minio)
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Storage.Backend)
	}
}

// validNamespace rejects names that could address anything but one
// directory directly under the root.
func validNamespace(purpose string) bool {
	return purpose != "" && purpose != "." && purpose != ".." && !strings.ContainsAny(purpose, `/\`)
}

// groupKeys folds flat object keys into namespaces. Keys without a
// namespace segment or nested deeper than one level are ignored.
func groupKeys(keys []string) []Namespace {
	byPurpose := map[string][]string{}
	for _, key := range keys {
		purpose, name, ok := strings.Cut(key, "/")
		if !ok || purpose == "" || name == "" || strings.Contains(name, "/") {
			continue
		}
		byPurpose[purpose] = append(byPurpose[purpose], name)
	}

	out := make([]Namespace, 0, len(byPurpose))
	for purpose, files := range byPurpose {
		sort.Strings(files)
		out = append(out, Namespace{Purpose: purpose, Files: files})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Purpose < out[j].Purpose })
	return out
}

func notFoundFile() error      { return failures.NotFound(msgFileNotFound) }
func notFoundDirectory() error { return failures.NotFound(msgDirectoryNotFound) }
