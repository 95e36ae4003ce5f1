package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"yochan/encoder"
	"yochan/logger"
)

// LocalBackend stores artifacts on the local file system under root, where
// they are served directly by the HTTP server.
type LocalBackend struct {
	root string
}

// NewLocal creates root if needed and returns a backend writing below it.
func NewLocal(root string) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir %s: %w", root, err)
	}
	return &LocalBackend{root: root}, nil
}

func (b *LocalBackend) Name() string { return "local" }

// Root returns the uploads directory.
func (b *LocalBackend) Root() string { return b.root }

func (b *LocalBackend) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}

// Put writes r to key, creating the namespace directory on first use.
// The file appears atomically.
func (b *LocalBackend) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	fullPath := b.path(key)
	fullDir := filepath.Dir(fullPath)

	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmp, err := os.CreateTemp(fullDir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file in %s: %w", fullDir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", fullPath, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to move file into place %s: %w", fullPath, err)
	}

	logger.Debugf("Saved '%s' to '%s'", key, fullPath)
	return nil
}

func (b *LocalBackend) Open(_ context.Context, key string) (*Object, error) {
	f, err := os.Open(b.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFoundFile()
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, notFoundFile()
	}
	return &Object{
		Body:        f,
		Size:        info.Size(),
		ContentType: encoder.ContentType(strings.TrimPrefix(path.Ext(key), ".")),
		ModTime:     info.ModTime(),
	}, nil
}

func (b *LocalBackend) Delete(_ context.Context, key string) error {
	fullPath := b.path(key)
	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFoundFile()
		}
		return err
	}
	if info.IsDir() {
		return notFoundFile()
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFoundFile()
		}
		return fmt.Errorf("failed to delete %s: %w", fullPath, err)
	}
	logger.Debugf("Deleted '%s'", fullPath)
	return nil
}

func (b *LocalBackend) DeleteNamespace(_ context.Context, purpose string) error {
	if !validNamespace(purpose) {
		return notFoundDirectory()
	}
	dir := b.path(purpose)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return notFoundDirectory()
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete directory %s: %w", dir, err)
	}
	logger.Debugf("Deleted directory '%s'", dir)
	return nil
}

// List walks the uploads root: each directory is a namespace and each
// regular file inside it an artifact. Hidden entries are skipped.
func (b *LocalBackend) List(_ context.Context) ([]Namespace, error) {
	dirs, err := os.ReadDir(b.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Namespace{}, nil
		}
		return nil, err
	}

	out := make([]Namespace, 0, len(dirs))
	for _, d := range dirs {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(b.root, d.Name()))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // removed while listing
			}
			return nil, err
		}
		files := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
				files = append(files, e.Name())
			}
		}
		out = append(out, Namespace{Purpose: d.Name(), Files: files})
	}
	return out, nil
}

func (b *LocalBackend) Close() error { return nil }
