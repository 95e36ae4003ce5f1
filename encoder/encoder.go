package encoder

import (
	"context"
	"image"
	"os/exec"
	"sort"
	"sync"

	"yochan/logger"
)

// EncodeFunc is the function signature for any encoder
type EncodeFunc func(ctx context.Context, img image.Image, opts EncodeOptions) ([]byte, error)

type EncodeOptions struct {
	Quality int    // 1–100, 0 means encoder default
	Speed   int    // encoder speed/efficiency tradeoff
	Source  []byte // original upload, used by the copy encoder
}

// Registry maps format name → encoder function
type Registry struct {
	mu       sync.RWMutex
	encoders map[string]EncodeFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{encoders: map[string]EncodeFunc{}}
}

// Register adds encoder if the underlying command exists, logs status
func (r *Registry) Register(format string, cmdName string, fn EncodeFunc) {
	if _, err := exec.LookPath(cmdName); err != nil {
		logger.Warnf("encoder [%s] skipped: command '%s' not found in PATH", format, cmdName)
		return
	}
	r.set(format, fn)
	logger.Debugf("encoder [%s] registered (command: %s)", format, cmdName)
}

// RegisterNative adds an in-process encoder.
func (r *Registry) RegisterNative(format string, fn EncodeFunc) {
	r.set(format, fn)
	logger.Debugf("encoder [%s] registered (native)", format)
}

func (r *Registry) set(format string, fn EncodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encoders[format] = fn
}

// Get looks up an encoder by format
func (r *Registry) Get(format string) (EncodeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.encoders[format]
	return fn, ok
}

// Formats lists registered format names in sorted order.
func (r *Registry) Formats() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.encoders))
	for f := range r.encoders {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry builds a registry with every encoder available on this host.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterNative(FormatJPEG, EncodeJPEG)
	r.RegisterNative(FormatPNG, EncodePNG)
	r.RegisterNative(FormatGIF, EncodeGIF)
	r.RegisterNative(FormatBMP, EncodeBMP)
	r.RegisterNative(FormatTIFF, EncodeTIFF)
	r.Register(FormatWebP, "cwebp", EncodeWebP)
	RegisterCopy(r)
	return r
}
