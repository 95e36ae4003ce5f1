package encoder

import (
	"context"
	"errors"
	"image"

	"yochan/logger"
)

// EncodeCopy returns the original upload without any encoding.
// Used when the source format has no encoder on this host and the caller
// asked for no re-encode, so the upload is kept exactly as sent.
func EncodeCopy(ctx context.Context, _ image.Image, opts EncodeOptions) ([]byte, error) {
	if len(opts.Source) == 0 {
		return nil, errors.New("copy encoder needs the source bytes")
	}
	out := make([]byte, len(opts.Source))
	copy(out, opts.Source)
	logger.Debugf("copied original upload (%d bytes)", len(out))
	return out, nil
}

// RegisterCopy registers the copy encoder (no command dependency)
func RegisterCopy(r *Registry) {
	r.set(FormatCopy, EncodeCopy)
	logger.Debugf("encoder [copy] registered (no command required)")
}
