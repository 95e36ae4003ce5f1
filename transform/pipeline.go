package transform

import (
	"context"
	"fmt"

	"yochan/encoder"
	"yochan/failures"
	"yochan/logger"
)

// Result is the encoded output of a pipeline run.
type Result struct {
	Data   []byte
	Format string // sniffed from Data, never taken from the upload
	Width  int
	Height int
}

// Pipeline applies plans using the encoders available on this host.
type Pipeline struct {
	encoders *encoder.Registry
}

// NewPipeline returns a Pipeline backed by encoders.
func NewPipeline(encoders *encoder.Registry) *Pipeline {
	return &Pipeline{encoders: encoders}
}

type output struct {
	format   string
	quality  int
	explicit bool
}

// Apply decodes data, runs the plan's steps in order and encodes once.
func (p *Pipeline) Apply(ctx context.Context, data []byte, plan Plan) (Result, error) {
	img, err := encoder.Decode(data)
	if err != nil {
		return Result{}, failures.Decode(err)
	}

	pixels := img.Pixels
	resized := false
	target := output{format: img.Format}

	for _, s := range plan.Steps() {
		switch s := s.(type) {
		case Resize:
			pixels = encoder.Fit(pixels, s.MaxDim)
			resized = true
		case EncodeJPEG:
			target = output{format: encoder.FormatJPEG, quality: s.Quality, explicit: true}
		case EncodeWebP:
			target = output{format: encoder.FormatWebP, quality: s.Quality, explicit: true}
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	enc, ok := p.encoders.Get(target.format)
	switch {
	case ok:
	case target.explicit:
		return Result{}, failures.Encode(fmt.Errorf("no %s encoder available on this host", target.format))
	case resized:
		// Source format cannot be written here; fall back to lossless PNG.
		logger.Warnf("No %s encoder, writing resized image as png", target.format)
		target.format = encoder.FormatPNG
		enc, _ = p.encoders.Get(encoder.FormatPNG)
	default:
		logger.Debugf("No %s encoder, keeping the original upload", target.format)
		enc, ok = p.encoders.Get(encoder.FormatCopy)
		if !ok {
			return Result{}, failures.Encode(fmt.Errorf("no %s encoder available on this host", target.format))
		}
	}
	if enc == nil {
		return Result{}, failures.Encode(fmt.Errorf("no %s encoder available on this host", target.format))
	}

	out, err := enc(ctx, pixels, encoder.EncodeOptions{Quality: target.quality, Source: data})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, failures.Encode(err)
	}

	format, width, height, err := encoder.Inspect(out)
	if err != nil {
		return Result{}, failures.Encode(err)
	}

	logger.Debugf("Applied %s: %s %dx%d -> %s %dx%d (%d bytes)",
		plan, img.Format, img.Width(), img.Height(), format, width, height, len(out))

	return Result{Data: out, Format: format, Width: width, Height: height}, nil
}
