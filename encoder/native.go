package encoder

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when a JPEG is re-encoded without an explicit quality.
const DefaultJPEGQuality = 80

// EncodeJPEG encodes in-process at opts.Quality.
func EncodeJPEG(ctx context.Context, img image.Image, opts EncodeOptions) ([]byte, error) {
	q := opts.Quality
	if q <= 0 {
		q = DefaultJPEGQuality
	}
	return encodeImaging(ctx, img, imaging.JPEG, imaging.JPEGQuality(q))
}

// EncodePNG encodes losslessly; quality is ignored.
func EncodePNG(ctx context.Context, img image.Image, _ EncodeOptions) ([]byte, error) {
	return encodeImaging(ctx, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
}

func EncodeGIF(ctx context.Context, img image.Image, _ EncodeOptions) ([]byte, error) {
	return encodeImaging(ctx, img, imaging.GIF)
}

func EncodeBMP(ctx context.Context, img image.Image, _ EncodeOptions) ([]byte, error) {
	return encodeImaging(ctx, img, imaging.BMP)
}

func EncodeTIFF(ctx context.Context, img image.Image, _ EncodeOptions) ([]byte, error) {
	return encodeImaging(ctx, img, imaging.TIFF)
}

func encodeImaging(ctx context.Context, img image.Image, format imaging.Format, opts ...imaging.EncodeOption) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
