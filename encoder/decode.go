package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register the WebP decoder with image.Decode
)

// MaxPixels caps width*height of accepted uploads.
const MaxPixels = 100_000_000

var ErrTooManyPixels = errors.New("image dimensions exceed the supported maximum")

// Image is a decoded, upright image plus the format it was decoded from.
type Image struct {
	Pixels image.Image
	Format string
}

// Width of the decoded pixels.
func (i *Image) Width() int { return i.Pixels.Bounds().Dx() }

// Height of the decoded pixels.
func (i *Image) Height() int { return i.Pixels.Bounds().Dy() }

// Decode reads data and applies the EXIF orientation tag so the returned
// pixels are upright.
func Decode(data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return &Image{Pixels: img, Format: normalizeFormat(format)}, nil
}

// Fit scales img down so neither side exceeds maxDim, keeping the aspect
// ratio. Images already inside the box are returned unchanged.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}
