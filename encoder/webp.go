package encoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultWebPQuality is used when a WebP is re-encoded without an explicit quality.
const DefaultWebPQuality = 80

// EncodeWebP encodes through the cwebp binary. The intermediate image is
// handed over as a lossless PNG so only one lossy step happens.
func EncodeWebP(ctx context.Context, img image.Image, o EncodeOptions) ([]byte, error) {
	q := o.Quality
	if q <= 0 {
		q = DefaultWebPQuality
	}
	speed := o.Speed
	if speed <= 0 {
		speed = 4
	}

	dir, err := os.MkdirTemp("", "yochan-webp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.webp")

	if err := imaging.Save(img, in, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return nil, fmt.Errorf("write intermediate png: %w", err)
	}

	args := []string{
		"-quiet",
		"-q", fmt.Sprint(q),
		"-m", fmt.Sprint(speed),
		in, "-o", out,
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "cwebp", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("cwebp: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	return os.ReadFile(out)
}
