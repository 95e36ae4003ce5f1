package encoder

import (
	"bytes"
	"fmt"
	"image"
)

// Format names. They double as file extensions.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatWebP = "webp"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatCopy = "copy"
)

// Sniff reports the format of an encoded buffer from its content.
func Sniff(data []byte) (string, error) {
	format, _, _, err := Inspect(data)
	return format, err
}

// Inspect reports format and dimensions of an encoded buffer without
// decoding the pixels.
func Inspect(data []byte) (format string, width, height int, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("unrecognised image data: %w", err)
	}
	return normalizeFormat(format), cfg.Width, cfg.Height, nil
}

// ContentType returns the MIME type for a format name or file extension.
func ContentType(format string) string {
	switch normalizeFormat(format) {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func normalizeFormat(format string) string {
	switch format {
	case "jpg", "jpeg":
		return FormatJPEG
	case "tif", "tiff":
		return FormatTIFF
	default:
		return format
	}
}
