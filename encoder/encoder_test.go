package encoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	return img
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func TestDefaultRegistryHasNativeEncoders(t *testing.T) {
	r := DefaultRegistry()
	for _, f := range []string{FormatJPEG, FormatPNG, FormatGIF, FormatBMP, FormatTIFF, FormatCopy} {
		_, ok := r.Get(f)
		assert.True(t, ok, "encoder %s should be registered", f)
	}
}

func TestRegisterSkipsMissingCommand(t *testing.T) {
	r := NewRegistry()
	r.Register("fake", "definitely-not-a-real-binary-yochan", EncodePNG)
	_, ok := r.Get("fake")
	assert.False(t, ok)
	assert.Empty(t, r.Formats())
}

func TestNativeEncodersRoundTrip(t *testing.T) {
	ctx := context.Background()
	img := testImage(30, 20)

	tests := []struct {
		format string
		fn     EncodeFunc
	}{
		{FormatJPEG, EncodeJPEG},
		{FormatPNG, EncodePNG},
		{FormatGIF, EncodeGIF},
		{FormatBMP, EncodeBMP},
		{FormatTIFF, EncodeTIFF},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := tt.fn(ctx, img, EncodeOptions{Quality: 70})
			require.NoError(t, err)

			format, w, h, err := Inspect(out)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, 30, w)
			assert.Equal(t, 20, h)
		})
	}
}

func TestJPEGQualityAffectsSize(t *testing.T) {
	ctx := context.Background()
	img := testImage(200, 200)

	low, err := EncodeJPEG(ctx, img, EncodeOptions{Quality: 5})
	require.NoError(t, err)
	high, err := EncodeJPEG(ctx, img, EncodeOptions{Quality: 100})
	require.NoError(t, err)

	assert.Less(t, len(low), len(high))
}

func TestEncodeCopyReturnsSource(t *testing.T) {
	src := pngData(t, 4, 4)
	out, err := EncodeCopy(context.Background(), nil, EncodeOptions{Source: src})
	require.NoError(t, err)
	assert.Equal(t, src, out)

	_, err = EncodeCopy(context.Background(), nil, EncodeOptions{})
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	img, err := Decode(pngData(t, 12, 8))
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, img.Format)
	assert.Equal(t, 12, img.Width())
	assert.Equal(t, 8, img.Height())

	_, err = Decode([]byte("nope"))
	assert.Error(t, err)
}

func jpegData(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

// withOrientation inserts a big-endian APP1 Exif segment carrying only the
// orientation tag right after the JPEG SOI marker.
func withOrientation(jpg []byte, orientation uint16) []byte {
	tiff := []byte{
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, // header, IFD0 at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, // orientation, SHORT, count 1
		byte(orientation >> 8), byte(orientation), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := []byte{0xFF, 0xE1, 0x00, 0x00}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))

	out := append([]byte{}, jpg[:2]...)
	out = append(out, seg...)
	out = append(out, payload...)
	return append(out, jpg[2:]...)
}

// pngClaiming returns a PNG whose header declares w x h pixels.
func pngClaiming(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngData(t, 1, 1)
	binary.BigEndian.PutUint32(data[16:], w)
	binary.BigEndian.PutUint32(data[20:], h)
	binary.BigEndian.PutUint32(data[29:], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecodeAppliesEXIFOrientation(t *testing.T) {
	tests := []struct {
		orientation  uint16
		wantW, wantH int
	}{
		{1, 40, 20},
		{3, 40, 20},
		{6, 20, 40},
		{8, 20, 40},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("orientation %d", tt.orientation), func(t *testing.T) {
			data := withOrientation(jpegData(t, 40, 20), tt.orientation)

			// The header still describes the stored, unrotated pixels.
			_, w, h, err := Inspect(data)
			require.NoError(t, err)
			assert.Equal(t, 40, w)
			assert.Equal(t, 20, h)

			img, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, FormatJPEG, img.Format)
			assert.Equal(t, tt.wantW, img.Width())
			assert.Equal(t, tt.wantH, img.Height())
		})
	}
}

func TestDecodeRejectsTooManyPixels(t *testing.T) {
	data := pngClaiming(t, 20000, 10000)

	format, w, h, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, format)
	assert.Equal(t, 20000, w)
	assert.Equal(t, 10000, h)

	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrTooManyPixels)

	_, err = Decode(pngClaiming(t, 10001, 10000))
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"landscape", 100, 50, 40, 40, 20},
		{"portrait", 50, 100, 40, 20, 40},
		{"already small", 30, 20, 40, 30, 20},
		{"exact", 40, 40, 40, 40, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Fit(testImage(tt.w, tt.h), tt.max).Bounds()
			assert.Equal(t, tt.wantW, b.Dx())
			assert.Equal(t, tt.wantH, b.Dy())
		})
	}
}

func TestSniffAndContentType(t *testing.T) {
	format, err := Sniff(pngData(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, format)

	_, err = Sniff([]byte{0x00, 0x01})
	assert.Error(t, err)

	assert.Equal(t, "image/jpeg", ContentType("jpg"))
	assert.Equal(t, "image/webp", ContentType(FormatWebP))
	assert.Equal(t, "application/octet-stream", ContentType("exe"))
}

func TestEncodeWebP(t *testing.T) {
	if _, err := exec.LookPath("cwebp"); err != nil {
		t.Skip("cwebp not installed")
	}

	out, err := EncodeWebP(context.Background(), testImage(40, 30), EncodeOptions{Quality: 60})
	require.NoError(t, err)

	format, w, h, err := Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, FormatWebP, format)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
}
