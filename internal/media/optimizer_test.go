package media

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without touching its
// pixel data, so the header claims a size the body does not hold.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	require.Equal(t, "IHDR", string(data[12:16]))
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestOptimize_ShrinksToFitInside(t *testing.T) {
	o := NewOptimizer(100, 85, 0)
	out, err := o.Optimize(pngBytes(t, 400, 200))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestOptimize_DoesNotEnlarge(t *testing.T) {
	o := NewOptimizer(100, 85, 0)
	out, err := o.Optimize(pngBytes(t, 30, 60))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestOptimize_RejectsNonImage(t *testing.T) {
	_, err := NewOptimizer(0, 0, 0).Optimize([]byte("plain text"))
	assert.Error(t, err)
}

func TestOptimize_RejectsDeclaredSizeOverBudget(t *testing.T) {
	huge := withDeclaredSize(t, pngBytes(t, 4, 4), 100000, 100000)

	_, err := NewOptimizer(0, 0, 0).Optimize(huge)
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestOptimize_PixelBudgetIsConfigurable(t *testing.T) {
	data := pngBytes(t, 50, 50)

	_, err := NewOptimizer(100, 85, 2499).Optimize(data)
	assert.ErrorIs(t, err, ErrTooManyPixels)

	_, err = NewOptimizer(100, 85, 2500).Optimize(data)
	assert.NoError(t, err)
}

func TestFitInside(t *testing.T) {
	w, h := fitInside(2160, 1080, 1080)
	assert.Equal(t, 1080, w)
	assert.Equal(t, 540, h)

	w, h = fitInside(500, 3000, 1080)
	assert.Equal(t, 180, w)
	assert.Equal(t, 1080, h)
}
