package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	data, err := EncodePNG(img)
	require.NoError(t, err)
	return data
}

func TestInspect(t *testing.T) {
	p := NewProcessor(85, 1<<20, []string{"image/png", "image/jpeg"})

	info, err := p.Inspect(testPNG(t, 40, 20))
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.MimeType)
	assert.Equal(t, ".png", info.Extension)
	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 20, info.Height)

	_, err = p.Inspect([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidType)

	small := NewProcessor(85, 10, nil)
	_, err = small.Inspect(testPNG(t, 40, 20))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestThumbnail_KeepsAspectRatio(t *testing.T) {
	p := NewProcessor(80, 0, nil)

	thumb, err := p.Thumbnail(testPNG(t, 600, 300))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestThumbnail_DoesNotUpscale(t *testing.T) {
	p := NewProcessor(80, 0, nil)

	thumb, err := p.Thumbnail(testPNG(t, 50, 30))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestThumbnailPath(t *testing.T) {
	assert.Equal(t, "properties/abc_thumb.jpg", ThumbnailPath("properties/abc.png"))
	assert.True(t, IsThumbnail(ThumbnailPath("blogs/x.webp")))
	assert.False(t, IsThumbnail("blogs/x.webp"))
}
