package filestore

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestStore_SavePhoto(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, thumbPath, err := store.SavePhoto(encodeTestImage(t, 640, 480))
	require.NoError(t, err)

	saved, err := imaging.Open(filepath.Join(store.Root(), path))
	require.NoError(t, err)
	assert.Equal(t, 640, saved.Bounds().Dx())

	thumb, err := imaging.Open(filepath.Join(store.Root(), thumbPath))
	require.NoError(t, err)
	assert.Equal(t, 320, thumb.Bounds().Dx())
	assert.Equal(t, 240, thumb.Bounds().Dy())
}

func TestStore_SavePhoto_Downscales(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, _, err := store.SavePhoto(encodeTestImage(t, 3200, 1800))
	require.NoError(t, err)

	saved, err := imaging.Open(filepath.Join(store.Root(), path))
	require.NoError(t, err)
	assert.Equal(t, 1600, saved.Bounds().Dx())
}

func TestStore_SavePhoto_RejectsGarbage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.SavePhoto(bytes.NewBufferString("not an image"))
	assert.Error(t, err)
}

func TestStore_Remove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, thumbPath, err := store.SavePhoto(encodeTestImage(t, 100, 100))
	require.NoError(t, err)

	store.Remove(path, thumbPath)
	_, err = os.Stat(filepath.Join(store.Root(), path))
	assert.True(t, os.IsNotExist(err))
}
