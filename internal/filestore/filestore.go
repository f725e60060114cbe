package filestore

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	maxPhotoWidth   = 1600
	thumbnailWidth  = 320
	thumbnailHeight = 240
)

// Store saves car photos on disk: a bounded-size JPEG plus a thumbnail.
type Store struct {
	root string
}

// NewStore creates the media directories if needed.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{"photos", "thumbs"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create media directory: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// SavePhoto decodes an uploaded image, downscales it when wider than the
// photo bound, writes the JPEG and a thumbnail, and returns both paths
// relative to the media root.
func (s *Store) SavePhoto(r io.Reader) (path, thumbPath string, err error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", "", fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > maxPhotoWidth {
		img = imaging.Resize(img, maxPhotoWidth, 0, imaging.Lanczos)
	}
	thumb := imaging.Fill(img, thumbnailWidth, thumbnailHeight, imaging.Center, imaging.Lanczos)

	name := uuid.NewString() + ".jpg"
	path = filepath.Join("photos", name)
	thumbPath = filepath.Join("thumbs", name)

	if err := s.writeJPEG(path, img); err != nil {
		return "", "", err
	}
	if err := s.writeJPEG(thumbPath, thumb); err != nil {
		_ = os.Remove(filepath.Join(s.root, path))
		return "", "", err
	}
	return path, thumbPath, nil
}

// Remove deletes stored photo files. Missing files are not an error.
func (s *Store) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = os.Remove(filepath.Join(s.root, p))
	}
}

// Root returns the media root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) writeJPEG(relPath string, img image.Image) error {
	full := filepath.Join(s.root, relPath)
	if err := imaging.Save(img, full, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("save image %s: %w", relPath, err)
	}
	return nil
}
