package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/config"
)

func newTestCoverStorage(t *testing.T) *CoverStorage {
	t.Helper()
	dir := t.TempDir()
	opts := config.GetDefaultOptions()
	opts.UploadDir = filepath.Join(dir, "uploads")
	opts.ThumbDir = filepath.Join(dir, "thumbs")
	return NewCoverStorage(opts)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveCreatesThumbnail(t *testing.T) {
	c := newTestCoverStorage(t)

	// The content wins over the claimed jpeg extension.
	name, err := c.Save("cover.JPEG", bytes.NewReader(pngBytes(t, 600, 300)))
	if err != nil {
		t.Fatalf("Failed to save cover: %v", err)
	}
	if !strings.HasSuffix(name, ".png") || len(name) != 32+len(".png") {
		t.Errorf("Unexpected generated name %q", name)
	}

	if _, err := os.Stat(c.OriginalPath(name)); err != nil {
		t.Errorf("Original missing: %v", err)
	}
	thumb, err := imaging.Open(c.ThumbPath(name))
	if err != nil {
		t.Fatalf("Failed to open thumbnail: %v", err)
	}
	if b := thumb.Bounds(); b.Dx() != 256 || b.Dy() != 128 {
		t.Errorf("Unexpected thumbnail size %dx%d", b.Dx(), b.Dy())
	}
}

func TestSaveDoesNotUpscale(t *testing.T) {
	c := newTestCoverStorage(t)
	name, err := c.Save("small.png", bytes.NewReader(pngBytes(t, 40, 80)))
	if err != nil {
		t.Fatalf("Failed to save cover: %v", err)
	}
	thumb, err := imaging.Open(c.ThumbPath(name))
	if err != nil {
		t.Fatalf("Failed to open thumbnail: %v", err)
	}
	if b := thumb.Bounds(); b.Dx() != 40 || b.Dy() != 80 {
		t.Errorf("Small covers should keep their size, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestSaveWebp(t *testing.T) {
	c := newTestCoverStorage(t)

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 300, 600))
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		t.Fatalf("Failed to encode webp: %v", err)
	}
	name, err := c.Save("cover.webp", &buf)
	if err != nil {
		t.Fatalf("Failed to save webp cover: %v", err)
	}
	data, err := os.ReadFile(c.ThumbPath(name))
	if err != nil {
		t.Fatalf("Failed to read thumbnail: %v", err)
	}
	thumb, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Thumbnail is not webp: %v", err)
	}
	if b := thumb.Bounds(); b.Dx() != 128 || b.Dy() != 256 {
		t.Errorf("Unexpected thumbnail size %dx%d", b.Dx(), b.Dy())
	}
}

func TestSaveRejectsDisguisedFile(t *testing.T) {
	c := newTestCoverStorage(t)

	_, err := c.Save("cover.png", strings.NewReader("definitely not an image"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("Expected ErrUnsupportedImage, got %v", err)
	}

	// A real image whose format is not allowed.
	var gif bytes.Buffer
	if err := imaging.Encode(&gif, image.NewRGBA(image.Rect(0, 0, 4, 4)), imaging.GIF); err != nil {
		t.Fatalf("Failed to encode gif: %v", err)
	}
	_, err = c.Save("cover.jpg", &gif)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("Expected a gif to be rejected, got %v", err)
	}

	entries, _ := os.ReadDir(c.UploadDir)
	if len(entries) != 0 {
		t.Errorf("Rejected uploads left %d files", len(entries))
	}
}

func TestSaveRejectsClaimedExtension(t *testing.T) {
	c := newTestCoverStorage(t)
	for _, name := range []string{"cover.exe", "cover", "cover.gif"} {
		if _, err := c.Save(name, bytes.NewReader(pngBytes(t, 4, 4))); !errors.Is(err, ErrUnsupportedImage) {
			t.Errorf("%s: expected ErrUnsupportedImage, got %v", name, err)
		}
	}
}

func TestDeleteIsBestEffort(t *testing.T) {
	c := newTestCoverStorage(t)
	name, err := c.Save("cover.png", bytes.NewReader(pngBytes(t, 10, 10)))
	if err != nil {
		t.Fatalf("Failed to save cover: %v", err)
	}

	c.Delete(name)
	for _, path := range []string{c.OriginalPath(name), c.ThumbPath(name)} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s still exists", path)
		}
	}

	// Missing files and odd names are ignored.
	c.Delete(name)
	c.Delete("")
	c.Delete("../../etc/passwd")
	if c.OriginalPath("../x.png") != "" {
		t.Errorf("Paths outside the cover directory must be refused")
	}
}
