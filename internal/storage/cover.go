package storage // import "github.com/Xunop/library-tracker/internal/storage"

import (
	"bytes"
	"image"
	// Decoders for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/library-tracker/internal/config"
	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/util"
)

// ErrUnsupportedImage rejects uploads whose name or content is not an
// allowed image format.
var ErrUnsupportedImage = errors.New("unsupported image format")

const webpThumbnailQuality = 75

// CoverStorage keeps cover originals and their thumbnails in two parallel
// directories under the same generated file name.
type CoverStorage struct {
	UploadDir string
	ThumbDir  string
	MaxSide   int
	opts      *config.Options
}

func NewCoverStorage(opts *config.Options) *CoverStorage {
	return &CoverStorage{
		UploadDir: opts.UploadDir,
		ThumbDir:  opts.ThumbDir,
		MaxSide:   opts.ThumbnailMaxSide,
		opts:      opts,
	}
}

// Save validates an upload and stores it with its thumbnail. It returns the
// generated file name. The claimed extension must be allowed, and so must the
// format sniffed from the content, which decides the stored extension.
func (c *CoverStorage) Save(filename string, r io.Reader) (string, error) {
	if !c.isAllowed(normalizeExtension(filepath.Ext(filename))) {
		return "", errors.Wrapf(ErrUnsupportedImage, "file name %q", filename)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to read upload")
	}
	ext := normalizeExtension(mimetype.Detect(data).Extension())
	if ext == "" || !c.isAllowed(ext) {
		return "", errors.Wrapf(ErrUnsupportedImage, "content of %q", filename)
	}

	img, err := decode(data, ext)
	if err != nil {
		return "", errors.Wrapf(ErrUnsupportedImage, "cannot decode %q: %v", filename, err)
	}

	name := util.GenUUID() + "." + ext
	for _, dir := range []string{c.UploadDir, c.ThumbDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrapf(err, "unable to create directory %s", dir)
		}
	}

	originalPath := filepath.Join(c.UploadDir, name)
	if err := os.WriteFile(originalPath, data, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write cover")
	}
	if err := c.writeThumbnail(img, ext, filepath.Join(c.ThumbDir, name)); err != nil {
		c.Delete(name)
		return "", err
	}

	log.Debug("Stored cover", zap.String("name", name), zap.Int("bytes", len(data)))
	return name, nil
}

func (c *CoverStorage) writeThumbnail(img image.Image, ext, path string) error {
	maxSide := c.MaxSide
	if maxSide <= 0 {
		maxSide = 256
	}
	// Fit keeps the aspect ratio and never enlarges.
	thumb := imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)

	if ext == "webp" {
		var buf bytes.Buffer
		if err := webp.Encode(&buf, thumb, &webp.Options{Lossless: false, Quality: webpThumbnailQuality}); err != nil {
			return errors.Wrap(err, "failed to encode thumbnail")
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return errors.Wrap(err, "failed to write thumbnail")
		}
		return nil
	}
	if err := imaging.Save(thumb, path); err != nil {
		return errors.Wrap(err, "failed to write thumbnail")
	}
	return nil
}

// Delete removes the original and the thumbnail. Failures are logged and
// otherwise ignored.
func (c *CoverStorage) Delete(name string) {
	if !validName(name) {
		return
	}
	for _, dir := range []string{c.UploadDir, c.ThumbDir} {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Failed to delete cover file", zap.String("path", path), zap.Error(err))
		}
	}
}

// OriginalPath and ThumbPath return "" for names that could escape the
// cover directories.
func (c *CoverStorage) OriginalPath(name string) string {
	if !validName(name) {
		return ""
	}
	return filepath.Join(c.UploadDir, name)
}

func (c *CoverStorage) ThumbPath(name string) string {
	if !validName(name) {
		return ""
	}
	return filepath.Join(c.ThumbDir, name)
}

func (c *CoverStorage) isAllowed(ext string) bool {
	return c.opts.IsAllowedImageExtension(ext)
}

func decode(data []byte, ext string) (image.Image, error) {
	if ext == "webp" {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// normalizeExtension lowercases, drops the dot and spells jpeg as jpg.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}
