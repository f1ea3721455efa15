package service

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ThumbnailWidth is the maximum edge of generated thumbnails.
const ThumbnailWidth = 480

// MaxImagePixels caps the declared canvas of an upload. Decoding allocates the
// whole canvas up front, so the header is checked before any pixel is read.
const MaxImagePixels = 40_000_000

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image dimensions are too large")
)

type imageInfo struct {
	Format string
	Width  int
	Height int
}

// inspectImage reads the header of data and reports its format and size.
func inspectImage(data []byte) (imageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imageInfo{}, ErrUnsupportedImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return imageInfo{}, ErrUnsupportedImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return imageInfo{}, ErrImageTooLarge
	}
	return imageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// makeThumbnail scales data so its longest edge is at most ThumbnailWidth and
// encodes the result as JPEG.
func makeThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	bounds := img.Bounds()
	thumb := img
	if bounds.Dx() > ThumbnailWidth || bounds.Dy() > ThumbnailWidth {
		thumb = resize.Thumbnail(ThumbnailWidth, ThumbnailWidth, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 82}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var formatExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
	"bmp":  ".bmp",
	"tiff": ".tiff",
}

var formatContentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}
