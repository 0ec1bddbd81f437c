// Package upload validates user supplied images before they enter a session.
package upload

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"

	"housepaint/internal/domain"
)

// MaxDimension bounds either side of an accepted image.
const MaxDimension = 8192

// Image is a validated upload.
type Image struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
	Format string
}

// ErrTooLarge is returned when the payload exceeds the configured limit.
var ErrTooLarge = fmt.Errorf("%w: file too large", domain.ErrUnsupportedMedia)

// Read consumes at most limit bytes from r and validates them with Validate.
func Read(r io.Reader, declared string, limit int64) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Image{}, fmt.Errorf("upload: read body: %w", err)
	}
	if int64(len(data)) > limit {
		return Image{}, ErrTooLarge
	}
	return Validate(data, declared)
}

// Validate accepts only image/* content. The declared type, when present, must
// be an image type; the sniffed type must be an image type too, and the image
// header must decode. The sniffed type wins over the declared one.
func Validate(data []byte, declared string) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty file", domain.ErrUnsupportedMedia)
	}

	if declared = strings.TrimSpace(declared); declared != "" && declared != "application/octet-stream" {
		mt, _, err := mime.ParseMediaType(declared)
		if err != nil || !strings.HasPrefix(mt, "image/") {
			return Image{}, fmt.Errorf("%w: declared type %q", domain.ErrUnsupportedMedia, declared)
		}
	}

	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		return Image{}, fmt.Errorf("%w: content looks like %q", domain.ErrUnsupportedMedia, sniffed)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, err.Error())
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return Image{}, fmt.Errorf("%w: dimensions %dx%d", domain.ErrUnsupportedMedia, cfg.Width, cfg.Height)
	}

	return Image{
		Data:   data,
		MIME:   sniffed,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}

// ValidatePNG is Validate restricted to PNG, used for mask uploads.
func ValidatePNG(data []byte, declared string) (Image, error) {
	img, err := Validate(data, declared)
	if err != nil {
		return Image{}, err
	}
	if img.Format != "png" {
		return Image{}, fmt.Errorf("%w: mask must be png, got %s", domain.ErrUnsupportedMedia, img.Format)
	}
	return img, nil
}
