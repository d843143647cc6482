// Package media validates uploaded images and stores them on an external object host.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 2 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

var (
	ErrTooLarge        = errors.New("image exceeds 2MB")
	ErrUnsupportedType = errors.New("only JPEG, PNG and GIF images are allowed")
	ErrNotConfigured   = errors.New("media host not configured")
	ErrForeignURL      = errors.New("url is not managed by this media host")
)

// Image is an uploaded file held in memory.
type Image struct {
	Filename string
	Size     int64
	Data     []byte

	contentType string
}

// ContentType is the sniffed MIME type, set by Validate.
func (img *Image) ContentType() string { return img.contentType }

// Validate checks size and sniffs the content. The declared filename extension is ignored.
func Validate(img *Image) error {
	if img.Size > MaxImageSize || int64(len(img.Data)) > MaxImageSize {
		return ErrTooLarge
	}
	mtype := mimetype.Detect(img.Data)
	if _, ok := allowedImageTypes[mtype.String()]; !ok {
		return ErrUnsupportedType
	}
	img.contentType = mtype.String()
	return nil
}

func extension(contentType string) string {
	return allowedImageTypes[contentType]
}

// Host stores images and returns their public URLs.
type Host interface {
	Upload(ctx context.Context, folder string, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
}

// Disabled is the Host used when no object store is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, *Image) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error {
	return fmt.Errorf("delete: %w", ErrNotConfigured)
}
