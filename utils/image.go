package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// thumbnailWidth is the target width of generated preview thumbnails.
const thumbnailWidth = 320

// thumbnailQuality is the webp encoding quality for thumbnails.
const thumbnailQuality = 80

// IsImageContentType reports whether a MIME type describes a decodable image.
func IsImageContentType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp":
		return true
	}
	return false
}

// MakeThumbnail decodes an uploaded image and re-encodes it as a webp
// thumbnail no wider than 320 pixels. Images already narrower are only
// transcoded, not enlarged.
func MakeThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > thumbnailWidth {
		img = resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
