package media

import (
	"bytes"
	"fmt"
	"image"

	// Decoders for everything a browser would hand us as image/*
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode rasterizes the payload. Used by the cropper and by dimension checks.
func (c *CapturedImage) Decode() (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(c.data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", c.mimeType, err)
	}
	return img, format, nil
}

// Dimensions reads only the image header
func (c *CapturedImage) Dimensions() (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(c.data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
