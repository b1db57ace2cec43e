package crop

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// JPEGQuality matches the browser default for canvas.toDataURL("image/jpeg")
const JPEGQuality = 92

// Crop rasterizes exactly the selected region at native resolution and
// returns it as a new JPEG image. The input image is not modified.
func Crop(img *media.CapturedImage, r Region) (*media.CapturedImage, error) {
	if err := r.Validate(); err != nil {
		return nil, apperror.Validation("invalid crop region", err)
	}

	src, _, err := img.Decode()
	if err != nil {
		return nil, apperror.Validation("image cannot be cropped", err)
	}

	bounds := src.Bounds()
	rect := r.Native().Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		return nil, apperror.Validation(
			fmt.Sprintf("crop region %v is outside the %dx%d image", r.Native(), bounds.Dx(), bounds.Dy()), nil)
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.Copy(dst, image.Point{}, src, rect, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return media.Encode(buf.Bytes(), "image/jpeg", media.SourceCropResult)
}
