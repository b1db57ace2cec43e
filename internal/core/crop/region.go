package crop

import (
	"fmt"
	"image"
	"math"
)

// DefaultAspect is the aspect ratio of the initial selection (16:9)
const DefaultAspect = 16.0 / 9.0

// DefaultWidthFraction is the share of the display width the initial selection covers
const DefaultWidthFraction = 0.9

// Region is a selection in the coordinate space of the displayed image.
// ScaleX/ScaleY map display pixels to native pixels (native/display); zero means 1.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ScaleX float64 `json:"scale_x,omitempty"`
	ScaleY float64 `json:"scale_y,omitempty"`
}

// DefaultRegion returns the centered 16:9 selection covering 90% of the
// display width, fitted to the height when the display is too short.
func DefaultRegion(displayW, displayH float64) Region {
	w := displayW * DefaultWidthFraction
	h := w / DefaultAspect
	if h > displayH {
		h = displayH
		w = h * DefaultAspect
	}
	return Region{
		X:      (displayW - w) / 2,
		Y:      (displayH - h) / 2,
		Width:  w,
		Height: h,
		ScaleX: 1,
		ScaleY: 1,
	}
}

// WithScale sets the display-to-native factors from the two sizes
func (r Region) WithScale(nativeW, nativeH, displayW, displayH float64) Region {
	if displayW > 0 {
		r.ScaleX = nativeW / displayW
	}
	if displayH > 0 {
		r.ScaleY = nativeH / displayH
	}
	return r
}

func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("crop region must have positive size, got %gx%g", r.Width, r.Height)
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("crop region origin must not be negative, got (%g,%g)", r.X, r.Y)
	}
	if r.ScaleX < 0 || r.ScaleY < 0 {
		return fmt.Errorf("crop scale must not be negative")
	}
	return nil
}

// Native maps the region into native pixel coordinates
func (r Region) Native() image.Rectangle {
	sx, sy := r.ScaleX, r.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return image.Rect(
		int(math.Round(r.X*sx)),
		int(math.Round(r.Y*sy)),
		int(math.Round((r.X+r.Width)*sx)),
		int(math.Round((r.Y+r.Height)*sy)),
	)
}
