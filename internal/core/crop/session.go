package crop

import (
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// Session holds one image while the user picks a region. Skipping the crop
// is always allowed: Confirm with no selection and Cancel both hand back the
// original image unchanged.
type Session struct {
	original  *media.CapturedImage
	selection *Region
}

func NewSession(img *media.CapturedImage) *Session {
	return &Session{original: img}
}

func (s *Session) Original() *media.CapturedImage {
	return s.original
}

// Select replaces the current selection
func (s *Session) Select(r Region) error {
	if err := r.Validate(); err != nil {
		return apperror.Validation("invalid crop region", err)
	}
	s.selection = &r
	return nil
}

func (s *Session) Selection() (Region, bool) {
	if s.selection == nil {
		return Region{}, false
	}
	return *s.selection, true
}

// Confirm crops to the selection, or passes the original through if nothing was selected
func (s *Session) Confirm() (*media.CapturedImage, error) {
	if s.selection == nil {
		return s.original, nil
	}
	return Crop(s.original, *s.selection)
}

// Cancel discards the selection, never the image
func (s *Session) Cancel() *media.CapturedImage {
	s.selection = nil
	return s.original
}
