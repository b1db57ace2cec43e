package media

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// MaxImageBytes is the largest payload accepted from any input path (4 MiB)
const MaxImageBytes int64 = 4 * 1024 * 1024

var (
	ErrTooLarge = apperror.Validation("file is too large, please upload an image under 4MB", nil)
	ErrNotImage = apperror.Validation("invalid file type, please upload an image", nil)
	ErrEmpty    = apperror.Validation("image is empty", nil)
)

// Validate applies both acceptance rules independently of each other
func Validate(size int64, contentType string) error {
	if size > MaxImageBytes {
		return ErrTooLarge
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return ErrNotImage
	}
	return nil
}

// Encode is the single normalization point every input path converges on.
// The declared content type wins; an empty one is sniffed from the bytes.
func Encode(raw []byte, contentType string, src Source) (*CapturedImage, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	contentType = normalizeContentType(contentType)
	if contentType == "" {
		contentType = http.DetectContentType(raw)
	}

	if err := Validate(int64(len(raw)), contentType); err != nil {
		return nil, err
	}

	return &CapturedImage{
		data:     bytes.Clone(raw),
		mimeType: contentType,
		source:   src,
	}, nil
}

// EncodeReader reads at most MaxImageBytes+1 bytes so an oversized stream is
// rejected without buffering all of it. declaredSize < 0 means unknown.
func EncodeReader(r io.Reader, declaredSize int64, contentType string, src Source) (*CapturedImage, error) {
	if declaredSize > MaxImageBytes {
		return nil, ErrTooLarge
	}
	if ct := normalizeContentType(contentType); ct != "" {
		if err := Validate(0, ct); err != nil {
			return nil, err
		}
	}

	raw, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, apperror.Validation("failed to read image", fmt.Errorf("read: %w", err))
	}
	if int64(len(raw)) > MaxImageBytes {
		return nil, ErrTooLarge
	}

	return Encode(raw, contentType, src)
}

// normalizeContentType strips parameters such as "; charset=binary"
func normalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(ct)
	}
	return mediaType
}
