package capture

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// Adapter turns the three input origins (picker, drop, camera) into a
// media.CapturedImage. Every path goes through media.Encode.
type Adapter struct {
	camera *Camera
}

func NewAdapter(camera *Camera) *Adapter {
	return &Adapter{camera: camera}
}

// Camera returns the camera manager, or nil when none is configured
func (a *Adapter) Camera() *Camera {
	return a.camera
}

// FromFile reads an image from disk (the CLI's file picker)
func (a *Adapter) FromFile(ctx context.Context, path string) (*media.CapturedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return nil, apperror.Validation(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}
	if info.Size() > media.MaxImageBytes {
		return nil, media.ErrTooLarge
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("cannot open file: %s", path), err)
	}
	defer f.Close()

	// Extension first, content sniffing as a fallback inside media.Encode
	contentType := mime.TypeByExtension(filepath.Ext(path))
	return media.EncodeReader(f, info.Size(), contentType, media.SourceFile)
}

// FromUpload handles a multipart file picked in a form
func (a *Adapter) FromUpload(fh *multipart.FileHeader) (*media.CapturedImage, error) {
	if fh == nil {
		return nil, apperror.Validation("image file is required", nil)
	}
	if fh.Size > media.MaxImageBytes {
		return nil, media.ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Validation("failed to read image file", err)
	}
	defer f.Close()

	return media.EncodeReader(f, fh.Size, fh.Header.Get("Content-Type"), media.SourceFile)
}

// FromDrop handles a raw dropped payload. size < 0 means unknown.
func (a *Adapter) FromDrop(r io.Reader, size int64, contentType string) (*media.CapturedImage, error) {
	if r == nil {
		return nil, apperror.Validation("image file is required", nil)
	}
	return media.EncodeReader(r, size, contentType, media.SourceFile)
}

// FromCamera opens a camera session, grabs one frame and releases the device
func (a *Adapter) FromCamera(ctx context.Context) (*media.CapturedImage, error) {
	if a.camera == nil {
		return nil, ErrUnsupported
	}
	session, err := a.camera.Start(ctx)
	if err != nil {
		return nil, err
	}
	return session.Capture(ctx)
}
