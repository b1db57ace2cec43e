package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// Facing mirrors the browser's facingMode constraint
type Facing string

const (
	FacingEnvironment Facing = "environment" // rear camera
	FacingUser        Facing = "user"
)

var (
	ErrPermissionDenied  = apperror.Permission("camera access denied, please check the device credentials", nil)
	ErrDeviceUnavailable = apperror.Permission("camera device is unavailable", nil)
	ErrUnsupported       = apperror.Permission("no camera is configured on this server", nil)
	ErrSessionClosed     = apperror.Permission("camera session is closed", nil)
)

// Device is one video input
type Device interface {
	Name() string
	Facing() Facing
	// Open acquires the device; the returned stream must be closed
	Open(ctx context.Context) (FrameStream, error)
}

// FrameStream yields encoded frames from an open device
type FrameStream interface {
	// Next returns the current encoded frame and its content type. It must
	// return when ctx is done or when Close is called from another goroutine.
	Next(ctx context.Context) ([]byte, string, error)
	Close() error
}

// ParseDevice reads a "name|facing|kind|url" entry; kind is snapshot or mjpeg
func ParseDevice(entry string) (Device, error) {
	parts := strings.Split(entry, "|")
	if len(parts) != 4 {
		return nil, fmt.Errorf("camera entry %q must be name|facing|kind|url", entry)
	}

	name := strings.TrimSpace(parts[0])
	facing := Facing(strings.TrimSpace(parts[1]))
	if facing != FacingEnvironment && facing != FacingUser {
		return nil, fmt.Errorf("camera %s: unknown facing %q", name, facing)
	}
	url := strings.TrimSpace(parts[3])

	switch strings.TrimSpace(parts[2]) {
	case "snapshot":
		return NewSnapshotDevice(name, facing, url), nil
	case "mjpeg":
		return NewMJPEGDevice(name, facing, url), nil
	default:
		return nil, fmt.Errorf("camera %s: unknown kind %q (use snapshot or mjpeg)", name, parts[2])
	}
}
