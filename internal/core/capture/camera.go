package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// Camera owns the configured devices and guarantees at most one open session
type Camera struct {
	devices []Device

	mu     sync.Mutex
	active *Session
}

func NewCamera(devices ...Device) *Camera {
	return &Camera{devices: devices}
}

func (c *Camera) Devices() []Device {
	return c.devices
}

// Start releases any open session, then opens a device, trying rear-facing
// devices first. The returned session must end with Capture, Cancel or Close.
func (c *Camera) Start(ctx context.Context) (*Session, error) {
	if len(c.devices) == 0 {
		return nil, ErrUnsupported
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.closeStream()
		c.active = nil
	}

	var lastErr error
	for _, dev := range c.preferred() {
		stream, err := dev.Open(ctx)
		if err != nil {
			log.Warn().Err(err).Str("camera", dev.Name()).Msg("📷 Camera open failed")
			// a denied device is more useful to report than a missing one
			if lastErr == nil || !errors.Is(lastErr, ErrPermissionDenied) {
				lastErr = err
			}
			continue
		}

		s := &Session{
			ID:        uuid.NewString(),
			Device:    dev.Name(),
			Facing:    dev.Facing(),
			StartedAt: time.Now(),
			camera:    c,
			stream:    stream,
		}
		c.active = s
		log.Info().Str("camera", dev.Name()).Str("session", s.ID).Msg("📷 Camera session started")
		return s, nil
	}

	return nil, lastErr
}

// Active returns the open session, if any
func (c *Camera) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// ActiveSessions is 0 or 1
func (c *Camera) ActiveSessions() int {
	if c.Active() == nil {
		return 0
	}
	return 1
}

// Stop releases the open session without capturing
func (c *Camera) Stop() error {
	c.mu.Lock()
	s := c.active
	c.active = nil
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.closeStream()
}

// Close is teardown; it releases everything
func (c *Camera) Close() error {
	return c.Stop()
}

func (c *Camera) preferred() []Device {
	ordered := make([]Device, 0, len(c.devices))
	for _, d := range c.devices {
		if d.Facing() == FacingEnvironment {
			ordered = append(ordered, d)
		}
	}
	for _, d := range c.devices {
		if d.Facing() != FacingEnvironment {
			ordered = append(ordered, d)
		}
	}
	return ordered
}

func (c *Camera) detach(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == s {
		c.active = nil
	}
}

// Session is one exclusive acquisition of a camera device
type Session struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	Facing    Facing    `json:"facing"`
	StartedAt time.Time `json:"started_at"`

	camera *Camera
	mu     sync.Mutex
	stream FrameStream
	closed bool
}

// Preview returns the latest frame and keeps the device open
func (s *Session) Preview(ctx context.Context) ([]byte, string, error) {
	stream, err := s.openStream()
	if err != nil {
		return nil, "", err
	}
	return stream.Next(ctx)
}

// Capture freezes the current frame and releases the device on every path
func (s *Session) Capture(ctx context.Context) (*media.CapturedImage, error) {
	defer s.release()

	stream, err := s.openStream()
	if err != nil {
		return nil, err
	}
	frame, contentType, err := stream.Next(ctx)
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = "image/jpeg"
	}
	img, err := media.Encode(frame, contentType, media.SourceCamera)
	if err != nil {
		return nil, err
	}

	log.Info().Str("session", s.ID).Int64("bytes", img.Size()).Msg("📸 Frame captured")
	return img, nil
}

// Cancel releases the device without capturing
func (s *Session) Cancel() error {
	return s.release()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) release() error {
	err := s.closeStream()
	s.camera.detach(s)
	return err
}

// openStream never holds s.mu across a read, so Stop and Cancel stay prompt
func (s *Session) openStream() (FrameStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.stream, nil
}

// closeStream interrupts any read in flight on the stream
func (s *Session) closeStream() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	log.Info().Str("session", s.ID).Msg("📷 Camera released")
	if err := s.stream.Close(); err != nil {
		return apperror.Permission("failed to release camera", err)
	}
	return nil
}
