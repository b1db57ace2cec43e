package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// SnapshotDevice is a network camera exposing a still-JPEG endpoint.
// Every frame is a separate GET.
type SnapshotDevice struct {
	name   string
	facing Facing
	url    string
	client *http.Client
}

func NewSnapshotDevice(name string, facing Facing, url string) *SnapshotDevice {
	return &SnapshotDevice{
		name:   name,
		facing: facing,
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *SnapshotDevice) Name() string   { return d.name }
func (d *SnapshotDevice) Facing() Facing { return d.facing }

// Open fetches one frame so permission problems surface at start
func (d *SnapshotDevice) Open(ctx context.Context) (FrameStream, error) {
	frame, contentType, err := d.fetch(ctx)
	if err != nil {
		return nil, err
	}
	streamCtx, cancel := context.WithCancel(context.Background())
	return &snapshotStream{
		device:      d,
		ctx:         streamCtx,
		cancel:      cancel,
		pending:     frame,
		pendingType: contentType,
	}, nil
}

func (d *SnapshotDevice) fetch(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, "", deviceError(ErrDeviceUnavailable, fmt.Errorf("camera %s: %w", d.name, err))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", deviceError(ErrDeviceUnavailable, fmt.Errorf("camera %s: %w", d.name, err))
	}
	defer resp.Body.Close()

	if err := statusError(d.name, resp.StatusCode); err != nil {
		return nil, "", err
	}

	frame, err := readFrame(resp.Body)
	if err != nil {
		return nil, "", deviceError(ErrDeviceUnavailable, fmt.Errorf("camera %s: %w", d.name, err))
	}
	return frame, resp.Header.Get("Content-Type"), nil
}

type snapshotStream struct {
	device *SnapshotDevice
	// ctx is cancelled by Close to abort in-flight fetches
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	pending     []byte
	pendingType string
	closed      bool
}

func (s *snapshotStream) Next(ctx context.Context) ([]byte, string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, "", ErrSessionClosed
	}
	if s.pending != nil {
		frame, ct := s.pending, s.pendingType
		s.pending, s.pendingType = nil, ""
		s.mu.Unlock()
		return frame, ct, nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	frame, ct, err := s.device.fetch(ctx)
	if err != nil && s.ctx.Err() != nil {
		return nil, "", ErrSessionClosed
	}
	return frame, ct, err
}

func (s *snapshotStream) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pending = nil
	return nil
}

// MJPEGDevice is a network camera serving multipart/x-mixed-replace. The
// open HTTP response is the device handle and stays open for the session.
type MJPEGDevice struct {
	name   string
	facing Facing
	url    string
	client *http.Client
}

func NewMJPEGDevice(name string, facing Facing, url string) *MJPEGDevice {
	// no client timeout: it would cut the long-lived stream. Only the headers are bounded.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = 15 * time.Second
	return &MJPEGDevice{name: name, facing: facing, url: url, client: &http.Client{Transport: transport}}
}

func (d *MJPEGDevice) Name() string   { return d.name }
func (d *MJPEGDevice) Facing() Facing { return d.facing }

func (d *MJPEGDevice) Open(ctx context.Context) (FrameStream, error) {
	// The stream outlives the request that opened it, so it gets its own context.
	streamCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, d.url, nil)
	if err != nil {
		cancel()
		return nil, deviceError(ErrDeviceUnavailable, fmt.Errorf("camera %s: %w", d.name, err))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		cancel()
		return nil, deviceError(ErrDeviceUnavailable, fmt.Errorf("camera %s: %w", d.name, err))
	}

	if err := statusError(d.name, resp.StatusCode); err != nil {
		resp.Body.Close()
		cancel()
		return nil, err
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		resp.Body.Close()
		cancel()
		return nil, deviceError(ErrDeviceUnavailable,
			fmt.Errorf("camera %s: expected multipart stream, got %q", d.name, resp.Header.Get("Content-Type")))
	}

	stream := &mjpegStream{
		body:   resp.Body,
		cancel: cancel,
		name:   d.name,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	go stream.run(multipart.NewReader(resp.Body, strings.TrimPrefix(params["boundary"], "--")))
	return stream, nil
}

// mjpegStream drains the camera in the background and keeps only the newest
// frame, so a read never returns a frame that sat in the socket buffer.
type mjpegStream struct {
	body   io.ReadCloser
	cancel context.CancelFunc
	name   string
	ready  chan struct{} // closed when the first frame arrives
	done   chan struct{} // closed when the reader stops

	mu          sync.Mutex
	frame       []byte
	contentType string
	err         error
	closed      bool
}

func (s *mjpegStream) run(reader *multipart.Reader) {
	defer close(s.done)
	first := true
	for {
		part, err := reader.NextPart()
		if err != nil {
			s.fail(fmt.Errorf("camera %s: stream ended: %w", s.name, err))
			return
		}
		frame, err := readFrame(part)
		part.Close()
		if err != nil {
			s.fail(fmt.Errorf("camera %s: %w", s.name, err))
			return
		}

		s.mu.Lock()
		s.frame, s.contentType = frame, part.Header.Get("Content-Type")
		s.mu.Unlock()
		if first {
			close(s.ready)
			first = false
		}
	}
}

func (s *mjpegStream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = deviceError(ErrDeviceUnavailable, err)
}

// Next returns the newest frame, waiting for the first one if none arrived yet
func (s *mjpegStream) Next(ctx context.Context) ([]byte, string, error) {
	select {
	case <-s.ready:
	case <-s.done:
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return nil, "", ErrSessionClosed
	case s.err != nil:
		return nil, "", s.err
	}
	return s.frame, s.contentType, nil
}

// Close is safe while Next is waiting; it returns once the reader has stopped
func (s *mjpegStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	err := s.body.Close()
	<-s.done
	return err
}

func statusError(name string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return deviceError(ErrPermissionDenied, fmt.Errorf("camera %s returned %d", name, code))
	default:
		return deviceError(ErrDeviceUnavailable, fmt.Errorf("camera %s returned %d", name, code))
	}
}

// readFrame caps a single frame at the upload limit plus one byte, so the
// encoder still sees and rejects oversized frames
func readFrame(r io.Reader) ([]byte, error) {
	frame, err := io.ReadAll(io.LimitReader(r, media.MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(frame) == 0 {
		return nil, errors.New("empty frame")
	}
	return frame, nil
}

// deviceError keeps the sentinel's kind and message so errors.Is still matches
func deviceError(base *apperror.Error, cause error) error {
	return apperror.New(base.Kind, base.Message, cause)
}
