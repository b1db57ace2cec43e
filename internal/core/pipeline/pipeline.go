// Package pipeline runs one capture through crop, extraction and history in
// that order, one run at a time.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/crop"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/history"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

var ErrBusy = apperror.Busy("an extraction is already running")

type Extractor interface {
	Run(ctx context.Context, flow ocr.Flow, img *media.CapturedImage) (ocr.Result, error)
}

type Recorder interface {
	Record(ctx context.Context, img *media.CapturedImage, text string) (*history.Record, error)
}

type Request struct {
	Image *media.CapturedImage
	// Crop is applied before extraction when set
	Crop *crop.Region
	Flow ocr.Flow
}

type Outcome struct {
	Result ocr.Result
	// Image is what was sent to the model, after cropping
	Image *media.CapturedImage
	// Record is nil for flows without a transcript or when HistoryErr is set
	Record *history.Record
	// HistoryErr reports a failed history write after a successful extraction
	HistoryErr error
	Duration   time.Duration
}

type Pipeline struct {
	extractor Extractor
	recorder  Recorder
	running   atomic.Bool
}

// New accepts a nil recorder for deployments without history
func New(extractor Extractor, recorder Recorder) *Pipeline {
	return &Pipeline{extractor: extractor, recorder: recorder}
}

// Busy reports whether a run is in flight
func (p *Pipeline) Busy() bool {
	return p.running.Load()
}

// Run fails with ErrBusy instead of queueing when another run is in flight
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.running.Store(false)

	start := time.Now()
	if req.Image == nil {
		return nil, media.ErrEmpty
	}
	// every input path has been through media.Encode; re-check the invariant
	if err := media.Validate(req.Image.Size(), req.Image.MIMEType()); err != nil {
		return nil, err
	}

	flow := req.Flow
	if flow == "" {
		flow = ocr.FlowAnnotated
	}

	session := crop.NewSession(req.Image)
	if req.Crop != nil {
		if err := session.Select(*req.Crop); err != nil {
			return nil, err
		}
	}
	img, err := session.Confirm()
	if err != nil {
		return nil, err
	}

	result, err := p.extractor.Run(ctx, flow, img)
	if err != nil {
		log.Error().Err(err).Str("flow", string(flow)).Msg("❌ Extraction failed")
		return nil, err
	}

	out := &Outcome{Result: result, Image: img}

	if t, ok := result.(ocr.Transcript); ok && p.recorder != nil {
		rec, err := p.recorder.Record(ctx, img, t.Transcript())
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Extraction succeeded but history was not saved")
			out.HistoryErr = err
		} else {
			out.Record = rec
		}
	}

	out.Duration = time.Since(start)
	log.Info().Str("flow", string(flow)).Str("kind", string(result.Kind())).
		Dur("duration", out.Duration).Msg("✅ Pipeline run completed")
	return out, nil
}
