package myaudio

import (
	"context"
	"time"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// Processor runs one buffer through an input stream session in place.
type Processor interface {
	ProcessInputStream(in *lvacfs.InputStream, buf []byte) error
}

// Sink receives each processed period. The slice is reused after Sink returns.
type Sink func(period []byte)

// ProcessPCM runs pcm through the session period by period, in place. The last
// period may be shorter but always holds whole frames.
func ProcessPCM(ctx context.Context, p Processor, in *lvacfs.InputStream, pcm *PCM, periodFrames int) error {
	frameSize := pcm.FrameSize()
	if frameSize == 0 || periodFrames <= 0 {
		return errors.Newf("invalid processing geometry").
			Component("audio").
			Category(errors.CategoryValidation).
			Context("frame_size", frameSize).
			Context("period_frames", periodFrames).
			Build()
	}

	data := pcm.Data[:pcm.Frames()*frameSize]
	step := periodFrames * frameSize
	for off := 0; off < len(data); off += step {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(off+step, len(data))
		if err := p.ProcessInputStream(in, data[off:end]); err != nil {
			return err
		}
	}
	return nil
}

// PeriodReader drains a PeriodBuffer into a session.
type PeriodReader struct {
	Processor Processor
	Stream    *lvacfs.InputStream
	Buffer    *PeriodBuffer
	Sink      Sink
	// PollInterval is how long the reader sleeps when no full period is queued.
	PollInterval time.Duration
}

// Run processes periods until ctx is done or processing fails. A processing error
// ends the run because the session has been torn down.
func (r *PeriodReader) Run(ctx context.Context) error {
	interval := r.PollInterval
	if interval <= 0 {
		interval = 5 * time.Millisecond
	}
	log := GetLogger().With(logger.StreamID(r.Stream.ID))

	period := make([]byte, r.Buffer.PeriodBytes())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for r.Buffer.ReadPeriod(period) {
			if err := r.Processor.ProcessInputStream(r.Stream, period); err != nil {
				log.Error("period processing failed", logger.Error(err))
				return err
			}
			if r.Sink != nil {
				r.Sink(period)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
