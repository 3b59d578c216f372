package analysis

import (
	"context"

	"github.com/tphakala/lvacfs-go/internal/events"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
	"github.com/tphakala/lvacfs-go/internal/myaudio"
)

// CaptureFunc captures audio and passes each chunk to onData until ctx is done.
type CaptureFunc func(ctx context.Context, cfg myaudio.CaptureConfig, onData func([]byte)) error

type options struct {
	engineOptions []lvacfs.Option
	capture       CaptureFunc
	publishers    []events.Publisher
	bufferPeriods int
}

// Option configures file and realtime processing.
type Option func(*options)

// WithEngineOptions appends engine options after the configured module locations.
func WithEngineOptions(opts ...lvacfs.Option) Option {
	return func(o *options) { o.engineOptions = append(o.engineOptions, opts...) }
}

// WithCapture replaces the malgo capture device.
func WithCapture(fn CaptureFunc) Option {
	return func(o *options) { o.capture = fn }
}

// WithPublishers adds lifecycle event publishers next to the configured ones.
func WithPublishers(p ...events.Publisher) Option {
	return func(o *options) { o.publishers = append(o.publishers, p...) }
}

func newOptions(opts []Option) *options {
	o := &options{
		capture:       myaudio.CaptureAudio,
		bufferPeriods: defaultBufferPeriods,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
