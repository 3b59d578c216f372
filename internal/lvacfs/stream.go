package lvacfs

import (
	"sync"
)

// StreamConfig is the audio configuration a capture stream hands to the engine.
type StreamConfig struct {
	Source      AudioSource
	ChannelMask ChannelMask
	SampleRate  uint32
	Format      Format
}

// Channels returns the channel count derived from the mask.
func (c StreamConfig) Channels() int {
	return c.ChannelMask.ChannelCount()
}

// FrameSize returns the byte length of one frame, or 0 if the config cannot describe frames.
func (c StreamConfig) FrameSize() int {
	return c.Channels() * c.Format.BytesPerSample()
}

// InputStream is the capture-pipeline object a session belongs to. The stream owns the
// session storage; the engine only ever touches it through the session lock.
//
// An InputStream must not be copied after first use.
type InputStream struct {
	// ID identifies the stream in logs and lifecycle events.
	ID     string
	Config StreamConfig

	session session
}

// NewInputStream returns a stream with an empty session.
func NewInputStream(id string, cfg StreamConfig) *InputStream {
	return &InputStream{ID: id, Config: cfg}
}

// Active reports whether the stream currently holds a module instance.
func (in *InputStream) Active() bool {
	in.session.mu.Lock()
	defer in.session.mu.Unlock()
	return in.session.handle != nil
}

// FramesProcessed returns the number of frames successfully processed by the current
// or most recent session.
func (in *InputStream) FramesProcessed() uint64 {
	in.session.mu.Lock()
	defer in.session.mu.Unlock()
	return in.session.frames
}

// session is the per-stream module instance state. handle is nil while the session is
// empty; created is set only once the module accepted the instance.
type session struct {
	mu      sync.Mutex
	handle  *Handle
	created bool

	// parameters captured at start, used for every process call of this instance
	channels int
	format   Format

	frames uint64
	status [StatusBufferSize]byte
}

// reset returns the session to the never-started state. Caller holds mu.
func (s *session) reset() {
	s.handle = nil
	s.created = false
	s.channels = 0
	s.format = FormatInvalid
}
