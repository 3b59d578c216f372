package myaudio

import (
	"sync"
	"sync/atomic"

	"github.com/smallnest/ringbuffer"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// PeriodBuffer decouples the capture callback from session processing. Writers never
// block: a chunk that does not fit is dropped whole so frame alignment is preserved.
type PeriodBuffer struct {
	mu          sync.Mutex
	rb          *ringbuffer.RingBuffer
	periodBytes int
	dropped     atomic.Uint64
}

// NewPeriodBuffer allocates room for the given number of periods.
func NewPeriodBuffer(periodBytes, periods int) (*PeriodBuffer, error) {
	if periodBytes <= 0 || periods <= 0 {
		return nil, errors.Newf("invalid period buffer geometry: %d bytes x %d periods", periodBytes, periods).
			Component("audio").
			Category(errors.CategoryValidation).
			Build()
	}
	return &PeriodBuffer{
		rb:          ringbuffer.New(periodBytes * periods),
		periodBytes: periodBytes,
	}, nil
}

// PeriodBytes returns the size of one period.
func (b *PeriodBuffer) PeriodBytes() int {
	return b.periodBytes
}

// Write queues captured bytes. It returns false when the chunk was dropped.
func (b *PeriodBuffer) Write(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rb.Free() < len(data) {
		b.dropped.Add(uint64(len(data)))
		return false
	}
	if _, err := b.rb.Write(data); err != nil {
		b.dropped.Add(uint64(len(data)))
		return false
	}
	return true
}

// ReadPeriod fills dst with one period when one is available.
// dst must be at least PeriodBytes long.
func (b *PeriodBuffer) ReadPeriod(dst []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rb.Length() < b.periodBytes {
		return false
	}
	n, err := b.rb.Read(dst[:b.periodBytes])
	return err == nil && n == b.periodBytes
}

// Buffered returns the number of queued bytes.
func (b *PeriodBuffer) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rb.Length()
}

// Dropped returns the number of bytes dropped because the buffer was full.
func (b *PeriodBuffer) Dropped() uint64 {
	return b.dropped.Load()
}

// Reset discards queued data.
func (b *PeriodBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rb.Reset()
}
