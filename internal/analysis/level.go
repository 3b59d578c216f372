package analysis

import (
	"sync/atomic"

	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/myaudio"
)

// levelMeter tracks the audio level of processed periods and logs it about once a second.
type levelMeter struct {
	source     string
	every      int
	count      int
	last       atomic.Int32
	clipLogged bool
}

func newLevelMeter(source string, periodsPerSecond int) *levelMeter {
	return &levelMeter{source: source, every: max(periodsPerSecond, 1)}
}

// observe runs on the reader goroutine only.
func (m *levelMeter) observe(period []byte) {
	m.count++
	if m.count < m.every {
		return
	}
	m.count = 0

	lvl := myaudio.CalculateAudioLevel(m.source, period)
	m.last.Store(int32(lvl.Level)) //nolint:gosec // G115: level is 0..100

	if lvl.Clipping && !m.clipLogged {
		GetLogger().Warn("processed audio is clipping", logger.String("source", m.source))
	}
	m.clipLogged = lvl.Clipping
	GetLogger().Trace("audio level", logger.Int("level", lvl.Level))
}

func (m *levelMeter) level() int {
	return int(m.last.Load())
}
