package myaudio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pcm16(samples ...int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s)) //nolint:gosec // test data
	}
	return out
}

func TestCalculateAudioLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		samples  []byte
		level    int
		clipping bool
	}{
		{"empty", nil, 0, false},
		{"silence", pcm16(0, 0, 0, 0), 0, false},
		{"very quiet", pcm16(10, -10, 10, -10), 0, false},
		{"full scale", pcm16(math.MaxInt16, math.MinInt16), 100, true},
		{"minus 20 dBFS", pcm16(3277, -3277, 3277, -3277), 80, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateAudioLevel("s", tt.samples)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, tt.clipping, got.Clipping)
			assert.Equal(t, "s", got.Source)
		})
	}
}

func TestPCMConversionClamps(t *testing.T) {
	t.Parallel()

	out := intsToBytes([]int{40000, -40000, 1234}, nil)
	assert.Equal(t, []int{32767, -32768, 1234}, bytesToInts(out))
}
