package myaudio

import (
	"encoding/binary"
	"math"
)

// AudioLevelData holds audio level data
type AudioLevelData struct {
	Level    int    `json:"level"`    // 0-100
	Clipping bool   `json:"clipping"` // true if clipping is detected
	Source   string `json:"source"`   // stream id the level was measured on
}

// calculateAudioLevel calculates the RMS of 16-bit little endian samples and
// scales it to a 0-100 level.
func calculateAudioLevel(samples []byte) AudioLevelData {
	sampleCount := len(samples) / 2
	if sampleCount == 0 {
		return AudioLevelData{}
	}

	var sum float64
	isClipping := false
	for i := 0; i+1 < len(samples); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(samples[i : i+2])) //nolint:gosec // G115: reinterpret as signed PCM
		v := float64(sample)
		sum += v * v

		if sample == math.MaxInt16 || sample == math.MinInt16 {
			isClipping = true
		}
	}

	rms := math.Sqrt(sum / float64(sampleCount))
	if rms == 0 {
		return AudioLevelData{Clipping: isClipping}
	}

	// Map -60..-10 dBFS onto 0..100.
	db := 20 * math.Log10(rms/32768.0)
	scaledLevel := (db + 60) * (100.0 / 50.0)

	if isClipping {
		scaledLevel = math.Max(scaledLevel, 95)
	}
	scaledLevel = math.Max(0, math.Min(100, scaledLevel))

	return AudioLevelData{
		Level:    int(scaledLevel),
		Clipping: isClipping,
	}
}

// CalculateAudioLevel returns the level of a PCM16 buffer measured on the given source.
func CalculateAudioLevel(source string, samples []byte) AudioLevelData {
	lvl := calculateAudioLevel(samples)
	lvl.Source = source
	return lvl
}
