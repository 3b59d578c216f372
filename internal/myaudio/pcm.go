package myaudio

import "encoding/binary"

// bytesToInts converts 16-bit little endian PCM to one int per sample.
func bytesToInts(pcmData []byte) []int {
	samples := make([]int, len(pcmData)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcmData[2*i:]))) //nolint:gosec // G115: reinterpret as signed PCM
	}
	return samples
}

// intsToBytes converts samples to 16-bit little endian PCM, clamping to the int16 range.
func intsToBytes(samples []int, dst []byte) []byte {
	need := len(samples) * 2
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]
	for i, s := range samples {
		s = max(-32768, min(32767, s))
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(int16(s))) //nolint:gosec // G115: clamped above
	}
	return dst
}
