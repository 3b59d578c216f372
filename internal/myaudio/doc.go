// Package myaudio moves PCM audio between capture devices, WAV files and lvacfs
// input stream sessions.
//
// Capture callbacks write into a PeriodBuffer; a reader goroutine drains whole
// periods from it and hands them to the engine. File processing decodes 16-bit
// WAV, runs each period through a session and encodes the result.
package myaudio

import "github.com/tphakala/lvacfs-go/internal/logger"

// GetLogger returns the audio package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("audio")
}
