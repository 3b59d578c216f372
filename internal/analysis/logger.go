// Package analysis runs audio through LVACFS sessions, either from a file or from a
// live capture device.
package analysis

import "github.com/tphakala/lvacfs-go/internal/logger"

// GetLogger returns the analysis module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("analysis")
}
