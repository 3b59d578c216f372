// Package lvacfs binds the closed LVACFS capture-processing module at runtime and
// manages per-stream module instances on top of it.
package lvacfs

import "github.com/tphakala/lvacfs-go/internal/logger"

// GetLogger returns the lvacfs package logger scoped to the lvacfs module.
// The logger is fetched from the global logger each time so it follows
// the central logger once the command has configured it.
func GetLogger() logger.Logger {
	return logger.Global().Module(componentName)
}
