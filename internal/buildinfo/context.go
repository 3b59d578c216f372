// Package buildinfo contains build-time metadata kept separate from user configuration
package buildinfo

import (
	"fmt"
	"runtime"
)

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// BuildInfo provides an interface for accessing build-time metadata.
type BuildInfo interface {
	Version() string
	BuildDate() string
	SystemID() string
}

// Context contains build-time metadata that is not user-configurable.
// Version and BuildDate are injected with -ldflags at build time; SystemID is
// loaded or created on first start.
type Context struct {
	version   string
	buildDate string
	systemID  string
}

// NewContext creates a build context.
func NewContext(version, buildDate, systemID string) *Context {
	return &Context{
		version:   version,
		buildDate: buildDate,
		systemID:  systemID,
	}
}

// Version returns the build version or UnknownValue.
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns the build date or UnknownValue.
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// SystemID returns the system identifier or UnknownValue.
func (c *Context) SystemID() string {
	if c == nil || c.systemID == "" {
		return UnknownValue
	}
	return c.systemID
}

// WithSystemID returns a copy of c carrying id.
func (c *Context) WithSystemID(id string) *Context {
	if c == nil {
		return NewContext("", "", id)
	}
	return NewContext(c.version, c.buildDate, id)
}

// Release returns the release name used for error reports, e.g. "lvacfs@1.2.0".
func (c *Context) Release() string {
	return "lvacfs@" + c.Version()
}

// String formats the build information for version output.
func (c *Context) String() string {
	return fmt.Sprintf("lvacfs %s (built %s, %s/%s, %s)",
		c.Version(), c.BuildDate(), runtime.GOOS, runtime.GOARCH, runtime.Version())
}
