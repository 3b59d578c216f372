package lvacfs

import (
	"fmt"
	"strings"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// Handle is the storage slot for one module instance. The module writes its instance
// pointer into the slot on creation and reads it back on every later call.
type Handle uintptr

// StatusBufferSize is the size of the scratch region the process call requires.
const StatusBufferSize = 0x160

// VersionBufferSize is the size of the buffer handed to the version query.
const VersionBufferSize = 256

// Capability names one entry point the module must export.
type Capability int

// Entry points, in binding order.
const (
	CapCreateInstance Capability = iota
	CapDestroyInstance
	CapProcess
	CapUpdateZoomInfo
	CapUpdateAngleInfo
	CapSetParamsFilePath
	CapSetProfile
	CapSetAudioDirection
	CapSetDeviceOrientation
	CapGetVersions

	capabilityCount
)

var capabilitySymbols = [capabilityCount]string{
	CapCreateInstance:       "lvacfs_wrapper_CreateLibraryInstance",
	CapDestroyInstance:      "lvacfs_wrapper_DestroyLibraryInstance",
	CapProcess:              "lvacfs_wrapper_Process",
	CapUpdateZoomInfo:       "lvacfs_wrapper_UpdateZoomInfo",
	CapUpdateAngleInfo:      "lvacfs_wrapper_UpdateAngleInfo",
	CapSetParamsFilePath:    "lvacfs_SetParamsFilePath",
	CapSetProfile:           "lvacfs_wrapper_SetProfile",
	CapSetAudioDirection:    "lvacfs_wrapper_SetAudioDirection",
	CapSetDeviceOrientation: "lvacfs_wrapper_SetDeviceOrientation",
	CapGetVersions:          "lvacfs_wrapper_GetVersions",
}

// Symbol returns the exported symbol name of the entry point.
func (c Capability) Symbol() string {
	if c < 0 || c >= capabilityCount {
		return fmt.Sprintf("capability(%d)", int(c))
	}
	return capabilitySymbols[c]
}

func (c Capability) String() string {
	return c.Symbol()
}

// Capabilities returns every required entry point in binding order.
func Capabilities() []Capability {
	caps := make([]Capability, 0, capabilityCount)
	for c := range capabilityCount {
		caps = append(caps, c)
	}
	return caps
}

// Module is a fully bound capability table. A Module value only exists when every
// entry point resolved; there is no partially bound form.
//
// Return codes follow the module convention: negative means failure.
type Module interface {
	CreateInstance(h *Handle, source AudioSource, sampleRateAndFormat uint64, channels uint32) int32
	DestroyInstance(h *Handle) int32
	// Process transforms in into out; the engine passes the same buffer for both.
	Process(h *Handle, in, out []byte, frames uint32, status []byte) int32
	UpdateZoomInfo(h *Handle, zoom float32) int32
	UpdateAngleInfo(h *Handle, angle int32) int32
	// SetParamsFilePath is global to the module, not per instance.
	SetParamsFilePath(path string)
	SetProfile(h *Handle, profile int32) int32
	SetAudioDirection(h *Handle, direction AudioDirection) int32
	SetDeviceOrientation(h *Handle, orientation DeviceOrientation) int32
	GetVersions(buf []byte) int32
}

// Library is a loaded module binary that has not been bound yet.
type Library interface {
	// Path is the location the binary was loaded from.
	Path() string
	// Bind resolves every entry point. It returns ErrCapabilityIncomplete naming the
	// missing symbols if any single one is absent.
	Bind() (Module, error)
	// Close unloads the binary. Modules bound from it must not be used afterwards.
	Close() error
}

// Loader opens module binaries.
type Loader interface {
	Open(path string) (Library, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (Library, error)

// Open calls f(path).
func (f LoaderFunc) Open(path string) (Library, error) {
	return f(path)
}

// ResolveSymbols looks up every entry point through lookup and returns their addresses
// in binding order. All symbols are looked up before deciding, so the error names every
// missing one.
func ResolveSymbols(path string, lookup func(symbol string) (uintptr, error)) ([]uintptr, error) {
	addrs := make([]uintptr, capabilityCount)
	var missing []string
	for c := range capabilityCount {
		addr, err := lookup(c.Symbol())
		if err != nil || addr == 0 {
			missing = append(missing, c.Symbol())
			continue
		}
		addrs[c] = addr
	}
	if len(missing) > 0 {
		return nil, CapabilityIncompleteError(path, missing)
	}
	return addrs, nil
}

// CapabilityIncompleteError builds the error returned when binding finds missing symbols.
func CapabilityIncompleteError(path string, missing []string) error {
	return errors.New(fmt.Errorf("%w: missing %s", ErrCapabilityIncomplete, strings.Join(missing, ", "))).
		Component(componentName).
		Category(errors.CategoryCapability).
		ModuleContext(path).
		Context("missing_symbols", missing).
		Context("missing_count", len(missing)).
		Build()
}
