// Package lvacfstest provides an in-memory module, library and loader for testing
// code built on the lvacfs engine without the real binary.
package lvacfstest

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// ErrInvalidHandle is the code the stub returns for calls on a handle it never created.
const ErrInvalidHandle int32 = -22

// Module is a scriptable lvacfs.Module. Return codes default to 0.
type Module struct {
	CreateCode   atomic.Int32
	DestroyCode  atomic.Int32
	ProcessCode  atomic.Int32
	ControlCode  atomic.Int32
	VersionsCode atomic.Int32

	// Version is written by GetVersions.
	Version string

	// Transform, if set, is applied to the output buffer by Process.
	Transform func(buf []byte)
	// ProcessHook, if set, runs inside Process before the buffer is touched.
	ProcessHook func(h lvacfs.Handle)

	mu         sync.Mutex
	calls      map[lvacfs.Capability]int
	live       map[lvacfs.Handle]bool
	next       lvacfs.Handle
	paramsPath string
	frames     []uint32
	lastStatus []byte
	sources    []lvacfs.AudioSource
	rates      []uint64
	channels   []uint32
	zoom       float32
	angle      int32
	profile    int32
	direction  lvacfs.AudioDirection
	orient     lvacfs.DeviceOrientation
	misuse     int

	inProcess     map[lvacfs.Handle]int
	overlaps      int
	concurrent    int
	maxConcurrent int
}

// NewModule returns a module whose calls all succeed.
func NewModule() *Module {
	return &Module{
		Version:   "lvacfs-stub 1.0.0",
		calls:     make(map[lvacfs.Capability]int),
		live:      make(map[lvacfs.Handle]bool),
		inProcess: make(map[lvacfs.Handle]int),
	}
}

func (m *Module) record(c lvacfs.Capability) {
	m.calls[c]++
}

// CreateInstance implements lvacfs.Module.
func (m *Module) CreateInstance(h *lvacfs.Handle, source lvacfs.AudioSource, sampleRateAndFormat uint64, channels uint32) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(lvacfs.CapCreateInstance)
	m.sources = append(m.sources, source)
	m.rates = append(m.rates, sampleRateAndFormat)
	m.channels = append(m.channels, channels)

	if code := m.CreateCode.Load(); code < 0 {
		return code
	}
	m.next++
	*h = m.next
	m.live[*h] = true
	return 0
}

// DestroyInstance implements lvacfs.Module.
func (m *Module) DestroyInstance(h *lvacfs.Handle) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(lvacfs.CapDestroyInstance)
	if h == nil || !m.live[*h] {
		m.misuse++
		return ErrInvalidHandle
	}
	delete(m.live, *h)
	return m.DestroyCode.Load()
}

// Process implements lvacfs.Module.
func (m *Module) Process(h *lvacfs.Handle, in, out []byte, frames uint32, status []byte) int32 {
	m.mu.Lock()
	m.record(lvacfs.CapProcess)
	if h == nil || !m.live[*h] {
		m.misuse++
		m.mu.Unlock()
		return ErrInvalidHandle
	}
	handle := *h
	m.inProcess[handle]++
	if m.inProcess[handle] > 1 {
		m.overlaps++
	}
	m.concurrent++
	m.maxConcurrent = max(m.maxConcurrent, m.concurrent)
	m.frames = append(m.frames, frames)
	m.lastStatus = slices.Clone(status)
	hook, transform := m.ProcessHook, m.Transform
	m.mu.Unlock()

	if hook != nil {
		hook(handle)
	}
	if transform != nil {
		copy(out, in)
		transform(out)
	}

	m.mu.Lock()
	m.inProcess[handle]--
	m.concurrent--
	m.mu.Unlock()

	return m.ProcessCode.Load()
}

func (m *Module) control(c lvacfs.Capability, h *lvacfs.Handle, apply func()) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(c)
	if h == nil || !m.live[*h] {
		m.misuse++
		return ErrInvalidHandle
	}
	if code := m.ControlCode.Load(); code < 0 {
		return code
	}
	apply()
	return 0
}

// UpdateZoomInfo implements lvacfs.Module.
func (m *Module) UpdateZoomInfo(h *lvacfs.Handle, zoom float32) int32 {
	return m.control(lvacfs.CapUpdateZoomInfo, h, func() { m.zoom = zoom })
}

// UpdateAngleInfo implements lvacfs.Module.
func (m *Module) UpdateAngleInfo(h *lvacfs.Handle, angle int32) int32 {
	return m.control(lvacfs.CapUpdateAngleInfo, h, func() { m.angle = angle })
}

// SetParamsFilePath implements lvacfs.Module.
func (m *Module) SetParamsFilePath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(lvacfs.CapSetParamsFilePath)
	m.paramsPath = path
}

// SetProfile implements lvacfs.Module.
func (m *Module) SetProfile(h *lvacfs.Handle, profile int32) int32 {
	return m.control(lvacfs.CapSetProfile, h, func() { m.profile = profile })
}

// SetAudioDirection implements lvacfs.Module.
func (m *Module) SetAudioDirection(h *lvacfs.Handle, direction lvacfs.AudioDirection) int32 {
	return m.control(lvacfs.CapSetAudioDirection, h, func() { m.direction = direction })
}

// SetDeviceOrientation implements lvacfs.Module.
func (m *Module) SetDeviceOrientation(h *lvacfs.Handle, orientation lvacfs.DeviceOrientation) int32 {
	return m.control(lvacfs.CapSetDeviceOrientation, h, func() { m.orient = orientation })
}

// GetVersions implements lvacfs.Module.
func (m *Module) GetVersions(buf []byte) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(lvacfs.CapGetVersions)
	if code := m.VersionsCode.Load(); code < 0 {
		return code
	}
	n := copy(buf, m.Version)
	if n < len(buf) {
		buf[n] = 0
	}
	return 0
}

// Calls returns how many times an entry point was invoked.
func (m *Module) Calls(c lvacfs.Capability) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[c]
}

// LiveInstances returns the number of created but not destroyed instances.
func (m *Module) LiveInstances() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Misuse counts calls made with a handle the module never created.
func (m *Module) Misuse() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.misuse
}

// ParamsPath returns the last params path pushed into the module.
func (m *Module) ParamsPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paramsPath
}

// Frames returns the frame counts of every process call so far.
func (m *Module) Frames() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.frames)
}

// LastStatus returns a copy of the status region seen by the most recent process call.
func (m *Module) LastStatus() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.lastStatus)
}

// LastCreate returns the arguments of the most recent create call.
func (m *Module) LastCreate() (source lvacfs.AudioSource, sampleRateAndFormat uint64, channels uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sources) == 0 {
		return 0, 0, 0
	}
	i := len(m.sources) - 1
	return m.sources[i], m.rates[i], m.channels[i]
}

// Overlaps counts process calls that ran while another call on the same handle was in flight.
func (m *Module) Overlaps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlaps
}

// MaxConcurrent returns the highest number of process calls in flight at once.
func (m *Module) MaxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxConcurrent
}

// Controls returns the last applied control values.
func (m *Module) Controls() (zoom float32, angle, profile int32, direction lvacfs.AudioDirection, orientation lvacfs.DeviceOrientation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom, m.angle, m.profile, m.direction, m.orient
}

// Library is an in-memory lvacfs.Library serving one Module.
type Library struct {
	path    string
	module  *Module
	missing []string

	// CloseErr is returned by Close when set.
	CloseErr error

	mu     sync.Mutex
	binds  int
	closes int
}

// NewLibrary returns a library at path exporting every entry point except the missing ones.
func NewLibrary(path string, m *Module, missing ...string) *Library {
	return &Library{path: path, module: m, missing: missing}
}

// Path implements lvacfs.Library.
func (l *Library) Path() string {
	return l.path
}

// Bind implements lvacfs.Library with the same all-or-nothing resolution as the real loader.
func (l *Library) Bind() (lvacfs.Module, error) {
	l.mu.Lock()
	l.binds++
	l.mu.Unlock()

	_, err := lvacfs.ResolveSymbols(l.path, func(symbol string) (uintptr, error) {
		if slices.Contains(l.missing, symbol) {
			return 0, fmt.Errorf("undefined symbol: %s", symbol)
		}
		return 1, nil
	})
	if err != nil {
		return nil, err
	}
	return l.module, nil
}

// Close implements lvacfs.Library.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closes++
	return l.CloseErr
}

// Binds returns how many times Bind was called.
func (l *Library) Binds() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.binds
}

// Closes returns how many times Close was called.
func (l *Library) Closes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

// Loader is an in-memory lvacfs.Loader. Paths without a registered library fail
// with lvacfs.ErrModuleNotFound.
type Loader struct {
	mu     sync.Mutex
	libs   map[string]*Library
	opened []string
}

// NewLoader returns a loader serving the given libraries by their paths.
func NewLoader(libs ...*Library) *Loader {
	l := &Loader{libs: make(map[string]*Library)}
	for _, lib := range libs {
		l.libs[lib.Path()] = lib
	}
	return l
}

// Open implements lvacfs.Loader.
func (l *Loader) Open(path string) (lvacfs.Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.opened = append(l.opened, path)
	lib, ok := l.libs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", lvacfs.ErrModuleNotFound, path)
	}
	return lib, nil
}

// Opened returns every path passed to Open, in order.
func (l *Loader) Opened() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.opened)
}
