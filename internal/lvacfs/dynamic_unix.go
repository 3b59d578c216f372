//go:build linux || darwin

package lvacfs

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// DynamicLoader loads the module with the platform dynamic linker. Symbols are
// bound immediately at load time.
type DynamicLoader struct{}

// NewDynamicLoader returns the production loader.
func NewDynamicLoader() DynamicLoader {
	return DynamicLoader{}
}

// Open loads the binary at path. A missing file yields ErrModuleNotFound, any other
// loader failure ErrModuleNotLoadable.
func (DynamicLoader) Open(path string) (Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		kind := ErrModuleNotLoadable
		if unix.Access(path, unix.F_OK) != nil {
			kind = ErrModuleNotFound
		}
		return nil, errors.New(fmt.Errorf("%w: %w", kind, err)).
			Component(componentName).
			Category(errors.CategoryModuleLoad).
			ModuleContext(path).
			Build()
	}
	return &dynamicLibrary{path: path, handle: handle}, nil
}

type dynamicLibrary struct {
	path   string
	handle uintptr
}

func (l *dynamicLibrary) Path() string {
	return l.path
}

func (l *dynamicLibrary) Bind() (Module, error) {
	addrs, err := ResolveSymbols(l.path, func(symbol string) (uintptr, error) {
		return purego.Dlsym(l.handle, symbol)
	})
	if err != nil {
		return nil, err
	}

	m := &dynamicModule{paramsPaths: make(map[string][]byte)}
	purego.RegisterFunc(&m.createInstance, addrs[CapCreateInstance])
	purego.RegisterFunc(&m.destroyInstance, addrs[CapDestroyInstance])
	purego.RegisterFunc(&m.process, addrs[CapProcess])
	purego.RegisterFunc(&m.updateZoomInfo, addrs[CapUpdateZoomInfo])
	purego.RegisterFunc(&m.updateAngleInfo, addrs[CapUpdateAngleInfo])
	purego.RegisterFunc(&m.setParamsFilePath, addrs[CapSetParamsFilePath])
	purego.RegisterFunc(&m.setProfile, addrs[CapSetProfile])
	purego.RegisterFunc(&m.setAudioDirection, addrs[CapSetAudioDirection])
	purego.RegisterFunc(&m.setDeviceOrientation, addrs[CapSetDeviceOrientation])
	purego.RegisterFunc(&m.getVersions, addrs[CapGetVersions])
	return m, nil
}

func (l *dynamicLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	if err != nil {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryModuleLoad).
			ModuleContext(l.path).
			Operation("unload").
			Build()
	}
	return nil
}

// dynamicModule forwards to the resolved entry points.
type dynamicModule struct {
	createInstance       func(h *Handle, source int32, sampleRateAndFormat uint64, channels uint32) int32
	destroyInstance      func(h *Handle) int32
	process              func(h *Handle, in, out unsafe.Pointer, frames uint32, status unsafe.Pointer) int32
	updateZoomInfo       func(h *Handle, zoom float32) int32
	updateAngleInfo      func(h *Handle, angle int32) int32
	setParamsFilePath    func(path unsafe.Pointer)
	setProfile           func(h *Handle, profile int32) int32
	setAudioDirection    func(h *Handle, direction int32) int32
	setDeviceOrientation func(h *Handle, orientation int32) int32
	getVersions          func(buf unsafe.Pointer, size uint32) int32

	// The module may keep the params path pointer, so every path handed over stays referenced.
	mu          sync.Mutex
	paramsPaths map[string][]byte
}

func (m *dynamicModule) CreateInstance(h *Handle, source AudioSource, sampleRateAndFormat uint64, channels uint32) int32 {
	return m.createInstance(h, int32(source), sampleRateAndFormat, channels)
}

func (m *dynamicModule) DestroyInstance(h *Handle) int32 {
	return m.destroyInstance(h)
}

func (m *dynamicModule) Process(h *Handle, in, out []byte, frames uint32, status []byte) int32 {
	ret := m.process(h, bufferPointer(in), bufferPointer(out), frames, bufferPointer(status))
	runtime.KeepAlive(in)
	runtime.KeepAlive(out)
	runtime.KeepAlive(status)
	return ret
}

func (m *dynamicModule) UpdateZoomInfo(h *Handle, zoom float32) int32 {
	return m.updateZoomInfo(h, zoom)
}

func (m *dynamicModule) UpdateAngleInfo(h *Handle, angle int32) int32 {
	return m.updateAngleInfo(h, angle)
}

func (m *dynamicModule) SetParamsFilePath(path string) {
	m.mu.Lock()
	cstr, ok := m.paramsPaths[path]
	if !ok {
		cstr = append([]byte(path), 0)
		m.paramsPaths[path] = cstr
	}
	m.mu.Unlock()

	m.setParamsFilePath(unsafe.Pointer(&cstr[0]))
}

func (m *dynamicModule) SetProfile(h *Handle, profile int32) int32 {
	return m.setProfile(h, profile)
}

func (m *dynamicModule) SetAudioDirection(h *Handle, direction AudioDirection) int32 {
	return m.setAudioDirection(h, int32(direction))
}

func (m *dynamicModule) SetDeviceOrientation(h *Handle, orientation DeviceOrientation) int32 {
	return m.setDeviceOrientation(h, int32(orientation))
}

func (m *dynamicModule) GetVersions(buf []byte) int32 {
	ret := m.getVersions(bufferPointer(buf), uint32(len(buf)))
	runtime.KeepAlive(buf)
	return ret
}

func bufferPointer(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}
