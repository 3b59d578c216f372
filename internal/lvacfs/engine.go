package lvacfs

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/observability/metrics"
)

// State is the engine lifecycle state.
type State int32

// Engine states. Inert and Ready are both terminal for Init; only Deinit leaves them.
const (
	StateUninitialized State = iota
	StateInert
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInert:
		return "inert"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// binding is the loaded module together with everything resolved for it.
// It is immutable once published.
type binding struct {
	module      Module
	configPath  string
	libraryPath string
}

// Engine owns the loaded module and exposes per-stream operations on top of it.
//
// Init and Deinit are serialized against each other but must not race in-flight
// stream operations. Stream operations on different streams never block each other.
type Engine struct {
	mu        sync.Mutex // serializes Init and Deinit
	state     atomic.Int32
	bound     atomic.Pointer[binding]
	library   Library
	lastError atomic.Pointer[string]

	loader    Loader
	resolver  *Resolver
	locations Locations
	log       logger.Logger
	recorder  metrics.Recorder
	observer  Observer

	activeSessions atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoader sets the module loader. The default is the platform dynamic loader.
func WithLoader(l Loader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithFs sets the filesystem used to resolve the params directory.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.resolver = NewResolver(fs) }
}

// WithLocations overrides the candidate locations.
func WithLocations(l Locations) Option {
	return func(e *Engine) { e.locations = l }
}

// WithLogger sets the logger. The default is the package logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an uninitialized engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		loader:    NewDynamicLoader(),
		locations: DefaultLocations(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = NewResolver(nil)
	}
	if e.log == nil {
		e.log = GetLogger()
	}
	if e.recorder == nil {
		e.recorder = metrics.NewNoOpRecorder()
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Ready reports whether stream operations are available.
func (e *Engine) Ready() bool {
	return e.bound.Load() != nil
}

// ConfigPath returns the resolved params directory, or "" when not ready.
func (e *Engine) ConfigPath() string {
	if b := e.bound.Load(); b != nil {
		return b.configPath
	}
	return ""
}

// LibraryPath returns the location the module was loaded from, or "" when not ready.
func (e *Engine) LibraryPath() string {
	if b := e.bound.Load(); b != nil {
		return b.libraryPath
	}
	return ""
}

// Init resolves the params directory, loads the module and binds every entry point.
// Any failure leaves the engine inert with nothing loaded; the returned error says
// which step failed. Init outside the uninitialized state returns ErrAlreadyInitialized.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state := e.State(); state != StateUninitialized {
		return errors.New(fmt.Errorf("init: %w", ErrAlreadyInitialized)).
			Component(componentName).
			Category(errors.CategoryState).
			Context("state", state.String()).
			Build()
	}

	start := time.Now()
	b, err := e.initLocked()
	e.recorder.RecordDuration(metrics.OpInit, time.Since(start).Seconds())

	if err != nil {
		e.state.Store(int32(StateInert))
		msg := err.Error()
		e.lastError.Store(&msg)
		e.recorder.RecordOperation(metrics.OpInit, metrics.StatusInert)
		e.recorder.RecordError(metrics.OpInit, errorType(err))
		e.log.Error("initialization failed, engine inert", logger.Error(err))
		e.notify(Event{Kind: EventEngineInert, Err: err})
		return err
	}

	e.bound.Store(b)
	e.state.Store(int32(StateReady))
	e.lastError.Store(nil)
	e.recorder.RecordOperation(metrics.OpInit, metrics.StatusSuccess)
	e.log.Info("initialized",
		logger.String("config_path", b.configPath),
		logger.String("library_path", b.libraryPath))
	e.notify(Event{Kind: EventEngineReady})
	return nil
}

func (e *Engine) initLocked() (*binding, error) {
	configPath, err := e.resolver.Resolve(e.locations.ParamsCandidates()...)
	if err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Operation("resolve_params").
			Build()
	}

	lib, err := e.openLibrary()
	if err != nil {
		return nil, err
	}
	e.library = lib

	module, err := lib.Bind()
	if err != nil {
		// Nothing half-bound may survive: unload before reporting.
		_ = e.deinitLocked()
		return nil, err
	}

	return &binding{
		module:      module,
		configPath:  configPath,
		libraryPath: lib.Path(),
	}, nil
}

// openLibrary tries each module candidate in priority order; the first load wins.
func (e *Engine) openLibrary() (Library, error) {
	candidates := e.locations.LibraryCandidates()
	var errs []error
	for _, path := range candidates {
		lib, err := e.loader.Open(path)
		if err == nil {
			return lib, nil
		}
		e.log.Debug("module load attempt failed", logger.String("path", path), logger.Error(err))
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		errs = append(errs, ErrModuleNotFound)
	}
	return nil, errors.New(errors.Join(errs...)).
		Component(componentName).
		Category(errors.CategoryModuleLoad).
		Operation("load_module").
		Context("attempts", len(candidates)).
		Build()
}

// Deinit unloads the module if one is loaded and returns the engine to the
// uninitialized state. It is safe in any state and safe to repeat.
func (e *Engine) Deinit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.State()
	err := e.deinitLocked()
	if prev != StateUninitialized {
		e.recorder.RecordOperation(metrics.OpDeinit, metrics.StatusSuccess)
		e.log.Info("deinitialized", logger.String("previous_state", prev.String()))
		e.notify(Event{Kind: EventEngineDeinit, Err: err})
	}
	return err
}

func (e *Engine) deinitLocked() error {
	e.bound.Store(nil)

	var err error
	if e.library != nil {
		err = e.library.Close()
		if err != nil {
			e.log.Error("module unload failed", logger.Error(err))
		}
		e.library = nil
	}

	e.state.Store(int32(StateUninitialized))
	e.activeSessions.Store(0)
	return err
}

// Status is a point-in-time snapshot of the engine.
type Status struct {
	State          string `json:"state"`
	Ready          bool   `json:"ready"`
	ConfigPath     string `json:"config_path,omitempty"`
	LibraryPath    string `json:"library_path,omitempty"`
	ActiveSessions int64  `json:"active_sessions"`
	LastError      string `json:"last_error,omitempty"`
}

// Status returns a snapshot suitable for status endpoints.
func (e *Engine) Status() Status {
	st := Status{
		State:          e.State().String(),
		ActiveSessions: e.activeSessions.Load(),
	}
	if b := e.bound.Load(); b != nil {
		st.Ready = true
		st.ConfigPath = b.configPath
		st.LibraryPath = b.libraryPath
	}
	if msg := e.lastError.Load(); msg != nil {
		st.LastError = *msg
	}
	return st
}

// Versions queries the module version string.
func (e *Engine) Versions() (string, error) {
	b := e.bound.Load()
	if b == nil {
		return "", newStateError(ErrNotReady, "versions")
	}

	buf := make([]byte, VersionBufferSize)
	if ret := b.module.GetVersions(buf); ret < 0 {
		e.recorder.RecordError(metrics.OpVersions, string(errors.CategoryControl))
		return "", newCodeError(ErrControl, errors.CategoryControl, "get_versions", ret)
	}
	e.recorder.RecordOperation(metrics.OpVersions, metrics.StatusSuccess)
	return cString(buf), nil
}

func (e *Engine) notify(ev Event) {
	ev.Time = time.Now()
	ev.State = e.State()
	e.observer.Observe(ev)
}

// cString returns the bytes up to the first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
