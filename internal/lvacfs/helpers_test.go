package lvacfs_test

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
	"github.com/tphakala/lvacfs-go/internal/lvacfs/lvacfstest"
	"github.com/tphakala/lvacfs-go/internal/observability/metrics"
)

var (
	overlayLib = "/odm/lib64/" + lvacfs.DefaultLibraryName
	vendorLib  = "/vendor/lib64/" + lvacfs.DefaultLibraryName
)

// testLocations pins the 64-bit layout so tests do not depend on the host word size.
func testLocations() lvacfs.Locations {
	return lvacfs.Locations{
		ParamsOverlayDir: lvacfs.DefaultParamsOverlayDir,
		ParamsVendorDir:  lvacfs.DefaultParamsVendorDir,
		LibOverlayDir:    "/odm/lib64",
		LibVendorDir:     "/vendor/lib64",
		LibraryName:      lvacfs.DefaultLibraryName,
	}
}

// eventLog collects observer events.
type eventLog struct {
	mu     sync.Mutex
	events []lvacfs.Event
}

func (l *eventLog) Observe(ev lvacfs.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) kinds() []lvacfs.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]lvacfs.EventKind, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fixture struct {
	fs       afero.Fs
	module   *lvacfstest.Module
	library  *lvacfstest.Library
	loader   *lvacfstest.Loader
	recorder *metrics.TestRecorder
	events   *eventLog
	engine   *lvacfs.Engine
}

type fixtureOpts struct {
	paramsDirs []string
	libPath    string
	missing    []string
	logOut     io.Writer
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()

	if opts.paramsDirs == nil {
		opts.paramsDirs = []string{lvacfs.DefaultParamsOverlayDir}
	}
	if opts.libPath == "" {
		opts.libPath = overlayLib
	}
	if opts.logOut == nil {
		opts.logOut = io.Discard
	}

	fs := afero.NewMemMapFs()
	for _, dir := range opts.paramsDirs {
		require.NoError(t, fs.MkdirAll(dir, 0o755))
	}

	f := &fixture{
		fs:       fs,
		module:   lvacfstest.NewModule(),
		recorder: metrics.NewTestRecorder(),
		events:   &eventLog{},
	}
	f.library = lvacfstest.NewLibrary(opts.libPath, f.module, opts.missing...)
	f.loader = lvacfstest.NewLoader(f.library)
	f.engine = lvacfs.NewEngine(
		lvacfs.WithFs(fs),
		lvacfs.WithLoader(f.loader),
		lvacfs.WithLocations(testLocations()),
		lvacfs.WithLogger(logger.NewSlogLogger(opts.logOut, logger.LogLevelDebug, time.UTC)),
		lvacfs.WithRecorder(f.recorder),
		lvacfs.WithObserver(f.events),
	)
	return f
}

// readyFixture returns a fixture whose engine initialized successfully.
func readyFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Init())
	t.Cleanup(func() { _ = f.engine.Deinit() })
	return f
}

func stereoStream(id string) *lvacfs.InputStream {
	return lvacfs.NewInputStream(id, lvacfs.StreamConfig{
		Source:      lvacfs.SourceCamcorder,
		ChannelMask: lvacfs.ChannelInStereo,
		SampleRate:  48000,
		Format:      lvacfs.FormatPCM16,
	})
}

func monoStream(id string) *lvacfs.InputStream {
	return lvacfs.NewInputStream(id, lvacfs.StreamConfig{
		Source:      lvacfs.SourceMic,
		ChannelMask: lvacfs.ChannelInMono,
		SampleRate:  16000,
		Format:      lvacfs.FormatPCM16,
	})
}
