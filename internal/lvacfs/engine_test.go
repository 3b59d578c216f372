package lvacfs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
	"github.com/tphakala/lvacfs-go/internal/observability/metrics"
)

// assertInert checks the post-state of a failed Init: nothing loaded, nothing callable.
func assertInert(t *testing.T, f *fixture) {
	t.Helper()

	assert.Equal(t, lvacfs.StateInert, f.engine.State())
	assert.False(t, f.engine.Ready())
	assert.Empty(t, f.engine.ConfigPath())
	assert.Empty(t, f.engine.LibraryPath())

	in := stereoStream("inert")
	require.ErrorIs(t, f.engine.StartInputStream(in), lvacfs.ErrNotReady)
	require.ErrorIs(t, f.engine.ProcessInputStream(in, make([]byte, 3200)), lvacfs.ErrNotReady)
	require.ErrorIs(t, f.engine.StopInputStream(in), lvacfs.ErrNotReady)
	_, err := f.engine.Versions()
	require.ErrorIs(t, err, lvacfs.ErrNotReady)

	for _, c := range lvacfs.Capabilities() {
		assert.Zero(t, f.module.Calls(c), c.Symbol())
	}
}

func TestInitSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOpts{
		paramsDirs: []string{lvacfs.DefaultParamsOverlayDir, lvacfs.DefaultParamsVendorDir},
	})
	require.NoError(t, f.engine.Init())

	assert.Equal(t, lvacfs.StateReady, f.engine.State())
	assert.True(t, f.engine.Ready())
	assert.Equal(t, lvacfs.DefaultParamsOverlayDir, f.engine.ConfigPath())
	assert.Equal(t, overlayLib, f.engine.LibraryPath())
	assert.Equal(t, []string{overlayLib}, f.loader.Opened())
	assert.Equal(t, 1, f.library.Binds())
	assert.Equal(t, 1, f.recorder.GetOperationCount(metrics.OpInit, metrics.StatusSuccess))
	assert.Equal(t, []lvacfs.EventKind{lvacfs.EventEngineReady}, f.events.kinds())

	st := f.engine.Status()
	assert.Equal(t, "ready", st.State)
	assert.True(t, st.Ready)
	assert.Empty(t, st.LastError)

	require.NoError(t, f.engine.Deinit())
	assert.Equal(t, 1, f.library.Closes())
}

func TestInitFallsBackToVendor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOpts{
		paramsDirs: []string{lvacfs.DefaultParamsVendorDir},
		libPath:    vendorLib,
	})
	require.NoError(t, f.engine.Init())
	t.Cleanup(func() { _ = f.engine.Deinit() })

	assert.Equal(t, lvacfs.DefaultParamsVendorDir, f.engine.ConfigPath())
	assert.Equal(t, vendorLib, f.engine.LibraryPath())
	assert.Equal(t, []string{overlayLib, vendorLib}, f.loader.Opened())
}

func TestInitWithoutParamsDirectory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOpts{paramsDirs: []string{}})
	err := f.engine.Init()

	require.ErrorIs(t, err, lvacfs.ErrPathNotFound)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Empty(t, f.loader.Opened(), "module must not be loaded without params")
	assertInert(t, f)
	assert.NotEmpty(t, f.engine.Status().LastError)
	assert.Equal(t, 1, f.recorder.GetOperationCount(metrics.OpInit, metrics.StatusInert))
	assert.Equal(t, []lvacfs.EventKind{lvacfs.EventEngineInert}, f.events.kinds())
}

func TestInitWithoutModuleBinary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOpts{libPath: "/somewhere/else.so"})
	err := f.engine.Init()

	require.ErrorIs(t, err, lvacfs.ErrModuleNotFound)
	assert.True(t, errors.IsCategory(err, errors.CategoryModuleLoad))
	assert.Equal(t, []string{overlayLib, vendorLib}, f.loader.Opened())
	assert.Zero(t, f.library.Binds())
	assertInert(t, f)
}

func TestInitWithMissingSymbol(t *testing.T) {
	t.Parallel()

	for _, c := range lvacfs.Capabilities() {
		t.Run(c.Symbol(), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, fixtureOpts{missing: []string{c.Symbol()}})
			err := f.engine.Init()

			require.ErrorIs(t, err, lvacfs.ErrCapabilityIncomplete)
			assert.Contains(t, err.Error(), c.Symbol())
			assert.Equal(t, 1, f.library.Closes(), "partially bound module must be unloaded")
			assertInert(t, f)
			assert.Equal(t, 1, f.recorder.GetErrorCount(metrics.OpInit, string(errors.CategoryCapability)))
		})
	}
}

func TestInitTwiceIsRejected(t *testing.T) {
	t.Parallel()

	f := readyFixture(t)
	err := f.engine.Init()
	require.ErrorIs(t, err, lvacfs.ErrAlreadyInitialized)
	assert.Equal(t, lvacfs.StateReady, f.engine.State())
	assert.Equal(t, 1, f.library.Binds())

	inert := newFixture(t, fixtureOpts{paramsDirs: []string{}})
	require.Error(t, inert.engine.Init())
	require.ErrorIs(t, inert.engine.Init(), lvacfs.ErrAlreadyInitialized)
	assert.Equal(t, lvacfs.StateInert, inert.engine.State())
}

func TestDeinitIsIdempotent(t *testing.T) {
	t.Parallel()

	t.Run("never initialized", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, fixtureOpts{})
		require.NoError(t, f.engine.Deinit())
		require.NoError(t, f.engine.Deinit())
		assert.Equal(t, lvacfs.StateUninitialized, f.engine.State())
		assert.Empty(t, f.events.kinds())
	})

	t.Run("inert", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, fixtureOpts{missing: []string{"lvacfs_wrapper_Process"}})
		require.Error(t, f.engine.Init())
		require.NoError(t, f.engine.Deinit())
		require.NoError(t, f.engine.Deinit())
		assert.Equal(t, lvacfs.StateUninitialized, f.engine.State())
		assert.Equal(t, 1, f.library.Closes(), "already unloaded by init")
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, fixtureOpts{})
		require.NoError(t, f.engine.Init())
		require.NoError(t, f.engine.Deinit())
		require.NoError(t, f.engine.Deinit())
		assert.Equal(t, 1, f.library.Closes())
		assert.False(t, f.engine.Ready())
		assert.Equal(t, []lvacfs.EventKind{lvacfs.EventEngineReady, lvacfs.EventEngineDeinit}, f.events.kinds())
	})
}

func TestDeinitLogsOnlyRealTransitions(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	f := newFixture(t, fixtureOpts{missing: []string{"lvacfs_wrapper_Process"}, logOut: &out})
	require.Error(t, f.engine.Init())
	assert.Contains(t, out.String(), `"msg":"initialization failed, engine inert"`)
	assert.NotContains(t, out.String(), `"msg":"deinitialized"`, "unloading after a failed bind is part of init")

	require.NoError(t, f.engine.Deinit())
	require.NoError(t, f.engine.Deinit())
	assert.Equal(t, 1, strings.Count(out.String(), `"msg":"deinitialized"`))
}

func TestReinitAfterDeinit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOpts{})
	require.NoError(t, f.engine.Init())
	require.NoError(t, f.engine.Deinit())
	require.NoError(t, f.engine.Init())
	t.Cleanup(func() { _ = f.engine.Deinit() })

	assert.Equal(t, lvacfs.StateReady, f.engine.State())
	assert.Equal(t, 2, f.library.Binds())
}

func TestDeinitReportsUnloadFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, fixtureOpts{})
	f.library.CloseErr = errors.NewStd("dlclose failed")
	require.NoError(t, f.engine.Init())

	require.Error(t, f.engine.Deinit())
	assert.Equal(t, lvacfs.StateUninitialized, f.engine.State())
	require.NoError(t, f.engine.Deinit())
}

func TestVersions(t *testing.T) {
	t.Parallel()

	f := readyFixture(t)
	v, err := f.engine.Versions()
	require.NoError(t, err)
	assert.Equal(t, "lvacfs-stub 1.0.0", v)

	f.module.VersionsCode.Store(-5)
	_, err = f.engine.Versions()
	require.ErrorIs(t, err, lvacfs.ErrControl)

	var rc *lvacfs.ReturnCodeError
	require.ErrorAs(t, err, &rc)
	assert.Equal(t, int32(-5), rc.Code)
}
