package analysis

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/lvacfs-go/internal/lvacfs"
	"github.com/tphakala/lvacfs-go/internal/lvacfs/lvacfstest"
	"github.com/tphakala/lvacfs-go/internal/myaudio"
)

func writeTestWAV(t *testing.T, frames, channels, sampleRate int) (string, []byte) {
	t.Helper()

	data := make([]byte, frames*channels*2)
	for i := 0; i < len(data)/2; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(i%2000-1000))) //nolint:gosec // test pattern
	}
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, myaudio.SavePCMDataToWAV(path, &myaudio.PCM{Data: data, SampleRate: sampleRate, Channels: channels}))
	return path, data
}

func invert(buf []byte) {
	for i := range buf {
		buf[i] ^= 0xFF
	}
}

func TestFileProcessing(t *testing.T) {
	t.Parallel()

	input, original := writeTestWAV(t, 1000, 2, 16000)
	output := filepath.Join(t.TempDir(), "out.wav")

	module := lvacfstest.NewModule()
	module.Transform = invert
	opts, lib := lvacfstest.Options(module)

	settings := testSettings(t)
	settings.Stream.PeriodFrames = 160
	settings.Stream.Profile = 3
	settings.Stream.Zoom = 1.5

	res, err := FileProcessing(context.Background(), settings, input, output, WithEngineOptions(opts...))
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), res.Frames)
	assert.Equal(t, 16000, res.SampleRate)
	assert.Equal(t, 2, res.Channels)
	assert.NotEmpty(t, res.StreamID)
	assert.Equal(t, []uint32{160, 160, 160, 160, 160, 160, 40}, module.Frames())

	_, rateAndFormat, channels := module.LastCreate()
	assert.Equal(t, uint64(16000), rateAndFormat)
	assert.Equal(t, uint32(0x00020002), channels)

	zoom, _, profile, direction, orientation := module.Controls()
	assert.InDelta(t, 1.5, zoom, 0)
	assert.Equal(t, int32(3), profile)
	assert.Equal(t, lvacfs.DirectionFront, direction)
	assert.Equal(t, lvacfs.Orientation0, orientation)

	assert.Zero(t, module.LiveInstances())
	assert.Zero(t, module.Misuse())
	assert.Equal(t, 1, lib.Closes(), "engine is deinitialized")

	processed, err := myaudio.ReadWAVFile(output)
	require.NoError(t, err)
	want := append([]byte(nil), original...)
	invert(want)
	assert.Equal(t, want, processed.Data)
}

func TestFileProcessingSkipsUnsetControls(t *testing.T) {
	t.Parallel()

	input, _ := writeTestWAV(t, 320, 1, 48000)
	module := lvacfstest.NewModule()
	opts, _ := lvacfstest.Options(module)

	settings := testSettings(t)
	_, err := FileProcessing(context.Background(), settings, input, filepath.Join(t.TempDir(), "out.wav"), WithEngineOptions(opts...))
	require.NoError(t, err)

	assert.Zero(t, module.Calls(lvacfs.CapSetProfile))
	assert.Zero(t, module.Calls(lvacfs.CapUpdateZoomInfo))
	assert.Equal(t, 1, module.Calls(lvacfs.CapSetAudioDirection))
	assert.Equal(t, 1, module.Calls(lvacfs.CapSetDeviceOrientation))
}

func TestFileProcessingKeepsSessionOnRejectedControl(t *testing.T) {
	t.Parallel()

	input, _ := writeTestWAV(t, 480, 2, 48000)
	module := lvacfstest.NewModule()
	module.ControlCode.Store(-2)
	opts, _ := lvacfstest.Options(module)

	res, err := FileProcessing(context.Background(), testSettings(t), input, filepath.Join(t.TempDir(), "out.wav"), WithEngineOptions(opts...))
	require.NoError(t, err)
	assert.Equal(t, uint64(480), res.Frames)
}

func TestFileProcessingFailures(t *testing.T) {
	t.Parallel()

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()
		module := lvacfstest.NewModule()
		opts, _ := lvacfstest.Options(module)
		_, err := FileProcessing(context.Background(), testSettings(t), filepath.Join(t.TempDir(), "nope.wav"), "out.wav", WithEngineOptions(opts...))
		require.Error(t, err)
		assert.Zero(t, module.Calls(lvacfs.CapCreateInstance))
	})

	t.Run("inert engine", func(t *testing.T) {
		t.Parallel()
		input, _ := writeTestWAV(t, 480, 2, 48000)
		module := lvacfstest.NewModule()
		opts, _ := lvacfstest.Options(module)
		opts = append(opts, lvacfs.WithFs(afero.NewMemMapFs()))

		_, err := FileProcessing(context.Background(), testSettings(t), input, filepath.Join(t.TempDir(), "out.wav"), WithEngineOptions(opts...))
		require.ErrorIs(t, err, lvacfs.ErrPathNotFound)
	})

	t.Run("process failure", func(t *testing.T) {
		t.Parallel()
		input, _ := writeTestWAV(t, 960, 2, 48000)
		output := filepath.Join(t.TempDir(), "out.wav")
		module := lvacfstest.NewModule()
		module.ProcessCode.Store(-1)
		opts, _ := lvacfstest.Options(module)

		_, err := FileProcessing(context.Background(), testSettings(t), input, output, WithEngineOptions(opts...))
		require.ErrorIs(t, err, lvacfs.ErrProcess)
		assert.Equal(t, 1, module.Calls(lvacfs.CapProcess), "session is gone after the first failure")
		assert.Zero(t, module.LiveInstances())
		assert.NoFileExists(t, output)
	})
}
