package myaudio

import (
	"context"
	"runtime"
	"strconv"
	"strings"

	"github.com/gen2brain/malgo"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// AudioDeviceInfo holds information about an audio device.
type AudioDeviceInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	ID    string `json:"id"`
}

// CaptureConfig selects and configures the capture device.
type CaptureConfig struct {
	// Device is a device index, ID or case-insensitive name fragment. Empty selects the default device.
	Device       string
	SampleRate   int
	Channels     int
	PeriodFrames int
	// Format is the sample encoding delivered to onData. Zero means PCM16.
	Format lvacfs.Format
}

// CaptureFormat returns the device sample format that delivers samples encoded as f.
func CaptureFormat(f lvacfs.Format) (malgo.FormatType, error) {
	switch f {
	case lvacfs.FormatPCM8:
		return malgo.FormatU8, nil
	case lvacfs.FormatPCM16, lvacfs.FormatInvalid:
		return malgo.FormatS16, nil
	case lvacfs.FormatPCM24Packed:
		return malgo.FormatS24, nil
	case lvacfs.FormatPCM32:
		return malgo.FormatS32, nil
	case lvacfs.FormatFloat:
		return malgo.FormatF32, nil
	default:
		return malgo.FormatUnknown, errors.Newf("sample format %s cannot be captured", f).
			Component("audio").
			Category(errors.CategoryValidation).
			Context("format", f.String()).
			Build()
	}
}

// captureBackends returns the backend list for the current OS; nil lets miniaudio choose.
func captureBackends() []malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		return []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		return []malgo.Backend{malgo.BackendCoreaudio}
	default:
		return nil
	}
}

// ListAudioSources returns a list of available audio capture devices.
func ListAudioSources() ([]AudioDeviceInfo, error) {
	ctx, err := malgo.InitContext(captureBackends(), malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, captureError(err, "init-context")
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, captureError(err, "list-devices")
	}

	devices := make([]AudioDeviceInfo, 0, len(infos))
	for i := range infos {
		devices = append(devices, AudioDeviceInfo{
			Index: i,
			Name:  infos[i].Name(),
			ID:    infos[i].ID.String(),
		})
	}
	return devices, nil
}

// selectDevice returns the index of the device matching want, or -1 for the default device.
func selectDevice(devices []AudioDeviceInfo, want string) (int, error) {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, "default") {
		return -1, nil
	}
	if idx, err := strconv.Atoi(want); err == nil {
		if idx >= 0 && idx < len(devices) {
			return idx, nil
		}
	}
	for _, d := range devices {
		if d.ID == want {
			return d.Index, nil
		}
	}
	lower := strings.ToLower(want)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), lower) {
			return d.Index, nil
		}
	}
	return 0, errors.Newf("no capture device matches %q", want).
		Component("audio").
		Category(errors.CategoryAudioSource).
		Context("device_count", len(devices)).
		Build()
}

// CaptureAudio captures interleaved samples in cfg.Format from the configured device and passes each
// callback chunk to onData until ctx is done. onData runs on the audio thread and must
// not block.
func CaptureAudio(ctx context.Context, cfg CaptureConfig, onData func([]byte)) error {
	log := GetLogger()

	malgoCtx, err := malgo.InitContext(captureBackends(), malgo.ContextConfig{}, func(message string) {
		log.Debug("miniaudio", logger.String("message", strings.TrimSpace(message)))
	})
	if err != nil {
		return captureError(err, "init-context")
	}
	defer func() {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
	}()

	format, err := CaptureFormat(cfg.Format)
	if err != nil {
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = format
	deviceConfig.Capture.Channels = uint32(cfg.Channels)       //nolint:gosec // G115: validated channel count
	deviceConfig.SampleRate = uint32(cfg.SampleRate)           //nolint:gosec // G115: validated sample rate
	deviceConfig.PeriodSizeInFrames = uint32(cfg.PeriodFrames) //nolint:gosec // G115: validated period size
	deviceConfig.Alsa.NoMMap = 1

	infos, err := malgoCtx.Devices(malgo.Capture)
	if err != nil {
		return captureError(err, "list-devices")
	}
	devices := make([]AudioDeviceInfo, len(infos))
	for i := range infos {
		devices[i] = AudioDeviceInfo{Index: i, Name: infos[i].Name(), ID: infos[i].ID.String()}
	}
	idx, err := selectDevice(devices, cfg.Device)
	if err != nil {
		return err
	}
	name := "default"
	if idx >= 0 {
		deviceConfig.Capture.DeviceID = infos[idx].ID.Pointer()
		name = devices[idx].Name
	}

	stopped := make(chan struct{}, 1)
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			onData(input)
		},
		Stop: func() {
			select {
			case stopped <- struct{}{}:
			default:
			}
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return captureError(err, "init-device")
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return captureError(err, "start-device")
	}
	log.Info("capture started",
		logger.String("device", name),
		logger.Int("sample_rate", cfg.SampleRate),
		logger.Int("channels", cfg.Channels))

	select {
	case <-ctx.Done():
		_ = device.Stop()
		log.Info("capture stopped", logger.String("device", name))
		return nil
	case <-stopped:
		return errors.Newf("capture device stopped unexpectedly").
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("device", name).
			Build()
	}
}

func captureError(err error, op string) error {
	return errors.New(err).
		Component("audio").
		Category(errors.CategoryAudioSource).
		Operation(op).
		Build()
}
