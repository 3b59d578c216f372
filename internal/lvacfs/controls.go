package lvacfs

import (
	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/observability/metrics"
)

// UpdateZoom forwards the camera zoom ratio to the stream's instance.
func (e *Engine) UpdateZoom(in *InputStream, zoom float32) error {
	return e.control(in, "update_zoom_info", func(m Module, h *Handle) int32 {
		return m.UpdateZoomInfo(h, zoom)
	})
}

// UpdateAngle forwards the capture angle in degrees to the stream's instance.
func (e *Engine) UpdateAngle(in *InputStream, degrees int32) error {
	return e.control(in, "update_angle_info", func(m Module, h *Handle) int32 {
		return m.UpdateAngleInfo(h, degrees)
	})
}

// SetProfile selects a tuning profile from the params directory.
func (e *Engine) SetProfile(in *InputStream, profile int32) error {
	return e.control(in, "set_profile", func(m Module, h *Handle) int32 {
		return m.SetProfile(h, profile)
	})
}

// SetAudioDirection tells the instance which way the capture is facing.
func (e *Engine) SetAudioDirection(in *InputStream, direction AudioDirection) error {
	return e.control(in, "set_audio_direction", func(m Module, h *Handle) int32 {
		return m.SetAudioDirection(h, direction)
	})
}

// SetDeviceOrientation tells the instance how the device is rotated.
func (e *Engine) SetDeviceOrientation(in *InputStream, orientation DeviceOrientation) error {
	return e.control(in, "set_device_orientation", func(m Module, h *Handle) int32 {
		return m.SetDeviceOrientation(h, orientation)
	})
}

// control runs one control update under the session lock. A rejected update is
// reported but leaves the session intact.
func (e *Engine) control(in *InputStream, op string, call func(Module, *Handle) int32) error {
	b := e.bound.Load()
	if b == nil {
		return newStateError(ErrNotReady, op)
	}

	s := &in.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil || !s.created {
		return newStateError(ErrNoSession, op)
	}

	if ret := call(b.module, s.handle); ret < 0 {
		err := newCodeError(ErrControl, errors.CategoryControl, op, ret, "stream_id", in.ID)
		e.log.Warn("control update rejected",
			logger.StreamID(in.ID),
			logger.String("operation", op),
			logger.Code(ret))
		e.recorder.RecordOperation(metrics.OpControl, metrics.StatusError)
		e.recorder.RecordError(metrics.OpControl, string(errors.CategoryControl))
		e.notify(Event{Kind: EventControlRejected, StreamID: in.ID, Code: ret, Err: err})
		return err
	}

	e.recorder.RecordOperation(metrics.OpControl, metrics.StatusSuccess)
	return nil
}
