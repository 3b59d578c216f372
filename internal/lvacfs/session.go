package lvacfs

import (
	"time"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/observability/metrics"
)

// StartInputStream creates a module instance for the stream. On a negative return
// code the session is torn down and ErrInstanceCreate is returned; the stream is then
// in the same state as one that was never started.
func (e *Engine) StartInputStream(in *InputStream) error {
	b := e.bound.Load()
	if b == nil {
		e.recorder.RecordOperation(metrics.OpSessionStart, metrics.StatusSkipped)
		return newStateError(ErrNotReady, "start")
	}

	channels := in.Config.Channels()
	if channels == 0 {
		return errors.Newf("channel mask %#x selects no channels", uint32(in.Config.ChannelMask)).
			Component(componentName).
			Category(errors.CategoryValidation).
			Operation("start").
			Stream(in.ID).
			Build()
	}

	s := &in.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		return errors.New(ErrSessionActive).
			Component(componentName).
			Category(errors.CategoryState).
			Operation("start").
			Stream(in.ID).
			Build()
	}

	s.handle = new(Handle)
	s.channels = channels
	s.format = in.Config.Format
	s.frames = 0

	b.module.SetParamsFilePath(b.configPath)

	start := time.Now()
	ret := b.module.CreateInstance(s.handle, in.Config.Source,
		SampleRateAndFormat(in.Config.SampleRate), PackChannels(channels))
	e.recorder.RecordDuration(metrics.OpSessionStart, time.Since(start).Seconds())

	if ret < 0 {
		err := newCodeError(ErrInstanceCreate, errors.CategoryInstanceCreate, "create_instance", ret,
			"stream_id", in.ID,
			"source", in.Config.Source.String(),
			"sample_rate", in.Config.SampleRate,
			"channels", channels)
		e.log.Error("create instance failed",
			logger.StreamID(in.ID),
			logger.Code(ret),
			logger.Int("channels", channels),
			logger.Uint64("sample_rate", uint64(in.Config.SampleRate)))
		e.recorder.RecordOperation(metrics.OpSessionStart, metrics.StatusError)
		e.recorder.RecordError(metrics.OpSessionStart, string(errors.CategoryInstanceCreate))
		e.teardown(b.module, in)
		e.notify(Event{Kind: EventSessionFailed, StreamID: in.ID, Code: ret, Err: err})
		return err
	}

	s.created = true
	e.activeSessions.Add(1)
	e.recorder.RecordOperation(metrics.OpSessionStart, metrics.StatusSuccess)
	e.log.Debug("stream session started",
		logger.StreamID(in.ID),
		logger.String("source", in.Config.Source.String()),
		logger.Int("channels", channels),
		logger.Uint64("sample_rate", uint64(in.Config.SampleRate)),
		logger.String("format", in.Config.Format.String()))
	e.notify(Event{Kind: EventSessionStarted, StreamID: in.ID})
	return nil
}

// StopInputStream destroys the stream's module instance and empties the session.
// Destroy failures are logged, never returned. Stopping an empty session is a no-op.
func (e *Engine) StopInputStream(in *InputStream) error {
	b := e.bound.Load()
	if b == nil {
		e.recorder.RecordOperation(metrics.OpSessionStop, metrics.StatusSkipped)
		return newStateError(ErrNotReady, "stop")
	}

	s := &in.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		e.log.Debug("stop on empty session", logger.StreamID(in.ID))
		return nil
	}

	e.teardown(b.module, in)
	e.notify(Event{Kind: EventSessionStopped, StreamID: in.ID})
	return nil
}

// ProcessInputStream runs the module over buf in place. The buffer length must be a
// whole number of frames for the format and channel count the session was started with.
// A negative return code tears the session down and returns ErrProcess; the buffer then
// holds whatever the module left in it.
func (e *Engine) ProcessInputStream(in *InputStream, buf []byte) error {
	b := e.bound.Load()
	if b == nil {
		return newStateError(ErrNotReady, "process")
	}

	s := &in.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return newStateError(ErrNoSession, "process")
	}

	frames, err := FrameCount(len(buf), s.channels, s.format)
	if err != nil {
		e.recorder.RecordError(metrics.OpProcess, string(errors.CategoryValidation))
		return err
	}

	clear(s.status[:])
	start := time.Now()
	ret := b.module.Process(s.handle, buf, buf, uint32(frames), s.status[:])
	e.recorder.RecordDuration(metrics.OpProcess, time.Since(start).Seconds())

	if ret < 0 {
		err := newCodeError(ErrProcess, errors.CategoryProcessing, "process", ret,
			"stream_id", in.ID,
			"frames", frames)
		e.log.Error("process failed",
			logger.StreamID(in.ID),
			logger.Code(ret),
			logger.Int("frames", frames))
		e.recorder.RecordOperation(metrics.OpProcess, metrics.StatusError)
		e.recorder.RecordError(metrics.OpProcess, string(errors.CategoryProcessing))
		e.teardown(b.module, in)
		e.notify(Event{Kind: EventSessionFailed, StreamID: in.ID, Code: ret, Err: err})
		return err
	}

	s.frames += uint64(frames)
	e.recorder.RecordOperation(metrics.OpProcess, metrics.StatusSuccess)
	return nil
}

// teardown is the single path that empties a session, shared by stop and by the
// start and process failure branches. Destroy is only called for an instance the
// module actually created. Caller holds the session lock.
func (e *Engine) teardown(m Module, in *InputStream) {
	s := &in.session
	if s.created {
		if ret := m.DestroyInstance(s.handle); ret < 0 {
			e.log.Error("destroy instance failed",
				logger.StreamID(in.ID),
				logger.Code(ret))
			e.recorder.RecordError(metrics.OpSessionStop, string(errors.CategoryInstanceDestroy))
		}
		e.activeSessions.Add(-1)
		e.recorder.RecordOperation(metrics.OpSessionStop, metrics.StatusSuccess)
	}
	s.reset()
}
