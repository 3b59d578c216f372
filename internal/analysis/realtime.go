package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/lvacfs-go/internal/buildinfo"
	"github.com/tphakala/lvacfs-go/internal/conf"
	"github.com/tphakala/lvacfs-go/internal/diagnostics"
	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/events"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
	"github.com/tphakala/lvacfs-go/internal/mqtt"
	"github.com/tphakala/lvacfs-go/internal/myaudio"
	"github.com/tphakala/lvacfs-go/internal/observability"
)

const (
	// defaultBufferPeriods is how many periods the capture buffer holds.
	defaultBufferPeriods = 32
	// busShutdownTimeout bounds delivery of the final lifecycle events.
	busShutdownTimeout = 5 * time.Second
	// debugReportTimeout bounds host sampling for a failure report.
	debugReportTimeout = 3 * time.Second
)

// RealtimeStatus is served on the telemetry /status endpoint.
type RealtimeStatus struct {
	Version  string        `json:"version"`
	SystemID string        `json:"system_id"`
	Engine   lvacfs.Status `json:"engine"`
	StreamID string        `json:"stream_id,omitempty"`
	Frames   uint64        `json:"frames_processed"`
	Dropped  uint64        `json:"chunks_dropped"`
	Level    int           `json:"audio_level"`
	Events   events.Stats  `json:"events"`
}

// RealtimeProcessing captures audio from the configured device and runs it through
// one session until ctx is done or processing fails.
func RealtimeProcessing(ctx context.Context, settings *conf.Settings, build *buildinfo.Context, opts ...Option) error {
	o := newOptions(opts)
	log := GetLogger()

	format, err := lvacfs.ParseFormat(settings.Stream.Format)
	if err != nil {
		return err
	}
	if _, err := myaudio.CaptureFormat(format); err != nil {
		return err
	}

	if info, err := diagnostics.CollectHostInfo(ctx); err == nil {
		log.Info("system details",
			logger.String("os", info.OS),
			logger.String("platform", info.Platform+" "+info.PlatformVersion),
			logger.String("cpu", info.CPU.BrandName),
			logger.Int("cores", info.CPU.LogicalCores))
	}

	var metrics *observability.Metrics
	engineOpts := []lvacfs.Option{}
	if settings.Telemetry.Enabled {
		m, err := observability.NewMetrics()
		if err != nil {
			return fmt.Errorf("error initializing metrics: %w", err)
		}
		metrics = m
		engineOpts = append(engineOpts, lvacfs.WithRecorder(m.Module))
	}

	publishers, err := buildPublishers(settings, build)
	if err != nil {
		return err
	}
	bus := events.NewBus(events.Config{Node: build.SystemID()}, append(publishers, o.publishers...)...)
	defer func() {
		if err := bus.Shutdown(busShutdownTimeout); err != nil {
			log.Warn("event bus shutdown incomplete", logger.Error(err))
		}
	}()
	engineOpts = append(engineOpts, lvacfs.WithObserver(bus))

	engine := NewEngine(settings, append(engineOpts, o.engineOptions...)...)
	if err := engine.Init(); err != nil {
		return err
	}
	defer func() {
		if err := engine.Deinit(); err != nil {
			log.Warn("engine deinit failed", logger.Error(err))
		}
	}()

	in, err := OpenStream(engine, uuid.NewString(), &settings.Stream)
	if err != nil {
		return err
	}
	defer func() { _ = engine.StopInputStream(in) }()

	buffer, err := myaudio.NewPeriodBuffer(settings.Stream.PeriodFrames*in.Config.FrameSize(), o.bufferPeriods)
	if err != nil {
		return err
	}

	meter := newLevelMeter(settings.Stream.Source, settings.Stream.SampleRate/settings.Stream.PeriodFrames)
	reader := &myaudio.PeriodReader{
		Processor: engine,
		Stream:    in,
		Buffer:    buffer,
	}
	if format == lvacfs.FormatPCM16 {
		reader.Sink = meter.observe
	}

	g, gctx := errgroup.WithContext(ctx)

	if metrics != nil {
		endpoint, err := observability.NewEndpoint(settings.Telemetry.Listen, metrics, func() any {
			return RealtimeStatus{
				Version:  build.Version(),
				SystemID: build.SystemID(),
				Engine:   engine.Status(),
				StreamID: in.ID,
				Frames:   in.FramesProcessed(),
				Dropped:  buffer.Dropped(),
				Level:    meter.level(),
				Events:   bus.Stats(),
			}
		})
		if err != nil {
			return err
		}
		g.Go(func() error { return endpoint.Run(gctx) })
	}

	g.Go(func() error {
		return o.capture(gctx, myaudio.CaptureConfig{
			Device:       settings.Stream.Device,
			SampleRate:   settings.Stream.SampleRate,
			Channels:     settings.Stream.Channels,
			PeriodFrames: settings.Stream.PeriodFrames,
			Format:       format,
		}, func(data []byte) { buffer.Write(data) })
	})
	g.Go(func() error { return reader.Run(gctx) })

	log.Info("realtime processing started",
		logger.StreamID(in.ID),
		logger.String("source", settings.Stream.Source),
		logger.Int("sample_rate", settings.Stream.SampleRate),
		logger.Int("channels", settings.Stream.Channels))

	err = g.Wait()
	log.Info("realtime processing stopped",
		logger.Uint64("frames", in.FramesProcessed()),
		logger.Uint64("chunks_dropped", buffer.Dropped()))

	if err != nil && errors.Is(err, lvacfs.ErrProcess) {
		reportCtx, cancel := context.WithTimeout(context.Background(), debugReportTimeout)
		defer cancel()
		diagnostics.CaptureSystemInfo(reportCtx, err.Error(), engine.Status())
	}
	return err
}

// buildPublishers returns the lifecycle publishers enabled in settings.
func buildPublishers(settings *conf.Settings, build *buildinfo.Context) ([]events.Publisher, error) {
	if !settings.MQTT.Enabled {
		return nil, nil
	}

	client, err := mqtt.NewClient(mqtt.ConfigFromSettings(&settings.MQTT, "lvacfs-"+uuid.NewString()[:8]))
	if err != nil {
		return nil, err
	}
	GetLogger().Info("publishing lifecycle events to mqtt",
		logger.String("broker", settings.MQTT.Broker),
		logger.String("topic", settings.MQTT.Topic),
		logger.String("node", build.SystemID()))
	return []events.Publisher{events.NewMQTTPublisher(client, settings.MQTT.Topic)}, nil
}
