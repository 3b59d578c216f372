package analysis

import (
	"github.com/tphakala/lvacfs-go/internal/conf"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// NewEngine creates an uninitialized engine for the configured module locations.
// opts are applied after the locations and may override them.
func NewEngine(settings *conf.Settings, opts ...lvacfs.Option) *lvacfs.Engine {
	base := []lvacfs.Option{lvacfs.WithLocations(settings.Module.Locations())}
	return lvacfs.NewEngine(append(base, opts...)...)
}

// OpenStream starts a session for stream and applies the configured controls.
// A control the module rejects is logged and the session kept.
func OpenStream(e *lvacfs.Engine, id string, stream *conf.StreamSettings) (*lvacfs.InputStream, error) {
	cfg, err := stream.StreamConfig()
	if err != nil {
		return nil, err
	}

	in := lvacfs.NewInputStream(id, cfg)
	if err := e.StartInputStream(in); err != nil {
		return nil, err
	}
	applyControls(e, in, stream)
	return in, nil
}

// applyControls pushes profile, zoom, direction and orientation to a started session.
func applyControls(e *lvacfs.Engine, in *lvacfs.InputStream, s *conf.StreamSettings) {
	log := GetLogger().With(logger.StreamID(in.ID))

	controls := []struct {
		name  string
		skip  bool
		apply func() error
	}{
		{"profile", s.Profile < 0, func() error { return e.SetProfile(in, int32(s.Profile)) }}, //nolint:gosec // G115: small validated value
		{"zoom", s.Zoom == 0, func() error { return e.UpdateZoom(in, float32(s.Zoom)) }},
		{"direction", false, func() error { return e.SetAudioDirection(in, s.AudioDirection()) }},
		{"orientation", false, func() error {
			return e.SetDeviceOrientation(in, lvacfs.DeviceOrientation(s.Orientation)) //nolint:gosec // G115: validated to 0..270
		}},
	}

	for _, c := range controls {
		if c.skip {
			continue
		}
		if err := c.apply(); err != nil {
			log.Warn("control rejected by module", logger.String("control", c.name), logger.Error(err))
		}
	}
}
