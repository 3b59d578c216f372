package lvacfstest

import (
	"github.com/spf13/afero"

	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

// Options returns engine options wiring m through an in-memory params directory and
// a loader laid out like a device with the default locations. Symbols named in missing
// are left out of the library.
func Options(m *Module, missing ...string) ([]lvacfs.Option, *Library) {
	loc := lvacfs.DefaultLocations()

	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll(loc.ParamsOverlayDir, 0o755)

	lib := NewLibrary(loc.LibraryCandidates()[0], m, missing...)
	return []lvacfs.Option{
		lvacfs.WithFs(fs),
		lvacfs.WithLoader(NewLoader(lib)),
		lvacfs.WithLocations(loc),
	}, lib
}

// NewEngine returns an uninitialized engine built from Options(m). Extra options are
// applied last.
func NewEngine(m *Module, opts ...lvacfs.Option) (*lvacfs.Engine, *Library) {
	base, lib := Options(m)
	return lvacfs.NewEngine(append(base, opts...)...), lib
}
