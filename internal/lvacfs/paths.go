package lvacfs

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
)

// Default locations. The overlay partition always takes precedence over the vendor partition.
const (
	DefaultParamsOverlayDir = "/odm/etc/lvacfs_params"
	DefaultParamsVendorDir  = "/vendor/etc/lvacfs_params"
	DefaultLibraryName      = "liblvacfs_wrapper.so"
)

// Module binary directories follow the pointer width of the running binary.
var (
	DefaultLibOverlayDir = "/odm/" + libDirName()
	DefaultLibVendorDir  = "/vendor/" + libDirName()
)

// Locations lists the overlay and vendor candidates for the params directory and the module binary.
type Locations struct {
	ParamsOverlayDir string
	ParamsVendorDir  string
	LibOverlayDir    string
	LibVendorDir     string
	LibraryName      string
}

// DefaultLocations returns the standard device layout.
func DefaultLocations() Locations {
	return Locations{
		ParamsOverlayDir: DefaultParamsOverlayDir,
		ParamsVendorDir:  DefaultParamsVendorDir,
		LibOverlayDir:    DefaultLibOverlayDir,
		LibVendorDir:     DefaultLibVendorDir,
		LibraryName:      DefaultLibraryName,
	}
}

// ParamsCandidates returns the params directories in priority order.
func (l Locations) ParamsCandidates() []string {
	return nonEmpty(l.ParamsOverlayDir, l.ParamsVendorDir)
}

// LibraryCandidates returns the module binary paths in priority order.
func (l Locations) LibraryCandidates() []string {
	name := l.LibraryName
	if name == "" {
		name = DefaultLibraryName
	}
	var out []string
	for _, dir := range nonEmpty(l.LibOverlayDir, l.LibVendorDir) {
		out = append(out, filepath.Join(dir, name))
	}
	return out
}

func nonEmpty(paths ...string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// Resolver picks the first existing path from an ordered candidate list.
// Paths are only checked for existence, never opened.
type Resolver struct {
	fs afero.Fs
}

// NewResolver creates a resolver over fs. A nil fs means the host filesystem.
func NewResolver(fs afero.Fs) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Resolver{fs: fs}
}

// Resolve returns the first candidate that exists, or ErrPathNotFound.
func (r *Resolver) Resolve(candidates ...string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		exists, err := afero.Exists(r.fs, c)
		if err != nil {
			GetLogger().Debug("path check failed", logger.String("path", c), logger.Error(err))
			continue
		}
		if exists {
			return c, nil
		}
	}
	return "", errors.New(ErrPathNotFound).
		Component(componentName).
		Category(errors.CategoryNotFound).
		Context("candidates", strings.Join(candidates, ",")).
		Build()
}

func libDirName() string {
	if strconv.IntSize == 32 {
		return "lib"
	}
	return "lib64"
}
