package lvacfs_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/lvacfs-go/internal/lvacfs"
)

func TestResolverPriority(t *testing.T) {
	t.Parallel()

	const overlay, vendor = "/odm/etc/lvacfs_params", "/vendor/etc/lvacfs_params"

	tests := []struct {
		name          string
		overlayExists bool
		vendorExists  bool
		want          string
	}{
		{"both exist", true, true, overlay},
		{"only overlay", true, false, overlay},
		{"only vendor", false, true, vendor},
		{"neither", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			if tt.overlayExists {
				require.NoError(t, fs.MkdirAll(overlay, 0o755))
			}
			if tt.vendorExists {
				require.NoError(t, fs.MkdirAll(vendor, 0o755))
			}

			got, err := lvacfs.NewResolver(fs).Resolve(overlay, vendor)
			if tt.want == "" {
				require.ErrorIs(t, err, lvacfs.ErrPathNotFound)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverAcceptsFiles(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/vendor/etc/lvacfs_params", []byte("not parsed"), 0o644))

	got, err := lvacfs.NewResolver(fs).Resolve("", "/odm/etc/lvacfs_params", "/vendor/etc/lvacfs_params")
	require.NoError(t, err)
	assert.Equal(t, "/vendor/etc/lvacfs_params", got)
}

func TestLocationsCandidates(t *testing.T) {
	t.Parallel()

	loc := lvacfs.DefaultLocations()
	assert.Equal(t, []string{lvacfs.DefaultParamsOverlayDir, lvacfs.DefaultParamsVendorDir}, loc.ParamsCandidates())

	libs := loc.LibraryCandidates()
	require.Len(t, libs, 2)
	assert.Equal(t, filepath.Join(lvacfs.DefaultLibOverlayDir, lvacfs.DefaultLibraryName), libs[0])
	assert.Equal(t, filepath.Join(lvacfs.DefaultLibVendorDir, lvacfs.DefaultLibraryName), libs[1])

	loc.LibOverlayDir = ""
	loc.LibraryName = ""
	assert.Equal(t, []string{filepath.Join(lvacfs.DefaultLibVendorDir, lvacfs.DefaultLibraryName)}, loc.LibraryCandidates())
}
