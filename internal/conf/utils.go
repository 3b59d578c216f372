// conf/utils.go config file discovery
package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// appDirName is the per-user and system configuration directory name.
const appDirName = "lvacfs"

// ConfigSearchPaths returns the directories searched for config.yaml, highest priority
// first. The working directory comes first so a device checkout can carry its own config.
func ConfigSearchPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("config").
			Category(errors.CategorySystem).
			Operation("get-home-directory").
			Build()
	}

	if runtime.GOOS == "windows" {
		return []string{".", filepath.Join(homeDir, "AppData", "Roaming", appDirName)}, nil
	}
	return []string{
		".",
		filepath.Join(homeDir, ".config", appDirName),
		filepath.Join("/etc", appDirName),
	}, nil
}

// FindConfigFile returns the first config.yaml found in ConfigSearchPaths.
func FindConfigFile() (string, error) {
	paths, err := ConfigSearchPaths()
	if err != nil {
		return "", err
	}
	return findConfigFile(afero.NewOsFs(), paths)
}

func findConfigFile(fs afero.Fs, dirs []string) (string, error) {
	for _, dir := range dirs {
		path := filepath.Join(dir, configFileName+".yaml")
		if ok, _ := afero.Exists(fs, path); ok {
			return path, nil
		}
	}
	return "", errors.Newf("config file not found").
		Component("config").
		Category(errors.CategoryNotFound).
		Operation("find-config-file").
		Context("searched", len(dirs)).
		Build()
}
