//go:build !linux && !darwin

package lvacfs

import (
	"fmt"
	"runtime"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// DynamicLoader rejects every load on platforms without dynamic module support.
type DynamicLoader struct{}

// NewDynamicLoader returns the production loader.
func NewDynamicLoader() DynamicLoader {
	return DynamicLoader{}
}

// Open always fails with ErrUnsupportedPlatform.
func (DynamicLoader) Open(path string) (Library, error) {
	return nil, errors.New(fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)).
		Component(componentName).
		Category(errors.CategoryModuleLoad).
		ModuleContext(path).
		Build()
}
