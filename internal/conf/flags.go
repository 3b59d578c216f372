// conf/flags.go binding of command line flags to settings keys
package conf

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tphakala/lvacfs-go/internal/errors"
)

// flagKeyAnnotation holds the settings key a flag overrides.
const flagKeyAnnotation = "lvacfs/settings-key"

// BindFlag marks the flag name in fs as an override for the settings key.
// Marked flags are bound by BindFlags once the running command is known, so two
// commands can expose the same key without one binding replacing the other.
func BindFlag(fs *pflag.FlagSet, name, key string) error {
	if err := fs.SetAnnotation(name, flagKeyAnnotation, []string{key}); err != nil {
		return fmt.Errorf("error binding flag %q: %w", name, err)
	}
	return nil
}

// BindFlags binds every flag in fs marked with BindFlag to its settings key on v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[flagKeyAnnotation]
		if !ok || len(keys) != 1 {
			return
		}
		if err := v.BindPFlag(keys[0], f); err != nil {
			errs = append(errs, err)
		}
	})
	if len(errs) > 0 {
		return errors.New(errors.Join(errs...)).
			Component("config").
			Category(errors.CategoryConfiguration).
			Operation("bind-flags").
			Build()
	}
	return nil
}
