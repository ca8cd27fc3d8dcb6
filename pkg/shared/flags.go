package shared

import "github.com/spf13/pflag"

// HasFlags reports whether any flag in the set was changed on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(f *pflag.Flag) {
		changed = true
	})
	return changed
}
