package options

import (
	"github.com/spf13/pflag"
)

// IOptions is implemented by every reusable flag group in this package.
type IOptions interface {
	// Validate parses and checks the user-supplied values.
	Validate() []error

	// AddFlags binds the group's flags to the given FlagSet.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
