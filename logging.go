package confidence

import "github.com/rs/zerolog"

// logger is disabled by default; a library should stay quiet unless the host
// application opts in.
var logger = zerolog.Nop()

// SetLogger routes the package's diagnostics (key collision warnings, loader
// traces) to the given logger.
func SetLogger(l zerolog.Logger) {
	logger = l
}
