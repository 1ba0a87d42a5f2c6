package ddup

import (
	"os"

	"github.com/rs/zerolog"
)

// log is the module's single process-wide log sink (spec §9: "the only
// process-global state"). It is configured once, from cmd/ddup. Per-record
// parse failures, broken parent chains and per-file hashing failures are
// logged through it at debug level rather than aborting the run; paths that
// fail stat during USN enumeration are dropped without a log line.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false}).
	With().Timestamp().Logger()

// SetVerbose raises the global log level to debug, matching the CLI's
// -v/--verbose flag (spec §6).
func SetVerbose(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
