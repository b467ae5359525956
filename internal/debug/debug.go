// Package debug provides env- and flag-gated diagnostic output for gqld.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	enabled     = os.Getenv("GQLD_DEBUG") != ""
	verboseMode = false
	quietMode   = false

	mu     sync.Mutex
	stderr io.Writer = os.Stderr
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled. Commands consult it before
// printing progress.
func IsQuiet() bool {
	return quietMode
}

// Logf writes to stderr when debugging is enabled. Probes run concurrently,
// so writes are serialized.
func Logf(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(stderr, format, args...)
}
