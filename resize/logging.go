package resize

import (
	"io"
	"log"
	"os"
)

var debugLog = log.New(io.Discard, "resize: ", log.LstdFlags)

// SetVerboseLogging toggles debug output for absorbed resize errors.
// When disabled (default), debug output is discarded.
func SetVerboseLogging(enable bool) {
	if enable {
		debugLog.SetOutput(os.Stderr)
	} else {
		debugLog.SetOutput(io.Discard)
	}
}
