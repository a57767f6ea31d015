package solve

import (
	"errors"
	"io/fs"
	"os"

	"github.com/kilianp07/robsolve/infra/logger"
)

// Cleanup removes a stale diagnostic log. Every failure is swallowed; the
// solve never blocks on cleanup.
func Cleanup(path string, log logger.Logger) {
	if log == nil {
		log = logger.NopLogger{}
	}
	err := os.Remove(path)
	switch {
	case err == nil:
		log.Debugf("removed stale diagnostic log %s", path)
	case errors.Is(err, fs.ErrNotExist):
	default:
		log.Debugf("skip cleanup of %s: %v", path, err)
	}
}
