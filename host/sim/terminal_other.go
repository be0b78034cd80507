//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package sim

import (
	"errors"
	"os"
)

var ErrNoCBreak = errors.New("sim: cbreak mode not supported on this platform")

// CBreak is not available here; keys are read line by line
func CBreak(f *os.File) (func(), error) {
	return nil, ErrNoCBreak
}
