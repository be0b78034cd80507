//go:build linux || darwin || freebsd || netbsd || openbsd

package sim

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// CBreak switches the terminal on f to cbreak mode, so every key reaches the
// simulator without waiting for Enter. The returned function restores the
// previous mode. Fails when f is not a terminal.
func CBreak(f *os.File) (func(), error) {
	var saved unix.Termios
	if err := termios.Tcgetattr(f.Fd(), &saved); err != nil {
		return nil, err
	}

	cbreak := saved
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(f.Fd(), termios.TCIFLUSH, &cbreak); err != nil {
		return nil, err
	}

	return func() {
		_ = termios.Tcsetattr(f.Fd(), termios.TCIFLUSH, &saved)
	}, nil
}
