package bridge

import (
	"os"

	"golang.org/x/term"
)

// rawModeGuard puts the controlling terminal into raw mode for the child's
// lifetime and restores it on every exit path. Restore is idempotent so it
// can sit in a defer and also be called early.
type rawModeGuard struct {
	fd    int
	state *term.State
}

// acquireRawMode switches f to raw mode when it is a terminal. On a
// non-terminal (pipes, CI) it returns a no-op guard.
func acquireRawMode(f *os.File) (*rawModeGuard, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return &rawModeGuard{}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &rawModeGuard{fd: fd, state: state}, nil
}

func (g *rawModeGuard) Restore() {
	if g == nil || g.state == nil {
		return
	}
	_ = term.Restore(g.fd, g.state)
	g.state = nil
}
