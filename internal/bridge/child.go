package bridge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
)

// Child runs the proxied command with piped stdio. Stderr is merged into
// stdout so the scanner sees a single ordered byte stream, exactly what a
// console would.
type Child struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output io.Reader

	// set once the child's stdin pipe breaks; later writes are dropped
	// silently because a broken pipe just means the child already exited.
	writeDisabled atomic.Bool
}

// StartChild spawns argv. Failing to spawn is the only fatal error in the
// bridge; everything later stays request-scoped.
func StartChild(argv []string) (*Child, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty child command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	return &Child{cmd: cmd, stdin: stdin, output: stdout}, nil
}

// Output is the child's merged stdout+stderr stream.
func (c *Child) Output() io.Reader {
	return c.output
}

// Write sends bytes to the child's stdin. After a broken pipe the write
// path shuts down quietly and all further writes are no-ops.
func (c *Child) Write(p []byte) (int, error) {
	if c.writeDisabled.Load() {
		return len(p), nil
	}
	n, err := c.stdin.Write(p)
	if err != nil {
		if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
			c.writeDisabled.Store(true)
			return len(p), nil
		}
		return n, err
	}
	return n, nil
}

// Stopped reports whether the write path has shut down.
func (c *Child) Stopped() bool {
	return c.writeDisabled.Load()
}

// Wait blocks until the child exits and returns its exit code. A child
// killed by a signal reports code 1.
func (c *Child) Wait() int {
	_ = c.stdin.Close()
	err := c.cmd.Wait()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
	}
	return 1
}
