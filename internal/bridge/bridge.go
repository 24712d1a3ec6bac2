package bridge

import (
	"io"
	"os"

	"zclawbridge/internal/provider"
)

// Options configures one bridge run.
type Options struct {
	// Argv is the child command line.
	Argv []string
	// Mode is the provider selector (auto resolves per request).
	Mode provider.Provider
	// Call performs the remote call. Required.
	Call CallFunc
	// BridgeLogs enables per-request diagnostics on Stderr.
	BridgeLogs bool

	// Stdio defaults to the process's own when nil. When Stdin is a
	// terminal it is switched to raw mode for the run.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run proxies the child process until its output stream ends, then reaps
// it and returns its exit code. The only error it returns is a failure to
// spawn the child; everything after that point is request-scoped and
// surfaced through response payloads.
func Run(opts Options) (int, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	logf := func(string, ...any) {}
	if logFile, _, err := openBridgeLogFile(); err == nil {
		defer logFile.Close()
		logf = logfTo(logFile)
	}

	// Raw mode comes first so no child output is ever cooked; the guard
	// restores the terminal on every return path below.
	var guard *rawModeGuard
	if f, isFile := opts.Stdin.(*os.File); isFile {
		g, err := acquireRawMode(f)
		if err != nil {
			return 1, err
		}
		guard = g
		defer guard.Restore()
	}

	child, err := StartChild(opts.Argv)
	if err != nil {
		return 1, err
	}
	logf("child started: %v", opts.Argv)

	session := NewSession()
	var diag io.Writer
	if opts.BridgeLogs {
		diag = opts.Stderr
	}
	dispatcher := NewDispatcher(DispatcherConfig{
		Session: session,
		Child:   child,
		Mode:    opts.Mode,
		Call:    opts.Call,
		Diag:    diag,
		Logf:    logf,
	})

	go pumpInput(opts.Stdin, session, child)

	scanner := NewScanner(opts.Stdout, dispatcher.Handle)
	if err := scanner.Run(child.Output()); err != nil {
		logf("child output read error: %v", err)
	}

	dispatcher.Close()
	code := child.Wait()
	logf("child exited with code %d", code)
	return code, nil
}

// childIO is the slice of Child the input pump needs.
type childIO interface {
	io.Writer
	Stopped() bool
}

// pumpInput forwards terminal keystrokes to the child one byte at a time,
// diverting them into the session backlog while a dispatch is pending. It
// stops on input end-of-stream or once the child's write path is down.
func pumpInput(r io.Reader, session *Session, child childIO) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if !session.Buffer(buf[0]) {
				if _, werr := child.Write(buf[:1]); werr != nil {
					return
				}
			}
			if child.Stopped() {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
