package bridge

import (
	"fmt"
	"io"
	"time"

	"zclawbridge/internal/provider"
)

// CallFunc performs the blocking remote call for one request line. It must
// not error: failures come back as JSON error payloads.
type CallFunc func(p provider.Provider, requestJSON string) string

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Session *Session
	Child   io.Writer
	Mode    provider.Provider
	Call    CallFunc
	// Diag receives human-readable per-request lines (CRLF-terminated,
	// the terminal is in raw mode). Nil disables diagnostics.
	Diag io.Writer
	// Logf writes to the debug log file. Nil disables.
	Logf func(format string, args ...any)
}

type dispatchRequest struct {
	line string
	done chan struct{}
}

// Dispatcher serializes remote calls. A single worker goroutine drains an
// unbuffered channel, so at most one dispatch runs at a time no matter how
// many callers there are; Handle blocks its caller until the response line
// and backlog flush have been written.
type Dispatcher struct {
	cfg      DispatcherConfig
	requests chan dispatchRequest
	stopped  chan struct{}
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Logf == nil {
		cfg.Logf = func(string, ...any) {}
	}
	d := &Dispatcher{
		cfg:      cfg,
		requests: make(chan dispatchRequest),
		stopped:  make(chan struct{}),
	}
	go d.loop()
	return d
}

// Handle dispatches one request line and blocks until it completes.
func (d *Dispatcher) Handle(line string) {
	req := dispatchRequest{line: line, done: make(chan struct{})}
	d.requests <- req
	<-req.done
}

// Close stops the worker. No Handle calls may follow.
func (d *Dispatcher) Close() {
	close(d.requests)
	<-d.stopped
}

func (d *Dispatcher) loop() {
	defer close(d.stopped)
	for req := range d.requests {
		d.dispatch(req.line)
		close(req.done)
	}
}

func (d *Dispatcher) dispatch(line string) {
	p := provider.Resolve(d.cfg.Mode, line)
	started := time.Now()
	d.diagf("Forwarding request (%d bytes) via %s", len(line), p)
	d.cfg.Logf("dispatch provider=%s request_bytes=%d", p, len(line))

	d.cfg.Session.BeginPending()
	response := d.cfg.Call(p, line)
	_, _ = d.cfg.Child.Write([]byte(ResponseMarker + response + "\n"))

	flush := d.cfg.Session.EndPending()
	if len(flush) > 0 {
		_, _ = d.cfg.Child.Write(flush)
		d.cfg.Logf("flushed %d buffered input bytes", len(flush))
	}

	elapsed := time.Since(started)
	d.diagf("Returned %s response (%d bytes) in %.1fs", p, len(response), elapsed.Seconds())
	d.cfg.Logf("dispatch done provider=%s response_bytes=%d elapsed=%s", p, len(response), elapsed.Round(time.Millisecond))
}

func (d *Dispatcher) diagf(format string, args ...any) {
	if d.cfg.Diag == nil {
		return
	}
	fmt.Fprintf(d.cfg.Diag, "[zclaw-bridge] "+format+"\r\n", args...)
}
