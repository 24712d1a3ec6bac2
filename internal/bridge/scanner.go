package bridge

import (
	"bytes"
	"io"
)

type scanState int

const (
	stateDetect scanState = iota
	statePassthrough
	stateSuppressRequest
	stateSuppressResponse
)

// Scanner consumes the child's merged output one byte at a time. Ordinary
// bytes go to the terminal; request lines are handed to onRequest (which
// blocks scanning until the dispatch completes); echoed response lines are
// discarded. Terminal write errors are ignored: the session outlives a
// closed or redirected stdout.
type Scanner struct {
	terminal  io.Writer
	onRequest func(line string)

	state   scanState
	matcher markerMatcher
	prefix  []byte
	payload bytes.Buffer
}

func NewScanner(terminal io.Writer, onRequest func(string)) *Scanner {
	return &Scanner{
		terminal:  terminal,
		onRequest: onRequest,
		matcher:   newMarkerMatcher(),
	}
}

// Run drains r to end-of-stream, then applies the tail rules: a partial
// marker prefix is flushed to the terminal, and an unterminated request
// payload is dispatched as if the newline had arrived.
func (s *Scanner) Run(r io.Reader) error {
	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			s.feed(b)
		}
		if err != nil {
			if err == io.EOF {
				s.finish()
				return nil
			}
			s.finish()
			return err
		}
	}
}

func (s *Scanner) feed(b byte) {
	switch s.state {
	case statePassthrough:
		s.write([]byte{b})
		if b == '\n' {
			s.state = stateDetect
		}

	case stateSuppressResponse:
		if b == '\n' {
			s.state = stateDetect
		}

	case stateSuppressRequest:
		switch b {
		case '\r':
			// dropped: the emulator console emits CRLF
		case '\n':
			line := s.payload.String()
			s.payload.Reset()
			s.state = stateDetect
			s.onRequest(line)
		default:
			s.payload.WriteByte(b)
		}

	default: // stateDetect
		s.prefix = append(s.prefix, b)
		switch s.matcher.feed(b) {
		case matchRequest:
			s.prefix = s.prefix[:0]
			s.state = stateSuppressRequest
		case matchResponse:
			s.prefix = s.prefix[:0]
			s.state = stateSuppressResponse
		case matchNone:
			s.write(s.prefix)
			s.prefix = s.prefix[:0]
			if b != '\n' {
				s.state = statePassthrough
			}
		case matchPending:
		}
	}
}

func (s *Scanner) finish() {
	if s.state == stateDetect && len(s.prefix) > 0 {
		s.write(s.prefix)
		s.prefix = s.prefix[:0]
		return
	}
	if s.state == stateSuppressRequest && s.payload.Len() > 0 {
		line := s.payload.String()
		s.payload.Reset()
		s.onRequest(line)
	}
}

func (s *Scanner) write(p []byte) {
	_, _ = s.terminal.Write(p)
}
