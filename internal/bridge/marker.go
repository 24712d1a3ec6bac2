// Package bridge multiplexes a child process's byte streams: marker-prefixed
// LLM request lines are dispatched to a provider while every other byte
// passes through to the terminal, and keystrokes typed during a call are
// buffered and replayed in order.
package bridge

const (
	// RequestMarker prefixes a request line on the child's output stream.
	RequestMarker = "__zclaw_llm_req__:"
	// ResponseMarker prefixes the response line written to the child's stdin.
	// The child echoes it back on its console, which the scanner suppresses.
	ResponseMarker = "__zclaw_llm_resp__:"
)

type markerMatch int

const (
	// matchPending: the bytes fed so far are a proper prefix of at least
	// one marker.
	matchPending markerMatch = iota
	// matchNone: the fed bytes diverged from both markers.
	matchNone
	matchRequest
	matchResponse
)

// markerMatcher is a two-literal prefix automaton over the marker strings.
// Feed it one byte at a time from the start of a line; it reports a full
// match, a divergence, or that more bytes are needed. The caller owns the
// bytes fed so far and flushes them itself on divergence.
type markerMatcher struct {
	off       int
	reqAlive  bool
	respAlive bool
}

func newMarkerMatcher() markerMatcher {
	return markerMatcher{reqAlive: true, respAlive: true}
}

func (m *markerMatcher) feed(b byte) markerMatch {
	if m.reqAlive && (m.off >= len(RequestMarker) || RequestMarker[m.off] != b) {
		m.reqAlive = false
	}
	if m.respAlive && (m.off >= len(ResponseMarker) || ResponseMarker[m.off] != b) {
		m.respAlive = false
	}
	m.off++

	switch {
	case m.reqAlive && m.off == len(RequestMarker):
		m.reset()
		return matchRequest
	case m.respAlive && m.off == len(ResponseMarker):
		m.reset()
		return matchResponse
	case !m.reqAlive && !m.respAlive:
		m.reset()
		return matchNone
	default:
		return matchPending
	}
}

func (m *markerMatcher) reset() {
	m.off = 0
	m.reqAlive = true
	m.respAlive = true
}
