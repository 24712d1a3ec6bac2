package bridge

import "sync"

// Session holds the shared dispatch state: whether a remote call is in
// flight and the terminal bytes buffered while it was. One mutex guards
// both, so a keystroke observed during a pending call is always delivered
// after the response line and before any later direct write.
type Session struct {
	mu      sync.Mutex
	pending bool
	backlog []byte
}

func NewSession() *Session {
	return &Session{}
}

// BeginPending marks a dispatch in flight.
func (s *Session) BeginPending() {
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()
}

// EndPending clears the flag and detaches the backlog in the same critical
// section. The caller writes the returned bytes to the child as one
// contiguous write, outside the lock.
func (s *Session) EndPending() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if len(s.backlog) == 0 {
		return nil
	}
	detached := s.backlog
	s.backlog = nil
	return detached
}

// Buffer appends b to the backlog if a dispatch is pending and reports
// whether it did. A false return means the caller forwards the byte
// directly.
func (s *Session) Buffer(b byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return false
	}
	s.backlog = append(s.backlog, b)
	return true
}

// Pending reports whether a dispatch is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
