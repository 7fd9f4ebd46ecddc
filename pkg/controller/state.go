package controller

import "sync"

// sessionState is the {NoSession, SessionActive(id)} machine. Every
// transition bumps a monotonic generation; async completions capture the
// generation of the transition they belong to and are applied only while it
// is still the latest one. This is what keeps an in-flight history fetch
// from overwriting the transcript of a session the user has already left.
type sessionState struct {
	mu         sync.Mutex
	sessionID  string
	generation uint64
}

// begin adopts id as the current session (empty id means NoSession) and
// returns the generation of this transition.
func (s *sessionState) begin(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
	s.generation++
	return s.generation
}

// current returns the active session id; ok is false for NoSession.
func (s *sessionState) current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID, s.sessionID != ""
}

// ifCurrent runs fn under the state lock when gen is still the latest
// transition, and reports whether it ran. Stale completions fall through.
func (s *sessionState) ifCurrent(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	fn()
	return true
}
