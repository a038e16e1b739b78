package server

import "sync"

// sessionState tracks the filename of the session being actively built so
// product uploads join the business upload that preceded them.
type sessionState struct {
	mu       sync.Mutex
	filename string
}

func (s *sessionState) set(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = filename
}

func (s *sessionState) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filename
}

// clearIf ends the active session when it matches filename.
func (s *sessionState) clearIf(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filename == filename {
		s.filename = ""
	}
}
