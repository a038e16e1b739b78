package workflow

import (
	"github.com/bizvoice/intake/internal/extraction"
	"github.com/bizvoice/intake/internal/profile"
)

// Session is the mutable state of one intake run: the draft under
// construction, the server-side filename once one exists, and the raw
// transcripts for display. Owned by the outer model; phases read it
// through a shared pointer and all mutation happens on the UI goroutine.
type Session struct {
	Draft              *profile.Draft
	Filename           string
	BusinessTranscript string
	ProductTranscript  string

	started bool
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{Draft: profile.NewDraft()}
}

// Reset discards everything and returns the session to its initial state.
func (s *Session) Reset() {
	*s = Session{Draft: profile.NewDraft()}
}

// HasDraft reports whether any extraction result or stored profile has
// populated the session.
func (s *Session) HasDraft() bool {
	return s.started
}

// Apply merges an extraction result into the session. The server assigns
// the filename on the first upload; later results keep it.
func (s *Session) Apply(res *extraction.Result, phase profile.Phase) {
	s.Draft.ApplyExtraction(&res.Fields, phase)

	if res.Filename != "" {
		s.Filename = res.Filename
		s.Draft.SourceFilename = res.Filename
	}

	switch phase {
	case profile.PhaseBusiness:
		s.BusinessTranscript = res.Transcript
	case profile.PhaseProducts:
		s.ProductTranscript = res.Transcript
	}

	s.started = true
}

// Load replaces the session with a stored profile.
func (s *Session) Load(filename string, draft *profile.Draft) {
	draft.Normalize()
	draft.SourceFilename = filename

	*s = Session{
		Draft:    draft,
		Filename: filename,
		started:  true,
	}
}

// SetSaved records a successful save under filename.
func (s *Session) SetSaved(filename string) {
	s.Filename = filename
	s.Draft.SourceFilename = filename
	s.started = true
}
