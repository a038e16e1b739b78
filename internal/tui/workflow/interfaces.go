// Package workflow provides the TUI phase implementations for the intake
// session: two recording phases and the review/edit phase.
package workflow

import (
	"context"

	"github.com/bizvoice/intake/internal/audio"
	"github.com/bizvoice/intake/internal/extraction"
	"github.com/bizvoice/intake/internal/profile"
)

// Recorder flips the microphone for a slot. A stop returns the encoded
// take.
type Recorder interface {
	Toggle(ctx context.Context, slot audio.Slot) (*audio.Blob, error)
}

// Uploader sends a recording to the backend for transcription and
// extraction.
type Uploader interface {
	Upload(ctx context.Context, endpoint extraction.EndpointID, blob *audio.Blob) (*extraction.Result, error)
}

// ProfileStore persists and retrieves saved profiles on the backend.
type ProfileStore interface {
	Save(ctx context.Context, filename string, draft *profile.Draft) (string, error)
	List(ctx context.Context) ([]profile.Summary, error)
	Load(ctx context.Context, filename string) (*profile.Draft, error)
	Delete(ctx context.Context, filename string) error
}
