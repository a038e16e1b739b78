package workflow

import (
	"github.com/bizvoice/intake/internal/audio"
	"github.com/bizvoice/intake/internal/extraction"
	"github.com/bizvoice/intake/internal/profile"
)

// recordingStartedMsg signals the mic is live for a slot.
type recordingStartedMsg struct {
	Slot audio.Slot
}

// recordingStoppedMsg carries the encoded take for upload.
type recordingStoppedMsg struct {
	Slot audio.Slot
	Blob *audio.Blob
}

// RecordingErrMsg signals a recording failure (permission, device, empty take).
type RecordingErrMsg struct {
	Slot audio.Slot
	Err  error
}

// UploadCompleteMsg signals the backend extracted data from a recording.
// The outer model applies the result to the session before the phase
// advances.
type UploadCompleteMsg struct {
	Phase  profile.Phase
	Result *extraction.Result
}

// UploadErrMsg signals a failed upload or extraction.
type UploadErrMsg struct {
	Phase profile.Phase
	Err   error
}

// SaveCompleteMsg signals the draft was persisted under Filename.
type SaveCompleteMsg struct {
	Filename string
}

// SaveErrMsg signals a failed save. The review phase stays in edit mode so
// nothing is lost.
type SaveErrMsg struct {
	Err error
}

// ProfileListMsg carries the stored profiles for the browser overlay.
type ProfileListMsg struct {
	Summaries []profile.Summary
	Err       error
}

// ProfileLoadedMsg signals a stored profile was loaded into the session.
type ProfileLoadedMsg struct {
	Filename string
	Draft    *profile.Draft
}

// ProfileErrMsg signals a failed load or delete in the browser.
type ProfileErrMsg struct {
	Err error
}

// ProfileDeletedMsg signals a stored profile was removed.
type ProfileDeletedMsg struct {
	Filename string
}

// CloseProfilesMsg asks the outer model to dismiss the profiles overlay.
type CloseProfilesMsg struct{}

// ResetSessionMsg asks the outer model to discard the session and start
// over from the first recording phase.
type ResetSessionMsg struct{}
