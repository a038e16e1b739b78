package profile

import (
	"regexp"
	"time"
)

// Session filenames encode their creation timestamp:
// session_<YYYYMMDD>_<HHMMSS>.json. The client parses the encoding purely
// for display-date formatting and sort stability; no further semantics.
var filenamePattern = regexp.MustCompile(`^session_(\d{8})_(\d{6})\.json$`)

const filenameTimeLayout = "20060102_150405"

// NewSessionFilename builds a session filename from a timestamp.
// Non-colliding only to the second.
func NewSessionFilename(t time.Time) string {
	return "session_" + t.Format(filenameTimeLayout) + ".json"
}

// DisplayDate formats the timestamp encoded in a session filename for
// display. Malformed filenames degrade to "Unknown date" rather than
// failing.
func DisplayDate(filename string) string {
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return "Unknown date"
	}

	t, err := time.Parse(filenameTimeLayout, m[1]+"_"+m[2])
	if err != nil {
		return "Unknown date"
	}

	return t.Format("Jan 2, 2006 15:04")
}

// Summary is one entry in the server's profile listing: a stored session
// filename and the profile record it contains. Read-only to the client.
type Summary struct {
	Filename string `json:"filename"`
	Data     Draft  `json:"data"`
}
