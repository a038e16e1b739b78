package workflow

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/bizvoice/intake/internal/profile"
	"github.com/bizvoice/intake/internal/tui/style"
)

// Phase names used by the phases container and for jumps.
const (
	PhaseNameBusiness = "Business Details"
	PhaseNameProducts = "Products"
	PhaseNameReview   = "Review"
)

func renderKeyHelp(keyBinding key.Binding, suffix ...string) string {
	s := style.Help.Render("[") + style.Key.Render(keyBinding.Help().Key) +
		style.Help.Render("] ") +
		style.Help.Render(keyBinding.Help().Desc)

	s += strings.Join(suffix, "")

	return s
}

// renderConfidence renders the confidence badge shown next to a field.
func renderConfidence(c profile.Confidence) string {
	switch c {
	case profile.ConfidenceHigh:
		return style.ConfidenceHigh.Render("[High]")
	case profile.ConfidenceMed:
		return style.ConfidenceMed.Render("[Med]")
	default:
		return style.ConfidenceLow.Render("[Low]")
	}
}
