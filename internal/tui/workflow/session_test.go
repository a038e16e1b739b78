package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizvoice/intake/internal/extraction"
	"github.com/bizvoice/intake/internal/profile"
	"github.com/bizvoice/intake/internal/tui/workflow"
)

func TestSessionApply(t *testing.T) {
	session := workflow.NewSession()
	require.False(t, session.HasDraft())

	session.Apply(&extraction.Result{
		Fields:     profile.Draft{Name: "Sharma Sweets", City: "Jaipur"},
		Transcript: "my shop is Sharma Sweets in Jaipur",
		Filename:   "session_20240101_120000.json",
	}, profile.PhaseBusiness)

	assert.True(t, session.HasDraft())
	assert.Equal(t, "Sharma Sweets", session.Draft.Name)
	assert.Equal(t, "session_20240101_120000.json", session.Filename)
	assert.Equal(t, "my shop is Sharma Sweets in Jaipur", session.BusinessTranscript)

	// A products result replaces the list and keeps the scalars.
	session.Apply(&extraction.Result{
		Fields: profile.Draft{Products: []profile.Product{
			{Name: "Ladoo", Unit: "kg", Quantity: 2},
		}},
		Transcript: "two kg ladoo",
	}, profile.PhaseProducts)

	assert.Equal(t, "Sharma Sweets", session.Draft.Name)
	require.Len(t, session.Draft.Products, 1)
	assert.Equal(t, "Ladoo", session.Draft.Products[0].Name)
	assert.Equal(t, "session_20240101_120000.json", session.Filename, "filename survives later results")
	assert.Equal(t, "two kg ladoo", session.ProductTranscript)
}

func TestSessionLoadAndReset(t *testing.T) {
	session := workflow.NewSession()
	session.Load("session_20240101_120000.json", &profile.Draft{Name: "Sharma Sweets", Products: nil})

	assert.True(t, session.HasDraft())
	assert.NotNil(t, session.Draft.Products, "nil products normalize on load")
	assert.Equal(t, "session_20240101_120000.json", session.Draft.SourceFilename)

	session.Reset()
	assert.False(t, session.HasDraft())
	assert.Empty(t, session.Filename)
	assert.Empty(t, session.Draft.Name)
	assert.NotNil(t, session.Draft.Products)
}
