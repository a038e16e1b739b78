package transcribe_test

import (
	"context"
	"strings"
	"testing"

	"github.com/bizvoice/intake/internal/transcribe"
	"github.com/stretchr/testify/assert"
)

func TestTranscribe_RequiresAPIKey(t *testing.T) {
	c := transcribe.New("")

	_, err := c.Transcribe(context.Background(), strings.NewReader("audio"))

	assert.ErrorIs(t, err, transcribe.ErrNoAPIKey)
}
