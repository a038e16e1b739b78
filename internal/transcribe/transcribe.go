// Package transcribe converts recorded audio into text via the Whisper API.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNoAPIKey indicates the client was constructed without credentials.
var ErrNoAPIKey = errors.New("API key required: set OPENAI_API_KEY or store one in the keyring")

// Client handles Whisper API transcription requests.
type Client struct {
	apiKey string
}

// New creates a new transcription client.
func New(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
	}
}

// Transcribe transcribes an audio recording using the Whisper API.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	client := openai.NewClient(option.WithAPIKey(c.apiKey))

	params := openai.AudioTranscriptionNewParams{
		File:  audio,
		Model: openai.AudioModelWhisper1,
	}

	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription via Whisper API: %w", err)
	}

	return resp.Text, nil
}
