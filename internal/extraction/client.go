// Package extraction uploads finalized recordings to the intake backend
// and returns the structured extraction results.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/bizvoice/intake/internal/audio"
	"github.com/bizvoice/intake/internal/profile"
)

var (
	// ErrTransport means the request never produced a usable response:
	// a network failure or a non-success HTTP status.
	ErrTransport = errors.New("upload transport failure")
	// ErrExtraction means the backend reported a semantic error for the
	// recording (bad audio, failed transcription, failed extraction).
	ErrExtraction = errors.New("extraction rejected")
)

// EndpointID names one of the two phase-specific upload endpoints.
type EndpointID string

const (
	EndpointBusiness EndpointID = "/upload_business_audio"
	EndpointProducts EndpointID = "/upload_product_audio"
)

// EndpointForSlot maps a recording slot to its upload endpoint.
func EndpointForSlot(slot audio.Slot) EndpointID {
	if slot == audio.SlotProducts {
		return EndpointProducts
	}

	return EndpointBusiness
}

// Result holds a successful extraction: the fields the backend pulled out
// of the recording, the raw transcript, and the server-assigned session
// filename when the backend created one.
type Result struct {
	Fields     profile.Draft
	Transcript string
	Filename   string
}

// Client uploads audio blobs for transcription and extraction.
// Upload is a pure data call: all UI state updates belong to the caller,
// and every failure path resolves to a tagged error.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates an upload client for the given backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
	}
}

// uploadResponse is the wire shape shared by both upload endpoints.
type uploadResponse struct {
	Data          *profile.Draft `json:"data"`
	Transcription string         `json:"transcription"`
	Filename      string         `json:"filename"`
	Error         string         `json:"error"`
}

// Upload posts an audio blob to the given endpoint and returns the
// extraction result. Non-success statuses map to ErrTransport and
// backend-reported errors to ErrExtraction; network failures never panic.
func (c *Client) Upload(ctx context.Context, endpoint EndpointID, blob *audio.Blob) (*Result, error) {
	if blob == nil || len(blob.Data) == 0 {
		return nil, fmt.Errorf("%w: empty audio blob", ErrExtraction)
	}

	body, contentType, err := buildMultipartBody(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+string(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	var decoded uploadResponse
	if jsonErr := json.Unmarshal(raw, &decoded); jsonErr != nil {
		decoded = uploadResponse{}
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrExtraction, decoded.Error)
		}

		return nil, fmt.Errorf("%w: server returned %d", ErrTransport, resp.StatusCode)
	}

	if decoded.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrExtraction, decoded.Error)
	}

	if decoded.Data == nil {
		return nil, fmt.Errorf("%w: response missing extraction data", ErrExtraction)
	}

	decoded.Data.Normalize()

	return &Result{
		Fields:     *decoded.Data,
		Transcript: decoded.Transcription,
		Filename:   decoded.Filename,
	}, nil
}

// buildMultipartBody wraps the blob in a single "audio" form part.
func buildMultipartBody(blob *audio.Blob) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="audio"; filename="recording.mp3"`)
	header.Set("Content-Type", blob.MIME)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create audio form part: %w", err)
	}

	if _, err := part.Write(blob.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
