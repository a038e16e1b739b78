// Package persist is the HTTP client for the backend profile store:
// saving drafts under session filenames and listing, loading, and deleting
// saved profiles.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bizvoice/intake/internal/profile"
)

var (
	// ErrPersistence covers any save/list/load/delete failure that is not
	// a missing profile.
	ErrPersistence = errors.New("persistence failure")
	// ErrNotFound means the requested profile does not exist on the server.
	ErrNotFound = errors.New("profile not found")
)

// Client talks to the backend store. All four operations are independent,
// non-transactional round trips; the client keeps no cache, so callers
// refetch the list after every mutating operation.
type Client struct {
	baseURL string
	httpc   *http.Client
	now     func() time.Time
}

// NewClient creates a persistence client for the given backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		now:     time.Now,
	}
}

type saveRequest struct {
	Filename string         `json:"filename"`
	Data     *profile.Draft `json:"data"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Save stores the draft under the given filename. An empty filename
// generates one from the current timestamp before the call. Returns the
// filename the draft was stored under.
func (c *Client) Save(ctx context.Context, filename string, draft *profile.Draft) (string, error) {
	if draft == nil {
		return "", fmt.Errorf("%w: nothing to save", ErrPersistence)
	}

	if filename == "" {
		filename = profile.NewSessionFilename(c.now())
	}

	payload, err := json.Marshal(saveRequest{Filename: filename, Data: draft})
	if err != nil {
		return "", fmt.Errorf("%w: encoding draft: %v", ErrPersistence, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/save", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var decoded saveResponse
	if err := c.do(req, &decoded); err != nil {
		return "", err
	}

	if !decoded.Success {
		reason := decoded.Error
		if reason == "" {
			reason = "unknown error"
		}

		return "", fmt.Errorf("%w: %s", ErrPersistence, reason)
	}

	return filename, nil
}

// List fetches all saved profiles in the server's stable listing order.
func (c *Client) List(ctx context.Context) ([]profile.Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get_sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var summaries []profile.Summary
	if err := c.do(req, &summaries); err != nil {
		return nil, err
	}

	for i := range summaries {
		summaries[i].Data.Normalize()
		summaries[i].Data.SourceFilename = summaries[i].Filename
	}

	return summaries, nil
}

// Load fetches one saved profile by filename.
func (c *Client) Load(ctx context.Context, filename string) (*profile.Draft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get_session/"+filename, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	draft := &profile.Draft{}
	if err := c.do(req, draft); err != nil {
		return nil, err
	}

	draft.Normalize()
	draft.SourceFilename = filename

	return draft, nil
}

// Delete removes one saved profile by filename. Callers are responsible
// for confirming the action with the user first.
func (c *Client) Delete(ctx context.Context, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/delete_session/"+filename, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return c.do(req, &saveResponse{})
}

// do executes the request and decodes a JSON response into out, mapping
// failures onto the persistence error taxonomy. Errors are never silently
// dropped.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrPersistence, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, serverReason(raw))
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: server returned %d: %s", ErrPersistence, resp.StatusCode, serverReason(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed response body: %v", ErrPersistence, err)
	}

	return nil
}

func serverReason(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}

	return strings.TrimSpace(string(raw))
}
