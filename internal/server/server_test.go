package server //nolint:testpackage // Pins the server clock for filename assertions

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizvoice/intake/internal/config"
	"github.com/bizvoice/intake/internal/profile"
	"github.com/bizvoice/intake/internal/store"
)

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ io.Reader) (string, error) {
	return f.transcript, f.err
}

type fakeExtractor struct {
	draft    *profile.Draft
	products []profile.Product
	err      error
}

func (f *fakeExtractor) BusinessInfo(_ context.Context, _ string) (*profile.Draft, error) {
	return f.draft, f.err
}

func (f *fakeExtractor) Products(_ context.Context, _ string) ([]profile.Product, error) {
	return f.products, f.err
}

func testLogger() *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors during tests
	}))
}

func newTestServer(t *testing.T, tr Transcriber, ex Extractor) *Server {
	t.Helper()

	cfg := &config.Config{
		Env:        "test",
		Port:       "8080",
		DataDir:    t.TempDir(),
		StaticDir:  t.TempDir(),
		HSTSMaxAge: 31536000,
		CSPMode:    "relaxed",
		LogLevel:   "info",
	}

	st, err := store.New(cfg.DataDir)
	require.NoError(t, err)

	srv := New(cfg, testLogger(), st, tr, ex)
	srv.now = func() time.Time {
		return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	}

	return srv
}

func audioRequest(t *testing.T, path string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", "recording.mp3")
	require.NoError(t, err)
	_, err = part.Write([]byte("mp3 bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "intake")
}

func TestBusinessUpload_CreatesSession(t *testing.T) {
	draft := profile.NewDraft()
	draft.Name = "Sharma Sweets"
	srv := newTestServer(t,
		&fakeTranscriber{transcript: "my business is sharma sweets"},
		&fakeExtractor{draft: draft},
	)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, audioRequest(t, "/upload_business_audio"))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data          profile.Draft `json:"data"`
		Filename      string        `json:"filename"`
		Transcription string        `json:"transcription"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "Sharma Sweets", resp.Data.Name)
	assert.Equal(t, "session_20240101_120000.json", resp.Filename)
	assert.Equal(t, "my business is sharma sweets", resp.Transcription)

	// The session file is on disk immediately.
	stored, err := srv.store.Load(resp.Filename)
	require.NoError(t, err)
	assert.Equal(t, "Sharma Sweets", stored.Name)
}

func TestBusinessUpload_NoAudio(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/upload_business_audio", strings.NewReader(""))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No audio file provided")
}

func TestProductUpload_ReplacesProducts(t *testing.T) {
	draft := profile.NewDraft()
	draft.Name = "Sharma Sweets"
	draft.Products = []profile.Product{{Name: "Ladoo", Unit: "kg", Quantity: 1}}
	srv := newTestServer(t,
		&fakeTranscriber{transcript: "we sell jalebi at 200 rupees per kg"},
		&fakeExtractor{
			draft:    draft,
			products: []profile.Product{{Name: "Jalebi", Price: 200, Unit: "kg", Quantity: 1}},
		},
	)

	// Business upload first so the session exists.
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, audioRequest(t, "/upload_business_audio"))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, audioRequest(t, "/upload_product_audio"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data     profile.Draft `json:"data"`
		Filename string        `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// The extracted list replaces the one from the business phase, while
	// business fields survive.
	assert.Equal(t, "session_20240101_120000.json", resp.Filename)
	assert.Equal(t, "Sharma Sweets", resp.Data.Name)
	require.Len(t, resp.Data.Products, 1)
	assert.Equal(t, "Jalebi", resp.Data.Products[0].Name)
}

func TestProductUpload_WithoutSessionCreatesBlankOne(t *testing.T) {
	srv := newTestServer(t,
		&fakeTranscriber{transcript: "two kg tomatoes"},
		&fakeExtractor{products: []profile.Product{{Name: "Tomato", Unit: "kg", Quantity: 2}}},
	)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, audioRequest(t, "/upload_product_audio"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data     profile.Draft `json:"data"`
		Filename string        `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "session_20240101_120000.json", resp.Filename)
	assert.Empty(t, resp.Data.Name)
	require.Len(t, resp.Data.Products, 1)
	assert.Equal(t, "Tomato", resp.Data.Products[0].Name)
}

func TestSave_RoundTrip(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	draft := profile.NewDraft()
	draft.Name = "Acme"
	body, err := json.Marshal(map[string]interface{}{
		"filename": "session_20240101_120000.json",
		"data":     draft,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Data saved successfully")

	stored, err := srv.store.Load("session_20240101_120000.json")
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Name)
}

func TestSave_MissingFields(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	for _, body := range []string{
		`{}`,
		`{"filename":"session_20240101_120000.json"}`,
		`{"data":{"name":"Acme"}}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/save", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		assert.Contains(t, w.Body.String(), "Missing filename or data")
	}
}

func TestGetSessions_ListsStoredSessions(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	draft := profile.NewDraft()
	draft.Name = "Acme"
	require.NoError(t, srv.store.Save("session_20240101_120000.json", draft))

	req := httptest.NewRequest(http.MethodGet, "/get_sessions", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var sessions []profile.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "session_20240101_120000.json", sessions[0].Filename)
	assert.Equal(t, "Acme", sessions[0].Data.Name)
}

func TestGetSession_NotFound(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/get_session/session_20990101_000000.json", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Session file not found")
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})
	require.NoError(t, srv.store.Save("session_20240101_120000.json", profile.NewDraft()))

	req := httptest.NewRequest(http.MethodDelete, "/delete_session/session_20240101_120000.json", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Session deleted successfully")

	_, err := srv.store.Load("session_20240101_120000.json")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteSession_NotFound(t *testing.T) {
	srv := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodDelete, "/delete_session/session_20990101_000000.json", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Session file not found")
}

func TestDeleteActiveSession_EndsIt(t *testing.T) {
	srv := newTestServer(t,
		&fakeTranscriber{transcript: "sharma sweets"},
		&fakeExtractor{draft: profile.NewDraft()},
	)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, audioRequest(t, "/upload_business_audio"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session_20240101_120000.json", srv.session.current())

	req := httptest.NewRequest(http.MethodDelete, "/delete_session/session_20240101_120000.json", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, srv.session.current())
}
