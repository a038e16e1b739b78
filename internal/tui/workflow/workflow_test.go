package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"

	"github.com/bizvoice/intake/internal/audio"
	"github.com/bizvoice/intake/internal/extraction"
	"github.com/bizvoice/intake/internal/profile"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

const (
	checkInterval = 100 * time.Millisecond
	checkTimeout  = 3 * time.Second
)

var errSessionNotFound = errors.New("session file not found")

type outputChecker struct {
	intervl, timeout time.Duration
}

func newOutputChecker() outputChecker {
	return outputChecker{intervl: checkInterval, timeout: checkTimeout}
}

func (o outputChecker) Check(t *testing.T, tm *teatest.TestModel, check func(buf []byte) bool) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), check,
		teatest.WithCheckInterval(o.intervl),
		teatest.WithDuration(o.timeout))
}

func (o outputChecker) CheckString(t *testing.T, tm *teatest.TestModel, substr string) {
	t.Helper()
	o.Check(t, tm, func(buf []byte) bool {
		return bytes.Contains(buf, []byte(substr))
	})
}

// fakeKnob is a bool-backed mic state read by the recording phase.
type fakeKnob struct {
	mu sync.Mutex
	on bool
}

func (k *fakeKnob) Read() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.on
}

func (k *fakeKnob) On() { k.set(true) }

func (k *fakeKnob) Off() { k.set(false) }

func (k *fakeKnob) Toggle() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.on = !k.on
}

func (k *fakeKnob) set(v bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.on = v
}

// fakeDial reports fixed buffered bytes against a cap.
type fakeDial struct {
	current, max int64
}

func (d fakeDial) Read() int64 { return d.current }

func (d fakeDial) Cap() (int64, int64) { return d.current, d.max }

// fakeRecorder flips the knob so the phase view tracks mic state. A stop
// hands back the configured blob.
type fakeRecorder struct {
	mu      sync.Mutex
	knob    *fakeKnob
	blob    *audio.Blob
	err     error
	toggles int
}

func (r *fakeRecorder) Toggle(_ context.Context, _ audio.Slot) (*audio.Blob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toggles++

	if r.err != nil {
		return nil, r.err
	}

	if !r.knob.Read() {
		r.knob.On()

		return nil, nil
	}

	r.knob.Off()

	return r.blob, nil
}

func (r *fakeRecorder) toggleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.toggles
}

// fakeUploader returns a canned result or error and counts calls.
type fakeUploader struct {
	mu     sync.Mutex
	result *extraction.Result
	err    error
	calls  int
	lastEP extraction.EndpointID
}

func (u *fakeUploader) Upload(_ context.Context, endpoint extraction.EndpointID, _ *audio.Blob) (*extraction.Result, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.lastEP = endpoint

	if u.err != nil {
		return nil, u.err
	}

	return u.result, nil
}

func (u *fakeUploader) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.calls
}

// fakeStore is an in-memory ProfileStore.
type fakeStore struct {
	mu        sync.Mutex
	saved     map[string]*profile.Draft
	saveErr   error
	saveCalls int
	loadCalls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string]*profile.Draft{}}
}

func (s *fakeStore) Save(_ context.Context, filename string, draft *profile.Draft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++

	if s.saveErr != nil {
		return "", s.saveErr
	}

	if filename == "" {
		filename = "session_20240101_120000.json"
	}

	clone := *draft
	s.saved[filename] = &clone

	return filename, nil
}

func (s *fakeStore) List(_ context.Context) ([]profile.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]profile.Summary, 0, len(s.saved))
	for filename, draft := range s.saved {
		summaries = append(summaries, profile.Summary{Filename: filename, Data: *draft})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Filename < summaries[j].Filename
	})

	return summaries, nil
}

func (s *fakeStore) Load(_ context.Context, filename string) (*profile.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls = append(s.loadCalls, filename)

	draft, ok := s.saved[filename]
	if !ok {
		return nil, errSessionNotFound
	}

	clone := *draft

	return &clone, nil
}

func (s *fakeStore) Delete(_ context.Context, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.saved[filename]; !ok {
		return errSessionNotFound
	}
	delete(s.saved, filename)

	return nil
}

func (s *fakeStore) savedDraft(filename string) *profile.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saved[filename]
}

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveCalls
}
