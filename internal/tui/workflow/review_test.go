//nolint:funlen // Test file
package workflow_test

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/bizvoice/intake/internal/profile"
	"github.com/bizvoice/intake/internal/tui/workflow"
)

func reviewSession() *workflow.Session {
	session := workflow.NewSession()
	session.Draft.PersonName = "Ramesh Kumar"
	session.Draft.Name = "Sharma Sweets"
	session.Draft.City = "Jaipur"
	session.Draft.Products = []profile.Product{
		{Name: "Ladoo", Price: 350, Unit: "kg", Quantity: 2, Category: "Food"},
		{Name: "Jalebi", Price: 200, Unit: "kg", Quantity: 1, Category: "Food"},
	}
	session.SetSaved("session_20240101_120000.json")

	return session
}

func sendRunes(tm *teatest.TestModel, runes string) {
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(runes)})
}

func TestReviewSummaryView(t *testing.T) {
	checker := newOutputChecker()
	session := reviewSession()
	store := newFakeStore()

	phase := workflow.NewReview(context.Background(), session, store)
	tm := teatest.NewTestModel(t, phase, teatest.WithInitialTermSize(300, 100))

	checker.CheckString(t, tm, "Review Profile")
	checker.CheckString(t, tm, "session_20240101_120000.json")
	checker.CheckString(t, tm, "Sharma Sweets")
	checker.CheckString(t, tm, "Ladoo, Jalebi")
	// Filled long fields read High, empty ones Low.
	checker.CheckString(t, tm, "[High]")
	checker.CheckString(t, tm, "[Low]")
}

func TestReviewEditAndSave(t *testing.T) {
	checker := newOutputChecker()
	session := reviewSession()
	store := newFakeStore()

	phase := workflow.NewReview(context.Background(), session, store)
	tm := teatest.NewTestModel(t, phase, teatest.WithInitialTermSize(300, 100))

	t.Run("edit opens the business form", func(t *testing.T) {
		sendRunes(tm, "e")
		checker.CheckString(t, tm, "Edit Business Details")
		checker.CheckString(t, tm, "Ramesh Kumar")
	})

	t.Run("typing edits the focused field and enter commits", func(t *testing.T) {
		sendRunes(tm, "ji")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
		checker.CheckString(t, tm, "Saved: session_20240101_120000.json")
		checker.CheckString(t, tm, "Review Profile")

		require.Eventually(t, func() bool {
			return store.saveCount() == 1
		}, checkTimeout, checkInterval)

		saved := store.savedDraft("session_20240101_120000.json")
		require.NotNil(t, saved)
		require.Equal(t, "Ramesh Kumarji", saved.PersonName)
		require.Equal(t, "Ramesh Kumarji", session.Draft.PersonName)
	})
}

func TestReviewSaveFailureStaysEditing(t *testing.T) {
	checker := newOutputChecker()
	session := reviewSession()
	store := newFakeStore()
	store.saveErr = errors.New("disk full")

	phase := workflow.NewReview(context.Background(), session, store)
	tm := teatest.NewTestModel(t, phase, teatest.WithInitialTermSize(300, 100))

	sendRunes(tm, "e")
	checker.CheckString(t, tm, "Edit Business Details")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	checker.CheckString(t, tm, "Error: disk full")
	checker.CheckString(t, tm, "Edit Business Details")
}

func TestReviewRequiresDraft(t *testing.T) {
	checker := newOutputChecker()
	session := workflow.NewSession()
	store := newFakeStore()

	phase := workflow.NewReview(context.Background(), session, store)
	tm := teatest.NewTestModel(t, phase, teatest.WithInitialTermSize(300, 100))

	sendRunes(tm, "e")
	checker.CheckString(t, tm, "no draft to edit")
	require.Zero(t, store.saveCount())
}

func TestReviewDirtyCancelAsksFirst(t *testing.T) {
	checker := newOutputChecker()
	session := reviewSession()
	store := newFakeStore()

	phase := workflow.NewReview(context.Background(), session, store)
	tm := teatest.NewTestModel(t, phase, teatest.WithInitialTermSize(300, 100))

	sendRunes(tm, "e")
	checker.CheckString(t, tm, "Edit Business Details")

	sendRunes(tm, "X")
	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	checker.CheckString(t, tm, "Discard unsaved edits?")

	sendRunes(tm, "y")
	checker.CheckString(t, tm, "Review Profile")
	require.Zero(t, store.saveCount(), "a discarded edit never saves")
}

func TestReviewProductEditing(t *testing.T) {
	checker := newOutputChecker()
	session := reviewSession()
	store := newFakeStore()

	phase := workflow.NewReview(context.Background(), session, store)
	tm := teatest.NewTestModel(t, phase, teatest.WithInitialTermSize(300, 100))

	t.Run("product list shows the entries", func(t *testing.T) {
		sendRunes(tm, "p")
		checker.CheckString(t, tm, "Edit Products")
		checker.CheckString(t, tm, "Ladoo")
		checker.CheckString(t, tm, "Jalebi")
	})

	t.Run("editing a row commits and saves", func(t *testing.T) {
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
		checker.CheckString(t, tm, "Edit Product 1")

		sendRunes(tm, "s")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
		checker.CheckString(t, tm, "Saved: session_20240101_120000.json")

		require.Eventually(t, func() bool {
			return store.saveCount() == 1
		}, checkTimeout, checkInterval)

		saved := store.savedDraft("session_20240101_120000.json")
		require.NotNil(t, saved)
		require.Equal(t, "Ladoos", saved.Products[0].Name)
	})

	t.Run("deleting a row asks first then saves", func(t *testing.T) {
		tm.Send(tea.KeyMsg{Type: tea.KeyDown})
		sendRunes(tm, "d")
		checker.CheckString(t, tm, "Delete product 2?")

		sendRunes(tm, "y")
		require.Eventually(t, func() bool {
			saved := store.savedDraft("session_20240101_120000.json")

			return saved != nil && len(saved.Products) == 1
		}, checkTimeout, checkInterval)
		require.Equal(t, []profile.Product{session.Draft.Products[0]}, store.savedDraft("session_20240101_120000.json").Products)
	})
}
