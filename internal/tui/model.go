// Package tui assembles the intake terminal UI: two recording phases, the
// review phase, and the saved-profile browser overlay.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bizvoice/intake/internal/audio"
	"github.com/bizvoice/intake/internal/tui/components/phases"
	"github.com/bizvoice/intake/internal/tui/style"
	"github.com/bizvoice/intake/internal/tui/workflow"
)

// Config carries the runtime wiring the model needs.
type Config struct {
	// Cancel stops background work when the user quits.
	Cancel context.CancelFunc
	// ServerURL is shown in the footer so the user knows which backend
	// the session talks to.
	ServerURL string
}

type model struct {
	config  Config
	keys    KeyMap
	ctx     context.Context
	session *workflow.Session
	store   workflow.ProfileStore

	phases       phases.Model
	profilesUI   *workflow.Profiles
	showProfiles bool

	windowWidth  int
	windowHeight int
}

// New creates the TUI model. The session is shared by the phases; all
// mutation happens on the UI goroutine.
func New(
	ctx context.Context,
	config Config,
	recorder workflow.Recorder,
	uploader workflow.Uploader,
	store workflow.ProfileStore,
	controls workflow.RecordingControls,
) tea.Model {
	session := workflow.NewSession()

	return &model{
		config:  config,
		keys:    DefaultKeyMap(),
		ctx:     ctx,
		session: session,
		store:   store,
		phases: phases.New([]phases.Phase{
			phases.NewPhase(workflow.PhaseNameBusiness,
				workflow.NewRecording(ctx, audio.SlotBusiness, recorder, uploader, controls)),
			phases.NewPhase(workflow.PhaseNameProducts,
				workflow.NewRecording(ctx, audio.SlotProducts, recorder, uploader, controls)),
			phases.NewPhase(workflow.PhaseNameReview,
				workflow.NewReview(ctx, session, store)),
		}),
		windowWidth:  80,
		windowHeight: 24,
	}
}

// Init returns the initial command.
func (m *model) Init() tea.Cmd {
	return m.phases.Init()
}

// Update handles all messages.
//
//nolint:funlen // Top-level message routing
func (m *model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := teaMsg.(tea.WindowSizeMsg); ok {
		m.windowWidth = wsm.Width
		m.windowHeight = wsm.Height
	}

	if km, ok := teaMsg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Quit):
			if m.config.Cancel != nil {
				m.config.Cancel()
			}

			return m, tea.Quit

		case key.Matches(km, m.keys.Profiles):
			if m.showProfiles {
				m.showProfiles = false

				return m, nil
			}
			m.profilesUI = workflow.NewProfiles(m.ctx, m.store)
			m.showProfiles = true

			return m, m.profilesUI.Init()
		}

		// The overlay owns the keyboard while it is open.
		if m.showProfiles {
			return m.updateProfiles(teaMsg)
		}
	}

	// Session bookkeeping happens before the phases see the message.
	switch typedMsg := teaMsg.(type) {
	case workflow.UploadCompleteMsg:
		m.session.Apply(typedMsg.Result, typedMsg.Phase)

	case workflow.SaveCompleteMsg:
		m.session.SetSaved(typedMsg.Filename)

	case workflow.ProfileLoadedMsg:
		m.session.Load(typedMsg.Filename, typedMsg.Draft)
		m.showProfiles = false

		return m, phases.JumpToPhaseCmd(workflow.PhaseNameReview)

	case workflow.ProfileDeletedMsg:
		// The deleted profile may be the loaded one; the draft stays but
		// a later save gets a fresh filename.
		if m.session.Filename == typedMsg.Filename {
			m.session.Filename = ""
			m.session.Draft.SourceFilename = ""
		}
		if m.showProfiles {
			return m.updateProfiles(teaMsg)
		}

	case workflow.CloseProfilesMsg:
		m.showProfiles = false

		return m, nil

	case workflow.ResetSessionMsg:
		m.session.Reset()

		return m, phases.JumpToPhaseCmd(workflow.PhaseNameBusiness)

	case workflow.ProfileListMsg, workflow.ProfileErrMsg:
		if m.showProfiles {
			return m.updateProfiles(teaMsg)
		}

		return m, nil
	}

	updatedPhases, cmd := m.phases.Update(teaMsg)
	m.phases = updatedPhases.(phases.Model) //nolint:forcetypeassert // phases.Model always returns phases.Model

	return m, cmd
}

func (m *model) updateProfiles(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.profilesUI.Update(teaMsg)
	m.profilesUI = updated.(*workflow.Profiles) //nolint:forcetypeassert // Profiles always returns *Profiles

	return m, cmd
}

// View renders the current UI.
func (m *model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Subtitle.Render("Phase: " + m.phases.CurrentPhaseName()))
	sb.WriteString("\n\n")

	if m.showProfiles {
		sb.WriteString(m.profilesUI.View())
	} else {
		sb.WriteString(m.phases.View())
	}

	sb.WriteString("\n\n")
	sb.WriteString(style.Help.Render("[ctrl+p] saved profiles  [ctrl+c] quit"))
	if m.config.ServerURL != "" {
		sb.WriteString(style.Muted.Render("  " + m.config.ServerURL))
	}

	return sb.String()
}
