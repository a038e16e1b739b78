package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bizvoice/intake/internal/profile"
	"github.com/bizvoice/intake/internal/tui/style"
)

type profilesKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Delete key.Binding
	Close  key.Binding
}

func defaultProfilesKeyMap() profilesKeyMap {
	return profilesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down", "next"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// Profiles is the saved-profile browser. The outer model shows it as an
// overlay and handles the load/close messages it emits.
type Profiles struct {
	ctx   context.Context
	keys  profilesKeyMap
	store ProfileStore

	summaries []profile.Summary
	cursor    int
	loading   bool
	confirm   *confirmState
	errText   string
}

// NewProfiles creates the browser. Init fetches the list.
func NewProfiles(ctx context.Context, store ProfileStore) *Profiles {
	return &Profiles{
		ctx:   ctx,
		keys:  defaultProfilesKeyMap(),
		store: store,
	}
}

func (pm *Profiles) Init() tea.Cmd {
	pm.loading = true
	pm.cursor = 0
	pm.confirm = nil
	pm.errText = ""

	return pm.listCmd()
}

func (pm *Profiles) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMsg := teaMsg.(type) {
	case ProfileListMsg:
		pm.loading = false
		if typedMsg.Err != nil {
			pm.errText = typedMsg.Err.Error()

			return pm, nil
		}
		pm.summaries = typedMsg.Summaries
		if pm.cursor >= len(pm.summaries) {
			pm.cursor = max(len(pm.summaries)-1, 0)
		}

		return pm, nil

	case ProfileErrMsg:
		pm.errText = typedMsg.Err.Error()

		return pm, nil

	case ProfileDeletedMsg:
		// Refetch so the list reflects the store.
		return pm, pm.listCmd()

	case tea.KeyMsg:
		return pm.updateKeys(typedMsg)
	}

	return pm, nil
}

func (pm *Profiles) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if pm.confirm != nil {
		switch msg.String() {
		case "y", "Y":
			yes := pm.confirm.yes
			pm.confirm = nil

			return pm, yes()
		case "n", "N", "esc":
			pm.confirm = nil

			return pm, nil
		}

		return pm, nil
	}

	switch {
	case key.Matches(msg, pm.keys.Up):
		if pm.cursor > 0 {
			pm.cursor--
		}

	case key.Matches(msg, pm.keys.Down):
		if pm.cursor < len(pm.summaries)-1 {
			pm.cursor++
		}

	case key.Matches(msg, pm.keys.Open):
		if len(pm.summaries) == 0 {
			return pm, nil
		}

		return pm, pm.loadCmd(pm.summaries[pm.cursor].Filename)

	case key.Matches(msg, pm.keys.Delete):
		if len(pm.summaries) == 0 {
			return pm, nil
		}
		filename := pm.summaries[pm.cursor].Filename
		pm.confirm = &confirmState{
			prompt: fmt.Sprintf("Delete %s?", filename),
			yes: func() tea.Cmd {
				return pm.deleteCmd(filename)
			},
		}

	case key.Matches(msg, pm.keys.Close):
		return pm, func() tea.Msg { return CloseProfilesMsg{} }
	}

	return pm, nil
}

func (pm *Profiles) listCmd() tea.Cmd {
	return func() tea.Msg {
		summaries, err := pm.store.List(pm.ctx)

		return ProfileListMsg{Summaries: summaries, Err: err}
	}
}

func (pm *Profiles) loadCmd(filename string) tea.Cmd {
	return func() tea.Msg {
		draft, err := pm.store.Load(pm.ctx, filename)
		if err != nil {
			return ProfileErrMsg{Err: err}
		}

		return ProfileLoadedMsg{Filename: filename, Draft: draft}
	}
}

func (pm *Profiles) deleteCmd(filename string) tea.Cmd {
	return func() tea.Msg {
		if err := pm.store.Delete(pm.ctx, filename); err != nil {
			return ProfileErrMsg{Err: err}
		}

		return ProfileDeletedMsg{Filename: filename}
	}
}

func (pm *Profiles) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("Saved Profiles"))
	sb.WriteString("\n\n")

	if pm.confirm != nil {
		sb.WriteString(style.Warning.Render(pm.confirm.prompt))
		sb.WriteString("\n\n")
		sb.WriteString(style.Help.Render("[y] yes  [n] no"))

		return sb.String()
	}

	switch {
	case pm.loading:
		sb.WriteString(style.Muted.Render("Loading..."))
		sb.WriteString("\n")
	case len(pm.summaries) == 0:
		sb.WriteString(style.Muted.Render("No saved profiles."))
		sb.WriteString("\n")
	default:
		for i, summary := range pm.summaries {
			marker := "  "
			if i == pm.cursor {
				marker = style.Selected.Render("> ")
			}
			sb.WriteString(marker)
			sb.WriteString(summary.Data.DisplayName())
			sb.WriteString("  ")
			sb.WriteString(style.Muted.Render(profile.DisplayDate(summary.Filename)))
			sb.WriteString("\n")
		}
	}

	if pm.errText != "" {
		sb.WriteString("\n")
		sb.WriteString(style.Error.Render("Error: " + pm.errText))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(renderKeyHelp(pm.keys.Open, " "))
	sb.WriteString(renderKeyHelp(pm.keys.Delete, " "))
	sb.WriteString(renderKeyHelp(pm.keys.Close, ""))

	return sb.String()
}
