package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bizvoice/intake/internal/audio"
	"github.com/bizvoice/intake/internal/extraction"
	"github.com/bizvoice/intake/internal/profile"
	"github.com/bizvoice/intake/internal/tui/components/labeledspinner"
	"github.com/bizvoice/intake/internal/tui/components/phases"
	"github.com/bizvoice/intake/internal/tui/style"
	"github.com/bizvoice/intake/pkg/uictl"
)

// RecordingControls provides read access to recording hardware state.
type RecordingControls struct {
	// Active reflects whether the microphone is live.
	Active uictl.Knob
	// Buffered reports captured bytes against the take budget.
	Buffered uictl.CappedDial[int64]
}

// recordingKeyMap defines the key bindings for a recording phase.
type recordingKeyMap struct {
	Toggle   key.Binding
	Continue key.Binding
	Back     key.Binding
}

func defaultRecordingKeyMap() recordingKeyMap {
	return recordingKeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start/stop recording"),
		),
		Continue: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		Back: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "back"),
		),
	}
}

// recordingPhase drives one slot through record, stop, upload. The toggle
// is a no-op while an upload is in flight so takes never interleave with
// their own extraction.
type recordingPhase struct {
	ctx      context.Context
	keys     recordingKeyMap
	slot     audio.Slot
	phase    profile.Phase
	title    string
	prompt   string
	recorder Recorder
	uploader Uploader
	controls RecordingControls

	spinner   spinner.Model
	stopwatch stopwatch.Model
	progress  progress.Model
	uploadUI  labeledspinner.Model

	stopping  bool
	uploading bool
	errText   string
}

// NewRecording creates the recording phase for one intake slot.
func NewRecording(
	ctx context.Context,
	slot audio.Slot,
	recorder Recorder,
	uploader Uploader,
	controls RecordingControls,
) tea.Model {
	s := spinner.New()
	s.Spinner = spinner.Points

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	phaseID := profile.PhaseBusiness
	title := PhaseNameBusiness
	prompt := "Describe your business: name, owner, address, contact details, GST number."
	if slot == audio.SlotProducts {
		phaseID = profile.PhaseProducts
		title = PhaseNameProducts
		prompt = "List your products with prices, units, and quantities."
	}

	return &recordingPhase{
		ctx:      ctx,
		keys:     defaultRecordingKeyMap(),
		slot:     slot,
		phase:    phaseID,
		title:    title,
		prompt:   prompt,
		recorder: recorder,
		uploader: uploader,
		controls: controls,
		spinner:  s,
		uploadUI: labeledspinner.New(
			spinner.Dot,
			"Uploading recording...",
			"Transcribing and extracting details",
			"This may take a moment depending on recording length",
		),
		stopwatch: stopwatch.New(),
		progress:  p,
	}
}

// Init returns the initial command for the recording phase.
func (r *recordingPhase) Init() tea.Cmd {
	return r.spinner.Tick
}

// Update handles messages for the recording phase.
func (r *recordingPhase) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch typedMsg := teaMsg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(typedMsg, r.keys.Toggle):
			if r.uploading || r.stopping {
				return r, nil
			}
			r.errText = ""
			if r.IsRecording() {
				r.stopping = true
				cmds = append(cmds, r.stopwatch.Stop())
			} else {
				cmds = append(cmds, r.stopwatch.Reset(), r.stopwatch.Start())
			}
			cmds = append(cmds, r.toggleCmd())

			return r, tea.Batch(cmds...)

		case key.Matches(typedMsg, r.keys.Continue):
			if r.uploading || r.stopping || r.IsRecording() {
				return r, nil
			}

			return r, phases.NextPhaseCmd

		case key.Matches(typedMsg, r.keys.Back):
			if r.uploading || r.stopping || r.IsRecording() {
				return r, nil
			}

			return r, phases.PrevPhaseCmd
		}

	case recordingStartedMsg:
		return r, nil

	case recordingStoppedMsg:
		if typedMsg.Slot != r.slot {
			return r, nil
		}
		r.stopping = false
		r.uploading = true

		return r, tea.Batch(r.uploadUI.Init(), r.uploadCmd(typedMsg.Blob))

	case RecordingErrMsg:
		if typedMsg.Slot != r.slot {
			return r, nil
		}
		r.stopping = false
		r.errText = typedMsg.Err.Error()
		cmds = append(cmds, r.stopwatch.Stop(), r.stopwatch.Reset())

		return r, tea.Batch(cmds...)

	case UploadCompleteMsg:
		if typedMsg.Phase != r.phase {
			return r, nil
		}
		r.uploading = false

		return r, phases.NextPhaseCmd

	case UploadErrMsg:
		if typedMsg.Phase != r.phase {
			return r, nil
		}
		r.uploading = false
		r.errText = typedMsg.Err.Error()
		cmds = append(cmds, r.stopwatch.Reset())

		return r, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spinner, cmd = r.spinner.Update(typedMsg)
		cmds = append(cmds, cmd)
		r.uploadUI, cmd = r.uploadUI.Update(typedMsg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := r.progress.Update(typedMsg)
		r.progress = progressModel.(progress.Model) //nolint:forcetypeassert // bubbles library contract
		cmds = append(cmds, cmd)
	}

	var stopwatchCmd tea.Cmd
	r.stopwatch, stopwatchCmd = r.stopwatch.Update(teaMsg)
	if stopwatchCmd != nil {
		cmds = append(cmds, stopwatchCmd)
	}

	return r, tea.Batch(cmds...)
}

// View renders the recording phase UI.
func (r *recordingPhase) View() string {
	if r.uploading {
		return r.uploadUI.View()
	}

	var sb strings.Builder

	sb.WriteString(style.Subtitle.Render(r.prompt))
	sb.WriteString("\n\n")

	if r.IsRecording() {
		sb.WriteString(r.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(style.Title.Render("Recording"))
		sb.WriteString(" ")
		sb.WriteString(style.Subtitle.Render(r.stopwatch.View()))
	} else {
		sb.WriteString(style.Warning.Render("Idle"))
		sb.WriteString(" ")
		sb.WriteString(style.Subtitle.Render(r.stopwatch.View()))
	}

	sb.WriteString("\n\n")

	// Take size against budget
	current, maxValue := r.controls.Buffered.Cap()
	percent := float64(0)
	if maxValue > 0 {
		percent = float64(current) / float64(maxValue)
	}

	sb.WriteString(r.progress.ViewAs(percent))
	sb.WriteString("\n")
	sb.WriteString(style.Subtitle.Render(formatBytes(current, maxValue)))
	sb.WriteString("\n\n")

	if r.errText != "" {
		sb.WriteString(style.Error.Render("Error: " + r.errText))
		sb.WriteString("\n\n")
	}

	sb.WriteString(renderKeyHelp(r.keys.Toggle, " "))
	sb.WriteString(renderKeyHelp(r.keys.Continue, " "))
	if r.slot == audio.SlotProducts {
		sb.WriteString(renderKeyHelp(r.keys.Back, ""))
	}

	return sb.String()
}

// IsRecording returns whether the microphone is currently live.
func (r *recordingPhase) IsRecording() bool {
	return r.controls.Active.Read()
}

// toggleCmd flips the recorder for this slot. A start resolves to
// recordingStartedMsg; a stop resolves to the encoded take.
func (r *recordingPhase) toggleCmd() tea.Cmd {
	return func() tea.Msg {
		blob, err := r.recorder.Toggle(r.ctx, r.slot)
		if err != nil {
			return RecordingErrMsg{Slot: r.slot, Err: err}
		}
		if blob == nil {
			return recordingStartedMsg{Slot: r.slot}
		}

		return recordingStoppedMsg{Slot: r.slot, Blob: blob}
	}
}

// uploadCmd sends the take to the backend for this slot's endpoint.
func (r *recordingPhase) uploadCmd(blob *audio.Blob) tea.Cmd {
	return func() tea.Msg {
		result, err := r.uploader.Upload(r.ctx, extraction.EndpointForSlot(r.slot), blob)
		if err != nil {
			return UploadErrMsg{Phase: r.phase, Err: err}
		}

		return UploadCompleteMsg{Phase: r.phase, Result: result}
	}
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(current, maxBytes int64) string {
	currentMB := float64(current) / (1024 * 1024)
	maxMB := float64(maxBytes) / (1024 * 1024)

	if maxBytes == 0 {
		return fmt.Sprintf("%.1f MB / unlimited", currentMB)
	}

	percent := int(float64(current) / float64(maxBytes) * 100)

	return fmt.Sprintf("%.1f MB / %.1f MB (%d%%)", currentMB, maxMB, percent)
}
