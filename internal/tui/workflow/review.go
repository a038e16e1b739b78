package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bizvoice/intake/internal/profile"
	"github.com/bizvoice/intake/internal/tui/components/phases"
	"github.com/bizvoice/intake/internal/tui/style"
)

// ErrNoDraft means an edit was requested before any extraction result or
// stored profile populated the session.
var ErrNoDraft = errors.New("no draft to edit: record or load a profile first")

// businessFields is the edit order of the scalar fields, keyed by wire name.
var businessFields = []struct {
	label string
	name  string
}{
	{"Owner Name", "personName"},
	{"Business Name", "name"},
	{"Address", "address"},
	{"City", "city"},
	{"State", "state"},
	{"Pincode", "pincode"},
	{"GST Number", "gstNumber"},
	{"Category", "category"},
	{"Subcategory", "subcategory"},
	{"Email", "email"},
	{"Phone", "phone"},
	{"Website", "website"},
	{"Established Year", "establishedYear"},
}

// productFields is the edit order of a product's fields.
var productFields = []struct {
	label string
	name  string
}{
	{"Name", "name"},
	{"Price", "price"},
	{"Category", "category"},
	{"Description", "description"},
	{"Unit", "unit"},
	{"Quantity", "quantity"},
}

// reviewState is the edit controller's mode.
type reviewState int

const (
	stateViewing reviewState = iota
	stateEditingBusiness
	stateEditingProducts
	stateEditingProduct
)

// confirmState is a pending yes/no question layered over the review view.
type confirmState struct {
	prompt string
	yes    func() tea.Cmd
}

type reviewKeyMap struct {
	EditBusiness key.Binding
	EditProducts key.Binding
	Save         key.Binding
	StartOver    key.Binding
	Back         key.Binding

	Up     key.Binding
	Down   key.Binding
	Commit key.Binding
	Cancel key.Binding

	Add    key.Binding
	Delete key.Binding
	Open   key.Binding
}

func defaultReviewKeyMap() reviewKeyMap {
	return reviewKeyMap{
		EditBusiness: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit details"),
		),
		EditProducts: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "edit products"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		StartOver: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "start over"),
		),
		Back: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "shift+tab"),
			key.WithHelp("up", "previous field"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "tab"),
			key.WithHelp("down", "next field"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply and save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add product"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete product"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter/e", "edit product"),
		),
	}
}

// reviewPhase shows the extracted draft and drives all manual edits. Field
// commits write through the draft and save to the backend in one step.
type reviewPhase struct {
	ctx     context.Context
	keys    reviewKeyMap
	session *Session
	store   ProfileStore

	state   reviewState
	inputs  []textinput.Model
	focus   int
	initial []string

	prodCursor int
	prodIndex  int

	confirm *confirmState
	status  string
	errText string
	saving  bool
}

// NewReview creates the review phase over the shared session.
func NewReview(ctx context.Context, session *Session, store ProfileStore) tea.Model {
	return &reviewPhase{
		ctx:     ctx,
		keys:    defaultReviewKeyMap(),
		session: session,
		store:   store,
		state:   stateViewing,
	}
}

func (rp *reviewPhase) Init() tea.Cmd {
	// A fresh entry always lands on the summary view.
	rp.state = stateViewing
	rp.confirm = nil
	rp.errText = ""

	return textinput.Blink
}

//nolint:funlen // State machine dispatch
func (rp *reviewPhase) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMsg := teaMsg.(type) {
	case SaveCompleteMsg:
		rp.saving = false
		rp.status = "Saved: " + typedMsg.Filename
		rp.errText = ""
		// A business-form commit returns to the summary; product saves
		// stay on the list.
		if rp.state == stateEditingBusiness {
			rp.state = stateViewing
		}

		return rp, nil

	case SaveErrMsg:
		// Stay wherever we were so no edit is lost.
		rp.saving = false
		rp.errText = typedMsg.Err.Error()

		return rp, nil

	case tea.KeyMsg:
		if rp.confirm != nil {
			return rp.updateConfirm(typedMsg)
		}

		switch rp.state {
		case stateViewing:
			return rp.updateViewing(typedMsg)
		case stateEditingBusiness:
			return rp.updateEditingBusiness(typedMsg)
		case stateEditingProducts:
			return rp.updateEditingProducts(typedMsg)
		case stateEditingProduct:
			return rp.updateEditingProduct(typedMsg)
		}
	}

	return rp.updateFocusedInput(teaMsg)
}

func (rp *reviewPhase) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		yes := rp.confirm.yes
		rp.confirm = nil

		return rp, yes()
	case "n", "N", "esc":
		rp.confirm = nil

		return rp, nil
	}

	return rp, nil
}

func (rp *reviewPhase) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, rp.keys.EditBusiness):
		if !rp.session.HasDraft() {
			rp.errText = ErrNoDraft.Error()

			return rp, nil
		}
		rp.enterBusinessEdit()

		return rp, textinput.Blink

	case key.Matches(msg, rp.keys.EditProducts):
		if !rp.session.HasDraft() {
			rp.errText = ErrNoDraft.Error()

			return rp, nil
		}
		rp.state = stateEditingProducts
		rp.prodCursor = 0
		rp.errText = ""

		return rp, nil

	case key.Matches(msg, rp.keys.Save):
		if !rp.session.HasDraft() {
			rp.errText = "nothing to save yet"

			return rp, nil
		}

		return rp, rp.saveCmd()

	case key.Matches(msg, rp.keys.StartOver):
		rp.confirm = &confirmState{
			prompt: "Discard this session and start over?",
			yes: func() tea.Cmd {
				return func() tea.Msg { return ResetSessionMsg{} }
			},
		}

		return rp, nil

	case key.Matches(msg, rp.keys.Back):
		return rp, phases.PrevPhaseCmd
	}

	return rp, nil
}

// enterBusinessEdit builds one input per scalar field from the draft.
func (rp *reviewPhase) enterBusinessEdit() {
	rp.inputs = make([]textinput.Model, len(businessFields))
	rp.initial = make([]string, len(businessFields))

	for i, field := range businessFields {
		value, _ := rp.session.Draft.Field(field.name)

		in := textinput.New()
		in.Prompt = ""
		in.SetValue(value)
		in.CharLimit = 120
		rp.inputs[i] = in
		rp.initial[i] = value
	}

	rp.focus = 0
	rp.inputs[0].Focus()
	rp.state = stateEditingBusiness
	rp.errText = ""
	rp.status = ""
}

func (rp *reviewPhase) updateEditingBusiness(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, rp.keys.Up):
		rp.moveFocus(-1)

		return rp, textinput.Blink

	case key.Matches(msg, rp.keys.Down):
		rp.moveFocus(1)

		return rp, textinput.Blink

	case key.Matches(msg, rp.keys.Commit):
		for i, field := range businessFields {
			if err := rp.session.Draft.SetField(field.name, rp.inputs[i].Value()); err != nil {
				rp.errText = err.Error()

				return rp, nil
			}
		}

		return rp, rp.saveCmd()

	case key.Matches(msg, rp.keys.Cancel):
		if rp.dirty() {
			rp.confirm = &confirmState{
				prompt: "Discard unsaved edits?",
				yes: func() tea.Cmd {
					rp.state = stateViewing

					return nil
				},
			}

			return rp, nil
		}
		rp.state = stateViewing

		return rp, nil
	}

	return rp.updateFocusedInput(msg)
}

func (rp *reviewPhase) updateEditingProducts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	products := rp.session.Draft.Products

	switch {
	case key.Matches(msg, rp.keys.Up):
		if rp.prodCursor > 0 {
			rp.prodCursor--
		}

		return rp, nil

	case key.Matches(msg, rp.keys.Down):
		if rp.prodCursor < len(products)-1 {
			rp.prodCursor++
		}

		return rp, nil

	case key.Matches(msg, rp.keys.Add):
		index := rp.session.Draft.AddProduct()
		rp.enterProductEdit(index)

		return rp, textinput.Blink

	case key.Matches(msg, rp.keys.Delete):
		if len(products) == 0 {
			return rp, nil
		}
		index := rp.prodCursor
		rp.confirm = &confirmState{
			prompt: fmt.Sprintf("Delete product %d?", index+1),
			yes: func() tea.Cmd {
				if err := rp.session.Draft.RemoveProduct(index); err != nil {
					rp.errText = err.Error()

					return nil
				}
				if rp.prodCursor >= len(rp.session.Draft.Products) && rp.prodCursor > 0 {
					rp.prodCursor--
				}

				return rp.saveCmd()
			},
		}

		return rp, nil

	case key.Matches(msg, rp.keys.Open):
		if len(products) == 0 {
			return rp, nil
		}
		rp.enterProductEdit(rp.prodCursor)

		return rp, textinput.Blink

	case key.Matches(msg, rp.keys.Cancel):
		rp.state = stateViewing

		return rp, nil
	}

	return rp, nil
}

// enterProductEdit builds one input per product field for the given index.
func (rp *reviewPhase) enterProductEdit(index int) {
	p := rp.session.Draft.Products[index]
	values := []string{
		p.Name,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		p.Category,
		p.Description,
		p.Unit,
		strconv.Itoa(p.Quantity),
	}

	rp.inputs = make([]textinput.Model, len(productFields))
	rp.initial = make([]string, len(productFields))

	for i := range productFields {
		in := textinput.New()
		in.Prompt = ""
		in.SetValue(values[i])
		in.CharLimit = 120
		rp.inputs[i] = in
		rp.initial[i] = values[i]
	}

	rp.focus = 0
	rp.inputs[0].Focus()
	rp.prodIndex = index
	rp.state = stateEditingProduct
	rp.errText = ""
	rp.status = ""
}

func (rp *reviewPhase) updateEditingProduct(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, rp.keys.Up):
		rp.moveFocus(-1)

		return rp, textinput.Blink

	case key.Matches(msg, rp.keys.Down):
		rp.moveFocus(1)

		return rp, textinput.Blink

	case key.Matches(msg, rp.keys.Commit):
		for i, field := range productFields {
			if err := rp.session.Draft.UpdateProductField(rp.prodIndex, field.name, rp.inputs[i].Value()); err != nil {
				rp.errText = err.Error()

				return rp, nil
			}
		}
		rp.state = stateEditingProducts

		return rp, rp.saveCmd()

	case key.Matches(msg, rp.keys.Cancel):
		if rp.dirty() {
			rp.confirm = &confirmState{
				prompt: "Discard unsaved edits?",
				yes: func() tea.Cmd {
					rp.state = stateEditingProducts

					return nil
				},
			}

			return rp, nil
		}
		rp.state = stateEditingProducts

		return rp, nil
	}

	return rp.updateFocusedInput(msg)
}

func (rp *reviewPhase) moveFocus(delta int) {
	rp.inputs[rp.focus].Blur()
	rp.focus += delta
	if rp.focus < 0 {
		rp.focus = len(rp.inputs) - 1
	}
	if rp.focus >= len(rp.inputs) {
		rp.focus = 0
	}
	rp.inputs[rp.focus].Focus()
}

// dirty reports whether any input differs from the value it opened with.
func (rp *reviewPhase) dirty() bool {
	for i := range rp.inputs {
		if rp.inputs[i].Value() != rp.initial[i] {
			return true
		}
	}

	return false
}

func (rp *reviewPhase) updateFocusedInput(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	if rp.state != stateEditingBusiness && rp.state != stateEditingProduct {
		return rp, nil
	}

	var cmd tea.Cmd
	rp.inputs[rp.focus], cmd = rp.inputs[rp.focus].Update(teaMsg)

	return rp, cmd
}

// saveCmd persists the draft under the session filename. An empty filename
// lets the store assign a fresh one.
func (rp *reviewPhase) saveCmd() tea.Cmd {
	filename := rp.session.Filename
	draft := rp.session.Draft
	rp.saving = true

	return func() tea.Msg {
		saved, err := rp.store.Save(rp.ctx, filename, draft)
		if err != nil {
			return SaveErrMsg{Err: err}
		}

		return SaveCompleteMsg{Filename: saved}
	}
}

//nolint:funlen // Rendering all review modes
func (rp *reviewPhase) View() string {
	var sb strings.Builder

	if rp.confirm != nil {
		sb.WriteString(style.Warning.Render(rp.confirm.prompt))
		sb.WriteString("\n\n")
		sb.WriteString(style.Help.Render("[y] yes  [n] no"))

		return sb.String()
	}

	switch rp.state {
	case stateEditingBusiness:
		sb.WriteString(style.Title.Render("Edit Business Details"))
		sb.WriteString("\n\n")
		for i, field := range businessFields {
			marker := "  "
			if i == rp.focus {
				marker = style.Selected.Render("> ")
			}
			sb.WriteString(marker)
			sb.WriteString(style.Label.Render(fmt.Sprintf("%-17s", field.label+":")))
			sb.WriteString(" ")
			sb.WriteString(rp.inputs[i].View())
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		rp.writeStatus(&sb)
		sb.WriteString(renderKeyHelp(rp.keys.Commit, " "))
		sb.WriteString(renderKeyHelp(rp.keys.Cancel, ""))

	case stateEditingProducts:
		sb.WriteString(style.Title.Render("Edit Products"))
		sb.WriteString("\n\n")
		products := rp.session.Draft.Products
		if len(products) == 0 {
			sb.WriteString(style.Muted.Render("No products yet."))
			sb.WriteString("\n")
		}
		for i, p := range products {
			marker := "  "
			if i == rp.prodCursor {
				marker = style.Selected.Render("> ")
			}
			name := p.Name
			if name == "" {
				name = "(unnamed)"
			}
			sb.WriteString(marker)
			sb.WriteString(fmt.Sprintf("%s  %s %.2f  %d %s", name, style.Muted.Render("₹"), p.Price, p.Quantity, p.Unit))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		rp.writeStatus(&sb)
		sb.WriteString(renderKeyHelp(rp.keys.Open, " "))
		sb.WriteString(renderKeyHelp(rp.keys.Add, " "))
		sb.WriteString(renderKeyHelp(rp.keys.Delete, " "))
		sb.WriteString(renderKeyHelp(rp.keys.Cancel, ""))

	case stateEditingProduct:
		sb.WriteString(style.Title.Render(fmt.Sprintf("Edit Product %d", rp.prodIndex+1)))
		sb.WriteString("\n\n")
		for i, field := range productFields {
			marker := "  "
			if i == rp.focus {
				marker = style.Selected.Render("> ")
			}
			sb.WriteString(marker)
			sb.WriteString(style.Label.Render(fmt.Sprintf("%-12s", field.label+":")))
			sb.WriteString(" ")
			sb.WriteString(rp.inputs[i].View())
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		rp.writeStatus(&sb)
		sb.WriteString(renderKeyHelp(rp.keys.Commit, " "))
		sb.WriteString(renderKeyHelp(rp.keys.Cancel, ""))

	default:
		rp.writeSummary(&sb)
	}

	return sb.String()
}

func (rp *reviewPhase) writeSummary(sb *strings.Builder) {
	sb.WriteString(style.Title.Render("Review Profile"))
	sb.WriteString("\n")

	if rp.session.Filename != "" {
		sb.WriteString(style.Muted.Render(rp.session.Filename + "  " + profile.DisplayDate(rp.session.Filename)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	draft := rp.session.Draft
	for _, field := range businessFields {
		value, _ := draft.Field(field.name)
		display := value
		if display == "" {
			display = "-"
		}
		sb.WriteString(style.Label.Render(fmt.Sprintf("%-17s", field.label+":")))
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf("%-28s", display))
		sb.WriteString(" ")
		sb.WriteString(renderConfidence(profile.FieldConfidence(value)))
		sb.WriteString("\n")
	}

	sb.WriteString(style.Label.Render(fmt.Sprintf("%-17s", "Products:")))
	sb.WriteString(" ")
	sb.WriteString(fmt.Sprintf("%-28s", draft.SummaryText()))
	sb.WriteString(" ")
	sb.WriteString(renderConfidence(draft.ProductsConfidence()))
	sb.WriteString("\n\n")

	if rp.session.BusinessTranscript != "" {
		sb.WriteString(style.Muted.Render("Heard: " + rp.session.BusinessTranscript))
		sb.WriteString("\n")
	}
	if rp.session.ProductTranscript != "" {
		sb.WriteString(style.Muted.Render("Heard: " + rp.session.ProductTranscript))
		sb.WriteString("\n")
	}
	if rp.session.BusinessTranscript != "" || rp.session.ProductTranscript != "" {
		sb.WriteString("\n")
	}

	rp.writeStatus(sb)

	sb.WriteString(renderKeyHelp(rp.keys.EditBusiness, " "))
	sb.WriteString(renderKeyHelp(rp.keys.EditProducts, " "))
	sb.WriteString(renderKeyHelp(rp.keys.Save, " "))
	sb.WriteString(renderKeyHelp(rp.keys.StartOver, " "))
	sb.WriteString(renderKeyHelp(rp.keys.Back, ""))
}

func (rp *reviewPhase) writeStatus(sb *strings.Builder) {
	if rp.saving {
		sb.WriteString(style.Subtitle.Render("Saving..."))
		sb.WriteString("\n\n")
	}
	if rp.status != "" {
		sb.WriteString(style.Success.Render(rp.status))
		sb.WriteString("\n\n")
	}
	if rp.errText != "" {
		sb.WriteString(style.Error.Render("Error: " + rp.errText))
		sb.WriteString("\n\n")
	}
}
