// Package chat provides the question/answer view for a single document.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var errNoService = errors.New("answer service not available")

// exchange is one question and its outcome in the transcript.
type exchange struct {
	question string
	answer   string
	model    string
	err      error
}

// View asks questions about one document and shows the transcript.
type View struct {
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	answerService driving.AnswerService
	owner         string
	ctx           context.Context

	input     *input.QuestionInput
	statusBar *status.Bar
	viewport  viewport.Model

	document  domain.Document
	models    []domain.Model
	model     int
	styleList []domain.PromptStyle
	style     int
	pending   bool
	exchanges []exchange

	width  int
	height int
}

// NewView creates a chat view. defaultModel is preselected when allow-listed.
func NewView(s *styles.Styles, answerService driving.AnswerService, owner string, defaultModel domain.Model) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()

	v := &View{
		styles:        s,
		keymap:        km,
		answerService: answerService,
		owner:         owner,
		ctx:           context.Background(),
		input:         input.NewQuestionInput(s),
		statusBar:     status.NewBar(s, km),
		viewport:      viewport.New(80, 10),
		models:        domain.SupportedModels(),
		// the empty style sends no instruction
		styleList: append(append([]domain.PromptStyle{}, domain.AllPromptStyles()...), ""),
	}
	for i, m := range v.models {
		if m == defaultModel {
			v.model = i
		}
	}
	v.syncStatus()
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument switches the view to doc and clears the transcript.
func (v *View) SetDocument(doc domain.Document) {
	v.document = doc
	v.exchanges = nil
	v.pending = false
	v.input.Reset()
	v.statusBar.Clear()
	v.refreshTranscript()
}

// Init focuses the input.
func (v *View) Init() tea.Cmd {
	return v.input.Focus()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.pending = false
		ex := exchange{question: msg.Question, err: msg.Err}
		if msg.Err == nil && msg.Answer != nil {
			ex.answer = msg.Answer.Text
			ex.model = msg.Answer.Model
			v.statusBar.Clear()
		} else if msg.Err != nil {
			v.statusBar.SetState(status.StateError)
			v.statusBar.SetMessage(msg.Err.Error())
		}
		v.exchanges = append(v.exchanges, ex)
		v.refreshTranscript()
		v.viewport.GotoBottom()
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	case key.Matches(msg, v.keymap.Send):
		return v, v.ask()
	case key.Matches(msg, v.keymap.NextModel):
		v.model = (v.model + 1) % len(v.models)
		v.syncStatus()
		return v, nil
	case key.Matches(msg, v.keymap.NextStyle):
		v.style = (v.style + 1) % len(v.styleList)
		v.syncStatus()
		return v, nil
	case key.Matches(msg, v.keymap.ScrollUp):
		v.viewport.HalfPageUp()
		return v, nil
	case key.Matches(msg, v.keymap.ScrollDown):
		v.viewport.HalfPageDown()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask sends the typed question. Blank input and a question in flight are ignored.
func (v *View) ask() tea.Cmd {
	question := v.input.Value()
	if question == "" || v.pending {
		return nil
	}

	v.pending = true
	v.input.Reset()
	v.statusBar.SetState(status.StateThinking)
	v.statusBar.SetMessage("")

	req := domain.AnswerRequest{
		OwnerID:    v.owner,
		DocumentID: v.document.ID,
		Question:   question,
		Model:      string(v.Model()),
		Style:      v.Style(),
	}
	svc := v.answerService
	ctx := v.ctx

	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerCompleted{Question: question, Err: errNoService}
		}
		answer, err := svc.Answer(ctx, req)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) syncStatus() {
	style := string(v.Style())
	if style == "" {
		style = "no style"
	}
	v.statusBar.SetSelection(v.Model().DisplayName(), style)
}

func (v *View) refreshTranscript() {
	v.viewport.SetContent(v.renderTranscript())
}

func (v *View) renderTranscript() string {
	if len(v.exchanges) == 0 {
		return v.styles.Muted.Render("Ask anything about this document.")
	}

	width := max(v.viewport.Width-2, 20)
	var b strings.Builder
	for i, ex := range v.exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Question.Render("Q: "))
		b.WriteString(v.styles.Normal.Width(width).Render(ex.question))
		b.WriteString("\n")
		if ex.err != nil {
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", ex.err.Error())))
			b.WriteString("\n")
			continue
		}
		b.WriteString(v.styles.Answer.Render("A: "))
		b.WriteString(v.styles.Normal.Width(width).Render(ex.answer))
		b.WriteString("\n")
		if ex.model != "" {
			b.WriteString(v.styles.Muted.Render("  " + ex.model))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder

	title := v.document.Title
	if title == "" {
		title = v.document.ID
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.statusBar.View())

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = max(20, width)
	// title, input and status bar
	v.viewport.Height = max(3, height-7)
	v.input.SetWidth(width)
	v.statusBar.SetWidth(width)
	v.refreshTranscript()
}

// Document returns the document questions are asked about.
func (v *View) Document() domain.Document {
	return v.document
}

// Model returns the selected model.
func (v *View) Model() domain.Model {
	return v.models[v.model]
}

// Style returns the selected style. Empty means no instruction.
func (v *View) Style() domain.PromptStyle {
	return v.styleList[v.style]
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Exchanges returns the number of exchanges shown.
func (v *View) Exchanges() int {
	return len(v.exchanges)
}

// StatusBar returns the status bar component.
func (v *View) StatusBar() *status.Bar {
	return v.statusBar
}
