// Package history provides the conversation history view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var errNoService = errors.New("history service not available")

// View shows the owner's turns, question count and model usage.
type View struct {
	styles         *styles.Styles
	historyService driving.HistoryService
	owner          string
	ctx            context.Context

	viewport  viewport.Model
	turns     []domain.Turn
	questions int
	usage     []domain.ModelUsage
	loading   bool
	err       error
}

// NewView creates a new history view.
func NewView(s *styles.Styles, historyService driving.HistoryService, owner string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:         s,
		historyService: historyService,
		owner:          owner,
		ctx:            context.Background(),
		viewport:       viewport.New(80, 10),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	svc, ctx, owner := v.historyService, v.ctx, v.owner
	return func() tea.Msg {
		if svc == nil {
			return messages.HistoryLoaded{Err: errNoService}
		}
		turns, err := svc.Get(ctx, owner)
		if err != nil {
			return messages.HistoryLoaded{Err: err}
		}
		questions, err := svc.QuestionCount(ctx, owner)
		if err != nil {
			return messages.HistoryLoaded{Err: err}
		}
		usage, err := svc.ModelUsage(ctx, owner)
		if err != nil {
			return messages.HistoryLoaded{Err: err}
		}
		return messages.HistoryLoaded{Turns: turns, Questions: questions, Usage: usage}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "r":
			return v, v.Init()
		}
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.turns = msg.Turns
			v.questions = msg.Questions
			v.usage = msg.Usage
		}
		v.viewport.SetContent(v.renderTurns())
		v.viewport.GotoBottom()
		return v, nil
	}

	return v, nil
}

func (v *View) renderTurns() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("No questions asked yet.")
	}

	width := max(v.viewport.Width-4, 20)
	var b strings.Builder
	for _, turn := range v.turns {
		label := v.styles.Answer.Render("A: ")
		if turn.EffectiveType() == domain.RoleUser {
			label = v.styles.Question.Render("Q: ")
		}
		b.WriteString(label)
		b.WriteString(v.styles.Normal.Width(width).Render(turn.Content))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderStats() string {
	parts := []string{fmt.Sprintf("%d questions", v.questions)}
	for _, u := range v.usage {
		name := u.Model
		if m := domain.Model(u.Model); m.IsSupported() {
			name = m.DisplayName()
		}
		parts = append(parts, fmt.Sprintf("%s: %d", name, u.Count))
	}
	return v.styles.Muted.Render(strings.Join(parts, "  "))
}

// View renders the history view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("History"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.renderStats())
		b.WriteString("\n\n")
		b.WriteString(v.viewport.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [r] reload  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.viewport.Width = max(20, width)
	v.viewport.Height = max(3, height-8)
	v.viewport.SetContent(v.renderTurns())
}

// Turns returns the loaded turns.
func (v *View) Turns() []domain.Turn {
	return v.turns
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
