// Package tui implements the interactive chat interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/deploychat/internal/api"
	"github.com/diogo/deploychat/internal/models"
	"github.com/diogo/deploychat/internal/render"
	"github.com/diogo/deploychat/internal/session"
)

// Message types for the TUI
type (
	// streamDeltaMsg carries one streamed content fragment
	streamDeltaMsg struct {
		delta string
	}
	// turnResolvedMsg is sent when the dispatcher finished a turn
	turnResolvedMsg struct {
		id string
	}
	errMsg struct {
		err error
	}
)

// Dispatcher is the dispatcher surface the TUI needs; satisfied by
// *dispatch.Dispatcher and faked in tests.
type Dispatcher interface {
	Dispatch(id string, onDelta api.ChatStreamHandler) error
}

// FeedbackSubmitter records thumbs up/down for a turn.
type FeedbackSubmitter interface {
	Submit(id string, value int) error
}

// Model represents the TUI state
type Model struct {
	sess     *session.Session
	disp     Dispatcher
	feedback FeedbackSubmitter
	cfg      *session.Config
	depLabel string

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading    bool
	ready      bool
	currentID  string // turn in flight
	lastTurnID string // most recent resolved turn, feedback target
	streamBuf  string // accumulated streamed content for display
	deltas     chan string
	notice     string
	err        error

	// Dimensions
	width  int
	height int
}

// NewModel creates the chat TUI model.
func NewModel(sess *session.Session, disp Dispatcher, feedback FeedbackSubmitter, cfg *session.Config, depLabel string) Model {
	ta := textarea.New()
	ta.Placeholder = "Send a prompt"
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		sess:     sess,
		disp:     disp,
		feedback: feedback,
		cfg:      cfg,
		depLabel: depLabel,
		textarea: ta,
		spinner:  sp,
	}
}

// RunChat starts the interactive chat session.
func RunChat(sess *session.Session, disp Dispatcher, feedback FeedbackSubmitter, cfg *session.Config, depLabel string) error {
	model := NewModel(sess, disp, feedback, cfg, depLabel)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatHeight := m.height - m.textarea.Height() - 5
		if !m.ready {
			m.viewport = viewport.New(m.width, chatHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = chatHeight
		}
		m.textarea.SetWidth(m.width - 4)
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if !m.loading {
				return m.submitPrompt()
			}
		case "ctrl+u":
			return m.submitFeedback(1)
		case "ctrl+d":
			return m.submitFeedback(0)
		}

	case streamDeltaMsg:
		m.streamBuf += msg.delta
		m.refreshViewport()
		return m, waitForDelta(m.deltas)

	case turnResolvedMsg:
		m.loading = false
		if msg.id != "" {
			m.lastTurnID = msg.id
		} else {
			m.lastTurnID = m.currentID
		}
		m.currentID = ""
		m.streamBuf = ""
		m.notice = ""
		m.refreshViewport()

	case errMsg:
		m.loading = false
		m.err = msg.err
		m.refreshViewport()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, taCmd, vpCmd)

	return m, tea.Batch(cmds...)
}

// submitPrompt starts a new turn from the textarea content.
func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.textarea.Value())
	if prompt == "" {
		return m, nil
	}

	id, err := m.sess.AppendUserPrompt(prompt)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.textarea.Reset()
	m.loading = true
	m.currentID = id
	m.streamBuf = ""
	m.err = nil
	m.deltas = make(chan string, 16)
	m.refreshViewport()

	return m, tea.Batch(
		m.spinner.Tick,
		dispatchTurn(m.disp, id, m.deltas),
		waitForDelta(m.deltas),
	)
}

// dispatchTurn runs the dispatcher in the background. The delta channel
// is closed once the turn reached a terminal state; the close drives the
// final turnResolvedMsg through waitForDelta.
func dispatchTurn(disp Dispatcher, id string, deltas chan string) tea.Cmd {
	return func() tea.Msg {
		err := disp.Dispatch(id, func(delta string) {
			deltas <- delta
		})
		close(deltas)
		if err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// waitForDelta forwards the next streamed fragment, or the terminal
// notification once the channel closes.
func waitForDelta(deltas chan string) tea.Cmd {
	return func() tea.Msg {
		delta, ok := <-deltas
		if !ok {
			return turnResolvedMsg{}
		}
		return streamDeltaMsg{delta: delta}
	}
}

// submitFeedback rates the most recent resolved turn.
func (m Model) submitFeedback(value int) (tea.Model, tea.Cmd) {
	if m.lastTurnID == "" || m.loading {
		return m, nil
	}
	if !m.cfg.FeedbackAvailable() {
		m.notice = "feedback is not available for this deployment"
		return m, nil
	}
	if err := m.feedback.Submit(m.lastTurnID, value); err != nil {
		m.err = err
		return m, nil
	}
	if value == 1 {
		m.notice = "Feedback recorded 👍"
	} else {
		m.notice = "Feedback recorded 👎"
	}
	m.refreshViewport()
	return m, nil
}

// refreshViewport re-renders the conversation into the viewport.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// renderConversation renders the full message log.
func (m *Model) renderConversation() string {
	var b strings.Builder
	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}

	for _, msg := range m.sess.Messages() {
		switch {
		case msg.Role == models.RoleSystem:
			// system prompt stays out of the transcript
		case msg.Role == models.RoleUser:
			b.WriteString(userLabelStyle.Render("You") + "\n")
			b.WriteString(userTextStyle.Render(msg.Text()) + "\n\n")
		case msg.Pending():
			b.WriteString(assistantLabelStyle.Render(m.depLabel) + "\n")
			if m.streamBuf != "" {
				b.WriteString(userTextStyle.Render(m.streamBuf) + "\n\n")
			} else {
				b.WriteString(m.spinner.View() + statusStyle.Render("Waiting for LLM response...") + "\n\n")
			}
		default:
			b.WriteString(assistantLabelStyle.Render(m.depLabel) + "\n")
			b.WriteString(m.renderAssistantTurn(msg, width))
		}
	}
	return b.String()
}

// renderAssistantTurn renders one resolved assistant message with its
// metadata: error, citations, metrics and feedback state.
func (m *Model) renderAssistantTurn(msg models.Message, width int) string {
	var b strings.Builder
	meta := m.sess.Meta(msg.ID)

	if meta != nil && meta.Status == models.StatusError {
		b.WriteString(errorStyle.Render(meta.ErrorMessage) + "\n\n")
		return b.String()
	}

	rendered, err := render.Markdown(render.EscapeResultText(msg.Text()), render.DefaultOptions().WithWidth(width))
	if err != nil {
		rendered = msg.Text() + "\n"
	}
	b.WriteString(rendered)

	if meta != nil {
		for i, c := range meta.Citations {
			b.WriteString(citationStyle.Render(fmt.Sprintf("[%d] %s", i+1, c.SourcePage())) + "\n")
		}
		if line := metricsLine(meta); line != "" {
			b.WriteString(metricsStyle.Render(line) + "\n")
		}
		if meta.FeedbackValue != nil {
			if *meta.FeedbackValue == 1 {
				b.WriteString(feedbackStyle.Render("👍") + "\n")
			} else {
				b.WriteString(feedbackStyle.Render("👎") + "\n")
			}
		}
	}
	b.WriteString("\n")
	return b.String()
}

func metricsLine(meta *models.MessageMeta) string {
	var parts []string
	if meta.Latency > 0 {
		parts = append(parts, fmt.Sprintf("Latency: %.2fs", meta.Latency))
	}
	if meta.TokenCount > 0 {
		parts = append(parts, fmt.Sprintf("Tokens: %d", meta.TokenCount))
	}
	if meta.ConfidenceScore > 0 {
		parts = append(parts, fmt.Sprintf("Confidence: %.0f%%", meta.ConfidenceScore))
	}
	return strings.Join(parts, "  ")
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Q&A Chat - " + m.depLabel)

	status := "enter: send  ctrl+u/ctrl+d: rate last answer  ctrl+c: quit"
	if m.notice != "" {
		status = m.notice
	}
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		inputBorderStyle.Render(m.textarea.View()),
		statusStyle.Render(status),
	)
}
