package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tiago/llamactl/internal/models"
	"github.com/tiago/llamactl/internal/render"
	"github.com/tiago/llamactl/internal/runner"
	"github.com/tiago/llamactl/internal/session"
)

// Message types for the TUI
type (
	// sessionMsg wraps one bridge -> view protocol message.
	sessionMsg struct {
		msg session.Message
	}
	// modelsLoadedMsg is sent when the model list arrives for the picker
	modelsLoadedMsg struct {
		infos []models.ModelInfo
		err   error
	}
)

// Model is the bubbletea state for the chat view. The conversation itself
// lives in the session; the view renders session turns and never owns them.
type Model struct {
	gateway runner.Runner
	sess    *session.Session

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading bool
	ready   bool
	err     error

	// Model picker state (the session's AwaitingName phase, and the
	// read-only /models overlay once the session is open)
	picking       bool
	pickerBrowse  bool // open session, list only, no binding
	pickerItems   []models.ModelInfo
	pickerCursor  int
	pickerLoading bool
	pickerFilter  string
	markdownStyle string

	// Dimensions
	width  int
	height int
}

// NewChatModel creates the chat view. With a non-empty modelName the
// session binds immediately; otherwise the view opens on the model picker
// and the session stays in AwaitingName until the user chooses.
func NewChatModel(gateway runner.Runner, modelName, markdownStyle string) (Model, error) {
	sess := session.New(gateway)
	if err := sess.Start(); err != nil {
		return Model{}, err
	}

	m := Model{
		gateway:       gateway,
		sess:          sess,
		textarea:      newChatTextarea(),
		spinner:       newChatSpinner(),
		markdownStyle: markdownStyle,
	}

	if modelName != "" {
		if err := sess.Bind(modelName); err != nil {
			return Model{}, err
		}
	} else {
		m.picking = true
		m.pickerLoading = true
	}
	return m, nil
}

func newChatTextarea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle
	return ta
}

func newChatSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle
	return s
}

// Session exposes the underlying session (used by tests and the chat
// command for shutdown).
func (m Model) Session() *session.Session {
	return m.sess
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick, m.waitForOutbound()}
	if m.picking {
		cmds = append(cmds, m.loadModels())
	}
	return tea.Batch(cmds...)
}

// loadModels fetches the model list for the picker.
func (m Model) loadModels() tea.Cmd {
	return func() tea.Msg {
		out, err := m.gateway.Execute(context.Background(), runner.ListModels())
		if err != nil {
			return modelsLoadedMsg{err: err}
		}
		return modelsLoadedMsg{infos: models.ParseModelList(out)}
	}
}

// waitForOutbound relays the next bridge -> view message into the program.
// It unblocks with no message once the session closes, so the goroutine
// does not outlive the session.
func (m Model) waitForOutbound() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		select {
		case msg := <-sess.Outbound():
			return sessionMsg{msg: msg}
		case <-sess.Done():
			return nil
		}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.picking {
		return m.updatePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.sess.Close()
			return m, tea.Quit

		case "esc":
			m.sess.Close()
			return m, tea.Quit

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				break
			}
			if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
				m.sess.Close()
				return m, tea.Quit
			}
			if input == "/models" {
				m.textarea.Reset()
				m.picking = true
				m.pickerBrowse = true
				m.pickerLoading = true
				m.pickerCursor = 0
				m.pickerFilter = ""
				return m, m.loadModels()
			}

			if err := m.sess.Send(input); err != nil {
				m.err = err
				break
			}
			m.err = nil
			m.textarea.Reset()
			m.loading = true
			m.updateViewport()
			m.viewport.GotoBottom()
			return m, tea.Batch(m.spinner.Tick)
		}

	case sessionMsg:
		m.loading = m.sess.Pending() > 0
		if msg.msg.Kind == session.KindErrorNotice {
			m.err = fmt.Errorf("%s", msg.msg.Text)
		}
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForOutbound())

	case modelsLoadedMsg:
		// Late arrival after the picker already closed; ignore.

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only pass key messages to the textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 5
	statusHeight := 1
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.updateViewport()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.picking {
		return m.renderPicker()
	}

	var sections []string
	contentWidth := m.width - 4

	header := headerStyle.Width(contentWidth).Render(lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render("✦ llamactl"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.sess.Model()),
	))
	sections = append(sections, header)

	var messagesContent string
	if len(m.sess.Turns()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.loading {
		inputContent = m.spinner.View() + loadingStyle.Render(" generating...")
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("⚠ Error: %v", m.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Chatting with "+m.sess.Model()),
		"",
		welcomeStyle.Width(width).Render("Type a message below to start. /models lists installed models."),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content from the session log.
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	for i, turn := range m.sess.Turns() {
		if i > 0 {
			content.WriteString("\n")
		}

		switch turn.Role {
		case models.RoleUser:
			label := userLabelStyle.Render("⬤ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(turn.Text)
			content.WriteString(label + "\n" + bubble)

		case models.RoleAssistant:
			label := assistantLabelStyle.Render("✦ " + m.sess.Model())
			rendered, err := render.Markdown(turn.Text,
				render.DefaultOptions().WithWidth(bubbleWidth-4).WithStyle(m.markdownStyle))
			if err != nil {
				rendered = turn.Text
			}
			rendered = strings.TrimRight(rendered, "\n")
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)

		case models.RoleError:
			content.WriteString(errorTurnStyle.Width(bubbleWidth).Render("✗ " + turn.Text))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI. modelName may be empty, in which case the
// user picks a model first.
func RunChat(gateway runner.Runner, modelName, markdownStyle string) error {
	m, err := NewChatModel(gateway, modelName, markdownStyle)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	m.sess.Close()
	return err
}
