package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tiago/llamactl/internal/runner"
	"github.com/tiago/llamactl/internal/session"
)

const listOutput = "Available models:\n  - llama3 (4920000000 bytes)\n  - phi3 (2200000000 bytes)\n  - mistral-small (14000000000 bytes)"

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// sized returns the model after the initial window size message.
func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestNewChatModelPreselected(t *testing.T) {
	mock := &runner.MockRunner{}
	m, err := NewChatModel(mock, "llama3", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()

	if m.picking {
		t.Error("picker should not show when a model is preselected")
	}
	if got := m.Session().State(); got != session.StateOpen {
		t.Errorf("session state = %v, want %v", got, session.StateOpen)
	}
	if got := m.Session().Model(); got != "llama3" {
		t.Errorf("session model = %q, want %q", got, "llama3")
	}
	if mock.CallCount() != 0 {
		t.Errorf("opening a session spawned %d processes, want 0", mock.CallCount())
	}
}

func TestNewChatModelWithoutModelShowsPicker(t *testing.T) {
	mock := &runner.MockRunner{ByOp: map[string]string{"list": listOutput}}
	m, err := NewChatModel(mock, "", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()

	if !m.picking {
		t.Fatal("picker should show when no model is given")
	}
	if got := m.Session().State(); got != session.StateAwaitingName {
		t.Errorf("session state = %v, want %v", got, session.StateAwaitingName)
	}
}

func TestPickerLoadsAndBinds(t *testing.T) {
	mock := &runner.MockRunner{ByOp: map[string]string{"list": listOutput}}
	m, err := NewChatModel(mock, "", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()
	m = sized(t, m)

	msg := m.loadModels()()
	loaded, ok := msg.(modelsLoadedMsg)
	if !ok {
		t.Fatalf("loadModels produced %T, want modelsLoadedMsg", msg)
	}
	updated, _ := m.Update(loaded)
	m = updated.(Model)

	if len(m.pickerItems) != 3 {
		t.Fatalf("picker has %d items, want 3", len(m.pickerItems))
	}

	// Move to the second entry and select it.
	updated, _ = m.Update(keyMsg("down"))
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	if m.picking {
		t.Error("picker still active after selection")
	}
	if got := m.Session().State(); got != session.StateOpen {
		t.Errorf("session state = %v, want %v", got, session.StateOpen)
	}
	if got := m.Session().Model(); got != "phi3" {
		t.Errorf("bound model = %q, want %q", got, "phi3")
	}
}

func TestPickerFilter(t *testing.T) {
	mock := &runner.MockRunner{ByOp: map[string]string{"list": listOutput}}
	m, err := NewChatModel(mock, "", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()
	m = sized(t, m)

	updated, _ := m.Update(m.loadModels()())
	m = updated.(Model)

	for _, r := range "mist" {
		updated, _ = m.Update(keyMsg(string(r)))
		m = updated.(Model)
	}
	if got := m.filteredModels(); len(got) != 1 || got[0].Name != "mistral-small" {
		t.Fatalf("filter %q matched %v, want just mistral-small", m.pickerFilter, got)
	}

	updated, _ = m.Update(keyMsg("backspace"))
	m = updated.(Model)
	if m.pickerFilter != "mis" {
		t.Errorf("filter after backspace = %q, want %q", m.pickerFilter, "mis")
	}
}

func TestPickerEscCancelsSession(t *testing.T) {
	mock := &runner.MockRunner{ByOp: map[string]string{"list": listOutput}}
	m, err := NewChatModel(mock, "", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	m = sized(t, m)

	updated, cmd := m.Update(keyMsg("esc"))
	m = updated.(Model)

	if cmd == nil {
		t.Fatal("esc should quit the program")
	}
	if got := m.Session().State(); got != session.StateClosed {
		t.Errorf("session state after cancel = %v, want %v", got, session.StateClosed)
	}
	// Cancelling before a model was chosen must never run generate.
	for _, op := range mock.Calls {
		if op.Name() == "generate" {
			t.Error("cancelled session spawned a generation")
		}
	}
}

func TestEnterSendsMessage(t *testing.T) {
	mock := &runner.MockRunner{ByOp: map[string]string{"generate": "Hi there."}}
	m, err := NewChatModel(mock, "llama3", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()
	m = sized(t, m)

	m.textarea.SetValue("hello model")
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)

	if !m.loading {
		t.Error("model should be loading after send")
	}
	if m.textarea.Value() != "" {
		t.Errorf("textarea not cleared, has %q", m.textarea.Value())
	}

	turns := m.Session().Turns()
	if len(turns) == 0 || turns[0].Text != "hello model" {
		t.Fatalf("user turn not appended, turns = %v", turns)
	}

	select {
	case msg := <-m.Session().Outbound():
		if msg.Kind != session.KindResponse {
			t.Errorf("outbound kind = %v, want %v", msg.Kind, session.KindResponse)
		}
		updated, _ = m.Update(sessionMsg{msg: msg})
		m = updated.(Model)
	case <-time.After(2 * time.Second):
		t.Fatal("no outbound message within deadline")
	}

	if m.loading {
		t.Error("loading should clear once the response lands")
	}
	if got := len(m.Session().Turns()); got != 2 {
		t.Errorf("turn count = %d, want 2", got)
	}
}

func TestErrorNoticeSurfaced(t *testing.T) {
	mock := &runner.MockRunner{}
	m, err := NewChatModel(mock, "llama3", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()
	m = sized(t, m)

	updated, _ := m.Update(sessionMsg{msg: session.Message{
		Kind: session.KindErrorNotice,
		Text: "runner exploded",
	}})
	m = updated.(Model)

	if m.err == nil || !strings.Contains(m.err.Error(), "runner exploded") {
		t.Errorf("error not surfaced, got %v", m.err)
	}
	if !strings.Contains(m.View(), "runner exploded") {
		t.Error("View() does not show the error")
	}
}

func TestViewRendersChrome(t *testing.T) {
	mock := &runner.MockRunner{}
	m, err := NewChatModel(mock, "llama3", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()

	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("unsized View() = %q, want initializing notice", got)
	}

	m = sized(t, m)
	view := m.View()
	for _, want := range []string{"llamactl", "llama3", "Enter", "Esc"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestPickerViewShowsModelSizes(t *testing.T) {
	mock := &runner.MockRunner{ByOp: map[string]string{"list": listOutput}}
	m, err := NewChatModel(mock, "", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()
	m = sized(t, m)

	updated, _ := m.Update(m.loadModels()())
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "llama3") {
		t.Errorf("picker view missing model name:\n%s", view)
	}
	if !strings.Contains(view, "4.6 GiB") {
		t.Errorf("picker view missing human-readable size:\n%s", view)
	}
}

func TestWaitForOutboundUnblocksOnClose(t *testing.T) {
	mock := &runner.MockRunner{}
	m, err := NewChatModel(mock, "llama3", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}

	cmd := m.waitForOutbound()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	m.Session().Close()

	select {
	case msg := <-done:
		if msg != nil {
			t.Errorf("expected nil message at shutdown, got %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waitForOutbound still blocked after session close")
	}
}

func TestSlashModelsOpensBrowsePicker(t *testing.T) {
	mock := &runner.MockRunner{ByOp: map[string]string{"list": listOutput}}
	m, err := NewChatModel(mock, "llama3", "dark")
	if err != nil {
		t.Fatalf("NewChatModel() error = %v", err)
	}
	defer m.Session().Close()
	m = sized(t, m)

	m.textarea.SetValue("/models")
	updated, cmd := m.Update(keyMsg("enter"))
	m = updated.(Model)
	if !m.picking || !m.pickerBrowse {
		t.Fatal("/models should open the browse picker")
	}
	if cmd == nil {
		t.Fatal("/models should trigger a model list load")
	}

	updated, _ = m.Update(m.loadModels()())
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(Model)

	if m.picking {
		t.Error("esc should leave the browse picker")
	}
	if got := m.Session().State(); got != session.StateOpen {
		t.Errorf("browsing closed the session, state = %v", got)
	}
}
