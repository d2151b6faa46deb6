package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tiago/llamactl/internal/models"
)

const pickerWindow = 10

// filteredModels returns the picker items matching the current filter.
func (m Model) filteredModels() []models.ModelInfo {
	if m.pickerFilter == "" {
		return m.pickerItems
	}
	needle := strings.ToLower(m.pickerFilter)
	var out []models.ModelInfo
	for _, info := range m.pickerItems {
		if strings.Contains(strings.ToLower(info.Name), needle) {
			out = append(out, info)
		}
	}
	return out
}

// updatePicker handles input while the model picker overlay is active.
func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case modelsLoadedMsg:
		m.pickerLoading = false
		if msg.err != nil {
			m.err = msg.err
			if m.pickerBrowse {
				// Browsing an open session; drop back to chat.
				m.picking = false
				m.pickerBrowse = false
			}
			return m, nil
		}
		m.err = nil
		m.pickerItems = msg.infos
		m.pickerCursor = 0
		return m, nil

	case spinner.TickMsg:
		if m.pickerLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.sess.Close()
			return m, tea.Quit

		case "esc":
			if m.pickerBrowse {
				m.picking = false
				m.pickerBrowse = false
				return m, nil
			}
			// Abandoning the picker before a model is chosen ends the
			// session without spawning anything.
			m.sess.Cancel()
			return m, tea.Quit

		case "enter":
			items := m.filteredModels()
			if m.pickerLoading || len(items) == 0 {
				return m, nil
			}
			if m.pickerCursor >= len(items) {
				m.pickerCursor = len(items) - 1
			}
			if m.pickerBrowse {
				m.picking = false
				m.pickerBrowse = false
				return m, nil
			}
			if err := m.sess.Bind(items[m.pickerCursor].Name); err != nil {
				m.err = err
				return m, nil
			}
			m.picking = false
			m.pickerFilter = ""
			return m, nil

		case "up", "ctrl+p":
			if m.pickerCursor > 0 {
				m.pickerCursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.pickerCursor < len(m.filteredModels())-1 {
				m.pickerCursor++
			}
			return m, nil

		case "backspace":
			if m.pickerFilter != "" {
				m.pickerFilter = m.pickerFilter[:len(m.pickerFilter)-1]
				m.pickerCursor = 0
			}
			return m, nil

		default:
			if len(msg.Runes) == 1 && msg.Runes[0] >= ' ' {
				m.pickerFilter += string(msg.Runes)
				m.pickerCursor = 0
			}
			return m, nil
		}
	}

	return m, nil
}

// renderPicker draws the model picker overlay.
func (m Model) renderPicker() string {
	contentWidth := m.width - 4
	if contentWidth < 30 {
		contentWidth = 30
	}

	var b strings.Builder

	title := "Select a model"
	if m.pickerBrowse {
		title = "Installed models"
	}
	b.WriteString(pickerTitleStyle.Render("✦ " + title))
	b.WriteString("\n")
	if m.pickerFilter != "" {
		b.WriteString(hintStyle.Render("filter: " + m.pickerFilter))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.pickerLoading {
		b.WriteString(m.spinner.View() + loadingStyle.Render(" loading models..."))
	} else {
		items := m.filteredModels()
		if len(items) == 0 {
			b.WriteString(hintStyle.Render("  no models found"))
		} else {
			start := 0
			if m.pickerCursor >= pickerWindow {
				start = m.pickerCursor - pickerWindow + 1
			}
			end := start + pickerWindow
			if end > len(items) {
				end = len(items)
			}
			for i := start; i < end; i++ {
				info := items[i]
				line := info.Name
				if info.Size > 0 {
					line = fmt.Sprintf("%s  %s", info.Name,
						hintStyle.Render(models.HumanSize(info.Size)))
				}
				if i == m.pickerCursor {
					b.WriteString(pickerCursorStyle.Render("▸ ") +
						pickerSelectedStyle.Render(line))
				} else {
					b.WriteString("  " + pickerItemStyle.Render(line))
				}
				b.WriteString("\n")
			}
			if end < len(items) {
				b.WriteString(hintStyle.Render(fmt.Sprintf("  … %d more", len(items)-end)))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	hints := "↑↓ move  •  type to filter  •  enter select  •  esc "
	if m.pickerBrowse {
		hints += "back"
	} else {
		hints += "quit"
	}
	b.WriteString(hintStyle.Render(hints))

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("⚠ %v", m.err)))
	}

	panel := inputPanelStyle.Width(contentWidth).Render(b.String())

	if m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
	}
	return panel
}
