package ui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newFindInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "find » "
	ti.Placeholder = "(type a title)"
	ti.CharLimit = 128
	ti.Cursor.SetMode(cursor.CursorStatic)
	if styles.FilterPrompt != nil {
		ti.PromptStyle = styles.FilterPrompt.Copy()
	}
	if styles.Filter != nil {
		ti.TextStyle = styles.Filter.Copy()
	}
	if styles.Info != nil {
		ti.PlaceholderStyle = styles.Info.Copy()
	}
	return ti
}

func (m *Model) startFind() tea.Cmd {
	m.finding = true
	m.find.SetValue("")
	return m.find.Focus()
}

func (m *Model) stopFind() {
	m.finding = false
	m.find.Blur()
}

// handleFindKey feeds the prompt and jumps to the best match whenever the
// query changes. Enter and escape close the prompt; the selection stays on
// the last match.
func (m *Model) handleFindKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.stopFind()
		return nil
	case tea.KeyCtrlC:
		m.stopFind()
		return nil
	}
	before := m.find.Value()
	var cmd tea.Cmd
	m.find, cmd = m.find.Update(msg)
	if query := m.find.Value(); query != before && query != "" {
		m.menu.Find(query)
	}
	return cmd
}
