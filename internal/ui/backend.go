package ui

import (
	"fmt"

	"github.com/atomicstack/fabella/internal/backend"
	"github.com/atomicstack/fabella/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// applyBackendEvent reloads the grid when the index of the directory on
// screen is rewritten. Covers are not drawn in the terminal, so cover
// events are only logged.
func (m *Model) applyBackendEvent(evt backend.Event) {
	if evt.Err != nil {
		m.errMsg = fmt.Sprintf("watching %s: %v", evt.Dir, evt.Err)
		logging.Error(fmt.Errorf("watching %s %s: %w", evt.Dir, evt.Kind, evt.Err))
		return
	}
	if evt.Dir != m.menu.Path() {
		return
	}
	switch evt.Kind {
	case backend.KindIndex:
		logging.Info("index of %s changed, reloading", evt.Dir)
		if err := m.menu.Reload(); err != nil {
			m.errMsg = err.Error()
			logging.Error(err)
		}
	case backend.KindCovers:
		logging.Info("covers of %s changed", evt.Dir)
	}
}
