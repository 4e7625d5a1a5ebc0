package app

import (
	"errors"

	"github.com/atomicstack/fabella/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// runTUI executes the Bubble Tea program over the shared services.
func runTUI(s *services) error {
	model := ui.NewModel(ui.Options{
		Menu:    s.menu,
		Player:  s.session,
		Watcher: s.watcher,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
