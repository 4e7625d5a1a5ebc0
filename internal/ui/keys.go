package ui

import (
	"strings"

	"github.com/atomicstack/fabella/internal/input"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyBinding struct {
	binding key.Binding
	key     input.Key
}

func bind(k input.Key, help string, keys ...string) keyBinding {
	b := key.NewBinding(key.WithKeys(keys...))
	if help != "" {
		b.SetHelp(keys[0], help)
	}
	return keyBinding{binding: b, key: k}
}

var keyBindings = []keyBinding{
	bind(input.KeyUp, "", "up"),
	bind(input.KeyDown, "", "down"),
	bind(input.KeyLeft, "", "left"),
	bind(input.KeyRight, "", "right"),
	bind(input.KeyPageUp, "", "pgup"),
	bind(input.KeyPageDown, "", "pgdown"),
	bind(input.KeyHome, "", "home"),
	bind(input.KeyEnd, "", "end"),
	bind(input.KeyEnter, "play", "enter"),
	bind(input.KeySpace, "", " "),
	bind(input.KeyBackspace, "back", "backspace"),
	bind(input.KeyTab, "seen", "tab"),
	bind(input.KeyShiftTab, "", "shift+tab"),
	bind(input.KeyDelete, "trash", "delete"),
	bind(input.KeyEscape, "video", "esc"),
	bind(input.KeyQuit, "quit", "ctrl+q", "ctrl+c"),
	bind(input.KeyF, "", "f"),
	bind(input.KeyO, "", "o"),
	bind(input.KeyH, "", "h"),
	bind(input.KeyJ, "", "j"),
	bind(input.KeyK, "", "k"),
	bind(input.KeyL, "", "l"),
	bind(input.KeySlash, "find", "/"),
}

// translateKey maps a terminal key press to a front-end neutral key.
func translateKey(msg tea.KeyMsg) input.Key {
	for _, b := range keyBindings {
		if key.Matches(msg, b.binding) {
			return b.key
		}
	}
	return input.KeyNone
}

// keyHelp renders the short help line of the bindings that carry one.
func keyHelp() string {
	parts := make([]string, 0, 8)
	for _, b := range keyBindings {
		h := b.binding.Help()
		if h.Desc == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.finding {
		return m.handleFindKey(keyMsg)
	}
	k := translateKey(keyMsg)
	if k == input.KeyNone {
		return nil
	}
	events.UI.Key(FrontendName, k.String())
	m.errMsg = ""
	res := m.ctrl.HandleKey(k)
	switch {
	case res.Quit:
		events.App.Quit("key")
		return tea.Quit
	case res.Fullscreen:
		logging.Info("fullscreen is not available in the terminal")
	case res.Find:
		return m.startFind()
	}
	return nil
}
