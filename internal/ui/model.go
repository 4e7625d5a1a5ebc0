package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/fabella/internal/backend"
	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/input"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/menu"
	"github.com/atomicstack/fabella/internal/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FrontendName identifies the terminal front-end in traces.
const FrontendName = "tui"

// tickInterval refreshes the clock and the playback status.
const tickInterval = time.Second

var styles = theme.DefaultStyles()

type msgHandler func(tea.Msg) tea.Cmd

// Player is the playback session as the terminal front-end sees it.
// *player.Session satisfies it.
type Player interface {
	input.Player
	Paused() bool
	Position() float64
	Duration() (float64, bool)
}

// Options configures a Model.
type Options struct {
	Menu    *menu.Menu
	Player  Player
	Watcher *backend.Watcher
	Width   int
	Height  int
	Clock   func() time.Time
}

// Model implements the Bubble Tea model for the terminal front-end.
type Model struct {
	menu    *menu.Menu
	player  Player
	ctrl    *input.Controller
	backend *backend.Watcher
	clock   func() time.Time
	// gc stands in for the GPU: the terminal draws no textures, but retired
	// tiles are released and produced buffers consumed through it.
	gc      *gfx.Context

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool

	finding bool
	find    textinput.Model
	errMsg  string

	handlers map[reflect.Type]msgHandler
}

type tickMsg time.Time

// NewModel creates the model over the menu and player in opts.
func NewModel(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	var p input.Player
	if opts.Player != nil {
		p = opts.Player
	}
	m := &Model{
		menu:    opts.Menu,
		player:  opts.Player,
		ctrl:    input.NewController(opts.Menu, p),
		backend: opts.Watcher,
		clock:   opts.Clock,
		gc:      gfx.NewContext(gfx.NewRecorder()),
		width:   80,
		height:  24,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.find = newFindInput()
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 2)
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	} else if m.finding {
		var cmd tea.Cmd
		m.find, cmd = m.find.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	m.settle()
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(tickMsg{}):           m.handleTickMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// settle releases tiles retired by the last directory change.
func (m *Model) settle() {
	if m.menu == nil {
		return
	}
	if err := m.menu.EnsureUploaded(m.gc); err != nil {
		logging.Error(err)
	}
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if len(cmds) == 0 {
		return nil
	}
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth && size.Width > 0 {
		m.width = size.Width
	}
	if !m.fixedHeight && size.Height > 0 {
		m.height = size.Height
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// handleTickMsg only schedules the next tick; the redraw that follows every
// message picks up the clock and playback status.
func (m *Model) handleTickMsg(msg tea.Msg) tea.Cmd {
	return tick()
}

// Mode returns the current input mode.
func (m *Model) Mode() input.Mode {
	return m.ctrl.Mode()
}

// Finding reports whether the find prompt is open.
func (m *Model) Finding() bool {
	return m.finding
}
