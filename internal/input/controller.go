package input

import (
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
	"github.com/atomicstack/fabella/internal/menu"
	"github.com/atomicstack/fabella/internal/player"
)

// Menu is the grid the controller drives. *menu.Menu satisfies it.
type Menu interface {
	Previous() bool
	Next() bool
	PreviousRow() bool
	NextRow() bool
	PageUp() bool
	PageDown() bool
	Home() bool
	End() bool
	ToggleSeen()
	ToggleSeenAll() error
	ToggleTrash()
	Enter(p menu.Player) error
	Back() error
	Open()
	Close()
	Enabled() bool
}

// Player is the playback session the controller drives.
// *player.Session satisfies it.
type Player interface {
	menu.Player
	Playing() bool
	Stop() error
	TogglePause() error
	Seek(amount float64, mode player.SeekMode)
	CycleSubtitles(down bool)
}

type seek struct {
	amount float64
	mode   player.SeekMode
}

var seeks = map[Action]seek{
	ActionSeekForward:       {5, player.SeekRelative},
	ActionSeekBack:          {-5, player.SeekRelative},
	ActionSeekForwardMinute: {60, player.SeekRelative},
	ActionSeekBackMinute:    {-60, player.SeekRelative},
	ActionSeekForwardLong:   {600, player.SeekRelative},
	ActionSeekBackLong:      {-600, player.SeekRelative},
	ActionSeekStart:         {0, player.SeekAbsolute},
	ActionSeekEnd:           {-15, player.SeekAbsolute},
}

// Result tells the front-end what to do after an action that the
// controller cannot perform itself.
type Result struct {
	Quit       bool
	Fullscreen bool
	Find       bool
}

// Controller dispatches actions to the menu or the player depending on
// whether the menu is shown.
type Controller struct {
	menu   Menu
	player Player
	osd    bool
}

// NewController creates a controller over m and p.
func NewController(m Menu, p Player) *Controller {
	return &Controller{menu: m, player: p}
}

// Mode returns the current input mode.
func (c *Controller) Mode() Mode {
	if c.menu.Enabled() {
		return ModeMenu
	}
	return ModeVideo
}

// OSD reports whether the on-screen display is toggled on.
func (c *Controller) OSD() bool { return c.osd }

// HandleKey looks k up in the current mode's bindings and handles the
// resulting action.
func (c *Controller) HandleKey(k Key) Result {
	action := Lookup(c.Mode(), k)
	if action == ActionNone {
		return Result{}
	}
	return c.Handle(action)
}

// Handle performs action in the current mode.
func (c *Controller) Handle(action Action) Result {
	mode := c.Mode()
	events.UI.Action(mode.String(), action.String())
	switch action {
	case ActionQuit:
		return Result{Quit: true}
	case ActionFullscreen:
		return Result{Fullscreen: true}
	}
	if mode == ModeMenu {
		return c.handleMenu(action)
	}
	return c.handleVideo(action)
}

func (c *Controller) handleMenu(action Action) Result {
	m := c.menu
	switch action {
	case ActionPrevious:
		m.Previous()
	case ActionNext:
		m.Next()
	case ActionPreviousRow:
		m.PreviousRow()
	case ActionNextRow:
		m.NextRow()
	case ActionPageUp:
		m.PageUp()
	case ActionPageDown:
		m.PageDown()
	case ActionHome:
		m.Home()
	case ActionEnd:
		m.End()
	case ActionToggleSeen:
		m.ToggleSeen()
	case ActionToggleSeenAll:
		if err := m.ToggleSeenAll(); err != nil {
			logging.Error(err)
		}
	case ActionToggleTrash:
		m.ToggleTrash()
	case ActionEnter:
		if err := m.Enter(c.player); err != nil {
			logging.Error(err)
		}
	case ActionBack:
		if err := m.Back(); err != nil {
			logging.Error(err)
		}
	case ActionFind:
		return Result{Find: true}
	case ActionEscape:
		if c.player != nil && c.player.Playing() {
			m.Close()
		} else {
			logging.Info("no video open; refusing to close menu")
		}
	}
	return Result{}
}

func (c *Controller) handleVideo(action Action) Result {
	p := c.player
	if p == nil {
		c.menu.Open()
		return Result{}
	}
	if s, ok := seeks[action]; ok {
		p.Seek(s.amount, s.mode)
		return Result{}
	}
	switch action {
	case ActionEscape:
		c.menu.Open()
	case ActionStop:
		if err := p.Stop(); err != nil {
			logging.Error(err)
		}
		c.menu.Open()
	case ActionPause:
		if err := p.TogglePause(); err != nil {
			logging.Error(err)
		}
	case ActionOSD:
		c.osd = !c.osd
	case ActionSubtitlesNext:
		p.CycleSubtitles(false)
	case ActionSubtitlesPrevious:
		p.CycleSubtitles(true)
	}
	return Result{}
}
