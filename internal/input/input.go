// Package input turns front-end key presses into menu and playback
// operations. Front-ends translate their native keys into Key values; the
// Controller looks them up in the binding table of the current mode.
package input

import "fmt"

// Key is a front-end neutral key.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyEnter
	KeySpace
	KeyBackspace
	KeyTab
	KeyShiftTab
	KeyDelete
	KeyEscape
	KeyQuit
	KeyF
	KeyO
	KeyH
	KeyJ
	KeyK
	KeyL
	KeySlash
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyEnter:     "enter",
	KeySpace:     "space",
	KeyBackspace: "backspace",
	KeyTab:       "tab",
	KeyShiftTab:  "shift+tab",
	KeyDelete:    "delete",
	KeyEscape:    "esc",
	KeyQuit:      "ctrl+q",
	KeyF:         "f",
	KeyO:         "o",
	KeyH:         "h",
	KeyJ:         "j",
	KeyK:         "k",
	KeyL:         "l",
	KeySlash:     "/",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// Action is an operation the controller performs.
type Action int

const (
	ActionNone Action = iota
	ActionPrevious
	ActionNext
	ActionPreviousRow
	ActionNextRow
	ActionPageUp
	ActionPageDown
	ActionHome
	ActionEnd
	ActionEnter
	ActionBack
	ActionToggleSeen
	ActionToggleSeenAll
	ActionToggleTrash
	ActionFind
	ActionQuit
	ActionFullscreen
	ActionEscape
	ActionStop
	ActionPause
	ActionOSD
	ActionSeekForward
	ActionSeekBack
	ActionSeekForwardMinute
	ActionSeekBackMinute
	ActionSeekForwardLong
	ActionSeekBackLong
	ActionSeekStart
	ActionSeekEnd
	ActionSubtitlesNext
	ActionSubtitlesPrevious
)

var actionNames = map[Action]string{
	ActionNone:              "none",
	ActionPrevious:          "previous",
	ActionNext:              "next",
	ActionPreviousRow:       "previous-row",
	ActionNextRow:           "next-row",
	ActionPageUp:            "page-up",
	ActionPageDown:          "page-down",
	ActionHome:              "home",
	ActionEnd:               "end",
	ActionEnter:             "enter",
	ActionBack:              "back",
	ActionToggleSeen:        "toggle-seen",
	ActionToggleSeenAll:     "toggle-seen-all",
	ActionToggleTrash:       "toggle-trash",
	ActionFind:              "find",
	ActionQuit:              "quit",
	ActionFullscreen:        "fullscreen",
	ActionEscape:            "escape",
	ActionStop:              "stop",
	ActionPause:             "pause",
	ActionOSD:               "osd",
	ActionSeekForward:       "seek+5",
	ActionSeekBack:          "seek-5",
	ActionSeekForwardMinute: "seek+60",
	ActionSeekBackMinute:    "seek-60",
	ActionSeekForwardLong:   "seek+600",
	ActionSeekBackLong:      "seek-600",
	ActionSeekStart:         "seek-start",
	ActionSeekEnd:           "seek-end",
	ActionSubtitlesNext:     "subtitles-next",
	ActionSubtitlesPrevious: "subtitles-previous",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Mode is the input mode: browsing the menu or watching a video.
type Mode int

const (
	ModeMenu Mode = iota
	ModeVideo
)

func (m Mode) String() string {
	if m == ModeVideo {
		return "video"
	}
	return "menu"
}

// MenuBindings maps keys to actions while the menu is shown.
var MenuBindings = map[Key]Action{
	KeyUp:        ActionPreviousRow,
	KeyK:         ActionPreviousRow,
	KeyDown:      ActionNextRow,
	KeyJ:         ActionNextRow,
	KeyRight:     ActionNext,
	KeyL:         ActionNext,
	KeyLeft:      ActionPrevious,
	KeyH:         ActionPrevious,
	KeyPageUp:    ActionPageUp,
	KeyPageDown:  ActionPageDown,
	KeyHome:      ActionHome,
	KeyEnd:       ActionEnd,
	KeyEnter:     ActionEnter,
	KeySpace:     ActionEnter,
	KeyBackspace: ActionBack,
	KeyTab:       ActionToggleSeen,
	KeyShiftTab:  ActionToggleSeenAll,
	KeyDelete:    ActionToggleTrash,
	KeySlash:     ActionFind,
	KeyEscape:    ActionEscape,
	KeyQuit:      ActionQuit,
	KeyF:         ActionFullscreen,
}

// VideoBindings maps keys to actions while a video is shown.
var VideoBindings = map[Key]Action{
	KeyEscape:   ActionEscape,
	KeyEnter:    ActionStop,
	KeySpace:    ActionPause,
	KeyRight:    ActionSeekForward,
	KeyLeft:     ActionSeekBack,
	KeyUp:       ActionSeekForwardMinute,
	KeyDown:     ActionSeekBackMinute,
	KeyPageUp:   ActionSeekForwardLong,
	KeyPageDown: ActionSeekBackLong,
	KeyHome:     ActionSeekStart,
	KeyEnd:      ActionSeekEnd,
	KeyO:        ActionOSD,
	KeyJ:        ActionSubtitlesNext,
	KeyK:        ActionSubtitlesPrevious,
	KeyQuit:     ActionQuit,
	KeyF:        ActionFullscreen,
}

// Lookup returns the action bound to k in mode.
func Lookup(mode Mode, k Key) Action {
	bindings := MenuBindings
	if mode == ModeVideo {
		bindings = VideoBindings
	}
	return bindings[k]
}
