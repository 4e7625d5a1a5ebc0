// Package window opens the GLFW window of the graphical front-end and
// turns its key presses into input keys.
//
// GLFW must be driven from the main OS thread, so the package locks the
// main goroutine to it at init. New, Wait, Keys, Swap and Close are called
// from the main goroutine only.
package window

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/atomicstack/fabella/internal/input"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// WaitTimeout bounds how long Wait blocks so the clock and playback status
// keep refreshing without input. Wake ends the wait early.
const WaitTimeout = 500 * time.Millisecond

// Window is a GLFW window with a current GL 2.1 context.
type Window struct {
	win    *glfw.Window
	keys   []input.Key
	width  int
	height int
	// windowed geometry restored when leaving fullscreen
	saved [4]int

	wakeMu sync.Mutex
	closed bool
}

// New initialises GLFW and opens a window with a current GL context.
func New(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialising glfw: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating %dx%d window: %w", width, height, err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	w := &Window{win: win}
	w.width, w.height = win.GetFramebufferSize()
	win.SetKeyCallback(w.onKey)
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
	})
	logging.Info("opened %dx%d window %q", w.width, w.height, title)
	return w, nil
}

func (w *Window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	if k := translate(key, mods); k != input.KeyNone {
		w.keys = append(w.keys, k)
	}
}

// Wait processes window events, blocking up to WaitTimeout for one.
func (w *Window) Wait() {
	glfw.WaitEventsTimeout(WaitTimeout.Seconds())
}

// Wake makes a blocked Wait return. Unlike the other methods it may be
// called from any goroutine, and does nothing once the window is closed.
func (w *Window) Wake() {
	w.wakeMu.Lock()
	defer w.wakeMu.Unlock()
	if !w.closed {
		glfw.PostEmptyEvent()
	}
}

// Keys returns the keys pressed since the last call.
func (w *Window) Keys() []input.Key {
	keys := w.keys
	w.keys = nil
	return keys
}

// Size returns the framebuffer size in pixels.
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// Closed reports whether the user asked to close the window.
func (w *Window) Closed() bool {
	return w.win.ShouldClose()
}

// ToggleFullscreen switches between fullscreen on the primary monitor and
// the previous windowed geometry.
func (w *Window) ToggleFullscreen() {
	if w.win.GetMonitor() != nil {
		x, y, width, height := w.saved[0], w.saved[1], w.saved[2], w.saved[3]
		w.win.SetMonitor(nil, x, y, width, height, 0)
		logging.Info("left fullscreen")
		return
	}
	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		logging.Warn("no monitor for fullscreen")
		return
	}
	x, y := w.win.GetPos()
	width, height := w.win.GetSize()
	w.saved = [4]int{x, y, width, height}
	mode := monitor.GetVideoMode()
	w.win.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	logging.Info("entered fullscreen %dx%d", mode.Width, mode.Height)
}

// Swap presents the frame.
func (w *Window) Swap() {
	w.win.SwapBuffers()
}

// Close destroys the window and terminates GLFW.
func (w *Window) Close() {
	w.wakeMu.Lock()
	w.closed = true
	w.wakeMu.Unlock()
	w.win.Destroy()
	glfw.Terminate()
}

var plainKeys = map[glfw.Key]input.Key{
	glfw.KeyUp:        input.KeyUp,
	glfw.KeyDown:      input.KeyDown,
	glfw.KeyLeft:      input.KeyLeft,
	glfw.KeyRight:     input.KeyRight,
	glfw.KeyPageUp:    input.KeyPageUp,
	glfw.KeyPageDown:  input.KeyPageDown,
	glfw.KeyHome:      input.KeyHome,
	glfw.KeyEnd:       input.KeyEnd,
	glfw.KeyEnter:     input.KeyEnter,
	glfw.KeyKPEnter:   input.KeyEnter,
	glfw.KeySpace:     input.KeySpace,
	glfw.KeyBackspace: input.KeyBackspace,
	glfw.KeyDelete:    input.KeyDelete,
	glfw.KeyEscape:    input.KeyEscape,
	glfw.KeyF:         input.KeyF,
	glfw.KeyO:         input.KeyO,
	glfw.KeyH:         input.KeyH,
	glfw.KeyJ:         input.KeyJ,
	glfw.KeyK:         input.KeyK,
	glfw.KeyL:         input.KeyL,
	glfw.KeySlash:     input.KeySlash,
}

// translate maps a GLFW key and its modifiers to an input key. Ctrl+Q
// quits; Tab toggles seen and Shift+Tab toggles the whole directory.
func translate(key glfw.Key, mods glfw.ModifierKey) input.Key {
	mods &= glfw.ModControl | glfw.ModShift | glfw.ModAlt | glfw.ModSuper
	switch {
	case key == glfw.KeyQ && mods == glfw.ModControl:
		return input.KeyQuit
	case key == glfw.KeyTab && mods == 0:
		return input.KeyTab
	case key == glfw.KeyTab && mods == glfw.ModShift:
		return input.KeyShiftTab
	case mods != 0:
		return input.KeyNone
	}
	return plainKeys[key]
}
