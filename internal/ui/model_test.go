package ui

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/fabella/internal/input"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/menu"
	"github.com/atomicstack/fabella/internal/player"
	"github.com/atomicstack/fabella/internal/testutil"
	"github.com/atomicstack/fabella/internal/theme"
	tea "github.com/charmbracelet/bubbletea"
)

var testNow = time.Date(2024, time.March, 4, 21, 5, 9, 0, time.UTC)

type fakePlayer struct {
	current  string
	paused   bool
	position float64
	stops    int
	seeks    []float64
}

func (p *fakePlayer) Current() string { return p.current }
func (p *fakePlayer) Playing() bool   { return p.current != "" }
func (p *fakePlayer) Paused() bool    { return p.paused }

func (p *fakePlayer) Position() float64 { return p.position }

func (p *fakePlayer) Duration() (float64, bool) { return 0, false }

func (p *fakePlayer) Start(path string, position float64, tr player.Tracker) error {
	p.current = path
	p.position = position
	return nil
}

func (p *fakePlayer) SetPaused(paused bool) error {
	p.paused = paused
	return nil
}

func (p *fakePlayer) TogglePause() error {
	p.paused = !p.paused
	return nil
}

func (p *fakePlayer) Stop() error {
	p.stops++
	p.current = ""
	return nil
}

func (p *fakePlayer) Seek(amount float64, mode player.SeekMode) {
	p.seeks = append(p.seeks, amount)
}

func (p *fakePlayer) CycleSubtitles(down bool) {}

func newTestModel(t *testing.T, root string, width, height int) (*Model, *menu.Menu, *fakePlayer) {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "fabella.log"))
	mn := menu.New(menu.Options{
		Root:    root,
		Theme:   theme.Default(),
		Clock:   func() time.Time { return testNow },
		Enabled: true,
	})
	if err := mn.Load(root); err != nil {
		t.Fatalf("load: %v", err)
	}
	p := &fakePlayer{}
	m := NewModel(Options{
		Menu:   mn,
		Player: p,
		Width:  width,
		Height: height,
		Clock:  func() time.Time { return testNow },
	})
	return m, mn, p
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysMoveSelection(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv", "c.mkv", "d.mkv")
	m, mn, _ := newTestModel(t, root, 80, 24)
	h := NewHarness(m)
	h.View()

	h.Press("right")
	if mn.Index() != 1 {
		t.Fatalf("expected index 1 after right, got %d", mn.Index())
	}
	h.Press("l")
	if mn.Index() != 2 {
		t.Fatalf("expected index 2 after l, got %d", mn.Index())
	}
	h.Press("end")
	if mn.Index() != 3 {
		t.Fatalf("expected index 3 after end, got %d", mn.Index())
	}
	h.Press("home")
	if mn.Index() != 0 {
		t.Fatalf("expected index 0 after home, got %d", mn.Index())
	}
}

func TestEnterPlaysAndEscapeReturnsToMenu(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv")
	m, mn, p := newTestModel(t, root, 80, 24)
	h := NewHarness(m)

	h.Press("enter")
	if p.current != filepath.Join(root, "a.mkv") {
		t.Fatalf("expected a.mkv playing, got %q", p.current)
	}
	if h.Model().Mode() != input.ModeVideo || mn.Enabled() {
		t.Fatalf("expected video mode after enter")
	}

	h.Press("right")
	if len(p.seeks) != 1 || p.seeks[0] != 5 {
		t.Fatalf("expected a 5 second seek, got %v", p.seeks)
	}
	h.Press("space")
	if !p.paused {
		t.Fatalf("expected space to pause")
	}

	h.Press("esc")
	if h.Model().Mode() != input.ModeMenu || p.stops != 0 {
		t.Fatalf("expected menu over the paused video, got mode %s stops %d", h.Model().Mode(), p.stops)
	}
}

func TestDirectoryChangesReleaseRetiredTiles(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv", "shows/x.mkv")
	m, mn, _ := newTestModel(t, root, 80, 24)
	h := NewHarness(m)

	for i := 0; i < 20; i++ {
		h.Press("end", "enter")
		if mn.Path() != filepath.Join(root, "shows") {
			t.Fatalf("expected to enter shows, got %s", mn.Path())
		}
		h.Press("backspace")
		if mn.Path() != root {
			t.Fatalf("expected to return to root, got %s", mn.Path())
		}
	}
	if n := mn.Retired(); n != 0 {
		t.Fatalf("expected retired tiles to be released, got %d held", n)
	}
}

func TestQuitKeyReturnsQuitCommand(t *testing.T) {
	root := t.TempDir()
	m, _, _ := newTestModel(t, root, 80, 24)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg from quit command")
	}

	h := NewHarness(m)
	h.Press("ctrl+c")
	if !h.Quitting() {
		t.Fatalf("expected ctrl+c to quit")
	}
}

func TestWindowSizeUpdatesUnlessFixed(t *testing.T) {
	root := t.TempDir()
	m, _, _ := newTestModel(t, root, 0, 0)
	NewHarness(m).Resize(120, 40)
	if m.width != 120 || m.height != 40 {
		t.Fatalf("expected 120x40, got %dx%d", m.width, m.height)
	}

	fixed, _, _ := newTestModel(t, root, 60, 20)
	NewHarness(fixed).Resize(120, 40)
	if fixed.width != 60 || fixed.height != 20 {
		t.Fatalf("expected fixed 60x20, got %dx%d", fixed.width, fixed.height)
	}
}

func TestTickSchedulesNextTick(t *testing.T) {
	root := t.TempDir()
	m, _, _ := newTestModel(t, root, 80, 24)
	if cmd := m.handleTickMsg(tickMsg(testNow)); cmd == nil {
		t.Fatalf("expected next tick to be scheduled")
	}
}

func TestTranslateKey(t *testing.T) {
	cases := map[string]struct {
		msg  tea.KeyMsg
		want input.Key
	}{
		"pgdown":    {tea.KeyMsg{Type: tea.KeyPgDown}, input.KeyPageDown},
		"shift+tab": {tea.KeyMsg{Type: tea.KeyShiftTab}, input.KeyShiftTab},
		"ctrl+c":    {tea.KeyMsg{Type: tea.KeyCtrlC}, input.KeyQuit},
		"slash":     {runes("/"), input.KeySlash},
		"j":         {runes("j"), input.KeyJ},
		"x":         {runes("x"), input.KeyNone},
	}
	for name, tc := range cases {
		if got := translateKey(tc.msg); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", name, tc.want, got)
		}
	}
}
