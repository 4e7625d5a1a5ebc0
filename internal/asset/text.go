package asset

import (
	"fmt"
	"image"
	"sync"
)

// TextOptions configures a Text asset.
type TextOptions struct {
	Name       string
	MaxWidth   int
	Lines      int
	Persistent bool
}

// Text is a string rendered with a Font.
type Text struct {
	core
	font *Font

	tmu      sync.Mutex
	text     string
	maxWidth int
	lines    int
	set      bool
}

// Text creates an empty text asset that renders on sched.
func (f *Font) Text(sched Scheduler, opts TextOptions) *Text {
	name := opts.Name
	if name == "" {
		name = "text"
	}
	return &Text{
		core:     newCore(name, sched, opts.Persistent),
		font:     f,
		maxWidth: opts.MaxWidth,
		lines:    opts.Lines,
	}
}

// SetText replaces the string. Setting the current string again is a no-op.
func (t *Text) SetText(s string) {
	t.tmu.Lock()
	if t.set && s == t.text && t.State() != Empty {
		t.tmu.Unlock()
		return
	}
	t.text = s
	t.set = true
	maxWidth, lines := t.maxWidth, t.lines
	t.tmu.Unlock()
	t.produce(s, maxWidth, lines)
}

// SetMaxWidth changes the wrap width and re-renders the current string.
func (t *Text) SetMaxWidth(w int) {
	t.tmu.Lock()
	if w == t.maxWidth {
		t.tmu.Unlock()
		return
	}
	t.maxWidth = w
	s, set, lines := t.text, t.set, t.lines
	t.tmu.Unlock()
	if set {
		t.produce(s, w, lines)
	}
}

func (t *Text) produce(s string, maxWidth, lines int) {
	font := t.font
	t.submit(func() (*image.RGBA, error) {
		if font == nil || font.Raster == nil {
			return nil, fmt.Errorf("no rasterizer for %q", s)
		}
		return font.Raster.Rasterize(font, s, maxWidth, lines)
	})
}

// Text returns the current string.
func (t *Text) Text() string {
	t.tmu.Lock()
	defer t.tmu.Unlock()
	return t.text
}

// Width returns the pixel width of the uploaded texture, or 0.
func (t *Text) Width() int {
	w, _ := t.size()
	return w
}

// Height returns the pixel height of the uploaded texture, or 0.
func (t *Text) Height() int {
	_, h := t.size()
	return h
}

func (t *Text) size() (int, int) {
	if tex := t.Texture(); tex != nil {
		return tex.Size()
	}
	return 0, 0
}
