package menu

import (
	"errors"
	"fmt"

	"github.com/atomicstack/fabella/internal/asset"
	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/tile"
)

// Depths of the menu layers. Tiles sit between the background and the
// header.
const (
	ZBackground float32 = 1
	ZHeader     float32 = 100
	ZOSD        float32 = 101
)

// ClockFormat is the layout of the header clock.
const ClockFormat = "Mon 15:04:05"

var overlay = [4]float32{0, 0, 0, 0.66}

// Status is the playback state shown on the OSD.
type Status struct {
	Paused        bool
	Position      float64
	Duration      float64
	KnownDuration bool
}

// FormatStatus renders the OSD status line, e.g. "▶  0:12  ⁄  1:45".
func FormatStatus(s Status) string {
	prefix := "▶  "
	if s.Paused {
		prefix = "⏸  "
	}
	if !s.KnownDuration {
		return prefix + tile.UnknownDuration
	}
	return prefix + clockTime(s.Position*s.Duration) + "  ⁄  " + clockTime(s.Duration)
}

// clockTime renders whole minutes as H:MM.
func clockTime(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/3600, (total%3600)/60)
}

// Draw adds the background, header and visible tiles to scene. With
// transparent set the background only dims what is behind the menu.
func (m *Menu) Draw(scene *gfx.Scene, width, height int, transparent bool) {
	m.drawBackground(scene, width, height, transparent)
	m.drawHeader(scene, width)
	m.drawTiles(scene, width, height)
}

// DrawOSD adds the header, the name of the playing video and its status
// line to scene.
func (m *Menu) DrawOSD(scene *gfx.Scene, width, height int, status Status) {
	m.drawHeader(scene, width)
	m.drawNowPlaying(scene, width, status)
}

// Frame is what the render loop shows in one frame.
type Frame struct {
	Width   int
	Height  int
	Playing bool
	// OSD requests the now-playing overlay; it only shows while playing.
	OSD    bool
	Status Status
}

// DrawFrame adds the OSD and the open menu to scene, sharing one header
// between them. It returns whether anything was added.
func (m *Menu) DrawFrame(scene *gfx.Scene, f Frame) bool {
	osd := f.Playing && f.OSD
	shown := m.Enabled()
	if !osd && !shown {
		return false
	}
	if shown {
		m.drawBackground(scene, f.Width, f.Height, f.Playing)
	}
	m.drawHeader(scene, f.Width)
	if osd {
		m.drawNowPlaying(scene, f.Width, f.Status)
	}
	if shown {
		m.drawTiles(scene, f.Width, f.Height)
	}
	return true
}

func (m *Menu) drawBackground(scene *gfx.Scene, width, height int, transparent bool) {
	bg := m.metrics.Background
	if transparent {
		bg = overlay
	}
	scene.Add(gfx.Quad{X2: float32(width), Y2: float32(height), Z: ZBackground, Color: bg})
}

func (m *Menu) drawTiles(scene *gfx.Scene, width, height int) {
	grid := m.Layout(width, height)
	m.Scroll(grid)
	if m.library == nil {
		return
	}
	m.mu.Lock()
	tiles, first, current := m.visibleLocked()
	perRow := m.perRow
	m.mu.Unlock()
	for i, t := range tiles {
		x, y := grid.TilePos(i/perRow, i%perRow)
		t.Draw(scene, m.library, x, y, first+i == current)
	}
}

func (m *Menu) drawNowPlaying(scene *gfx.Scene, width int, status Status) {
	if m.name == nil || m.status == nil {
		return
	}
	hspace, vspace := m.metrics.HeaderHSpace, m.metrics.HeaderVSpace
	m.status.SetText(FormatStatus(status))
	m.name.SetMaxWidth(max(1, width-hspace*3-m.status.Width()))

	y := vspace*2 + m.bread.Height()
	m.addText(scene, m.name, hspace, y, ZOSD)
	m.addText(scene, m.status, width-hspace-m.status.Width(), y, ZOSD)
}

// SetNowPlaying sets the name shown on the OSD.
func (m *Menu) SetNowPlaying(name string) {
	m.mu.Lock()
	m.playing = name
	m.mu.Unlock()
	if m.name != nil {
		m.name.SetText(name)
	}
}

// NowPlaying returns the name of the video last started from the menu.
func (m *Menu) NowPlaying() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Menu) drawHeader(scene *gfx.Scene, width int) {
	if m.bread == nil || m.clockT == nil {
		return
	}
	hspace, vspace := m.metrics.HeaderHSpace, m.metrics.HeaderVSpace
	m.clockT.SetText(m.clock().Format(ClockFormat))
	m.addText(scene, m.bread, hspace, vspace, ZHeader)
	m.addText(scene, m.clockT, width-hspace-m.clockT.Width(), vspace, ZHeader)
}

func (m *Menu) addText(scene *gfx.Scene, text *asset.Text, x, y int, z float32) {
	tex := text.Texture()
	if tex == nil {
		return
	}
	w, h := tex.Size()
	fx, fy := float32(x), float32(y)
	scene.Add(gfx.Quad{X1: fx, Y1: fy, X2: fx + float32(w), Y2: fy + float32(h), Z: z, Texture: tex, Color: m.metrics.TextColor})
}

// visibleLocked returns the tiles inside the scroll window, the index of
// the first one and the selected index.
func (m *Menu) visibleLocked() ([]*tile.Tile, int, int) {
	first := m.offset * m.perRow
	if first >= len(m.tiles) {
		return nil, first, m.current
	}
	last := min(len(m.tiles), first+m.rows*m.perRow)
	return m.tiles[first:last], first, m.current
}

// Visible returns the tiles inside the scroll window and the index of the
// first one.
func (m *Menu) Visible() ([]*tile.Tile, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tiles, first, _ := m.visibleLocked()
	return append([]*tile.Tile(nil), tiles...), first
}

// Retired returns how many tiles of earlier directories still await
// release.
func (m *Menu) Retired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.retired)
}

// EnsureUploaded releases the textures of retired tiles and uploads the
// header, shared textures and visible tiles. It runs on the render
// goroutine.
func (m *Menu) EnsureUploaded(gc *gfx.Context) error {
	m.mu.Lock()
	retired := m.retired
	m.retired = nil
	visible, _, _ := m.visibleLocked()
	visible = append([]*tile.Tile(nil), visible...)
	m.mu.Unlock()

	releaseAll(gc, retired)

	var errs []error
	if m.library != nil {
		if err := m.library.EnsureUploaded(gc); err != nil {
			errs = append(errs, err)
		}
	}
	for _, text := range m.headerTexts() {
		if err := text.EnsureUploaded(gc); err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range visible {
		if err := t.EnsureUploaded(gc); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Menu) headerTexts() []*asset.Text {
	var out []*asset.Text
	for _, text := range []*asset.Text{m.bread, m.clockT, m.name, m.status} {
		if text != nil {
			out = append(out, text)
		}
	}
	return out
}

// Teardown forgets all tiles and destroys the header textures.
func (m *Menu) Teardown(gc *gfx.Context) {
	m.Forget(gc)
	for _, text := range m.headerTexts() {
		text.Release(gc, true)
	}
}
