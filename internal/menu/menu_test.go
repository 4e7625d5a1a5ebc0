package menu

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"testing"

	"github.com/atomicstack/fabella/internal/asset"
	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/player"
	"github.com/atomicstack/fabella/internal/render"
	"github.com/atomicstack/fabella/internal/store"
	"github.com/atomicstack/fabella/internal/testutil"
	"github.com/atomicstack/fabella/internal/theme"
	"github.com/atomicstack/fabella/internal/tile"
)

type syncPool struct {
	mu      sync.Mutex
	flushes int
}

func (p *syncPool) Schedule(job func()) { job() }

func (p *syncPool) Flush() {
	p.mu.Lock()
	p.flushes++
	p.mu.Unlock()
}

type blockRasterizer struct{}

func (blockRasterizer) Rasterize(f *asset.Font, s string, maxWidth, lines int) (*image.RGBA, error) {
	w := len(s) + 1
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	return image.NewRGBA(image.Rect(0, 0, w, 4)), nil
}

type recordingQueue struct {
	mu      sync.Mutex
	records []map[string]store.Meta
}

func (q *recordingQueue) Write(dir string, records map[string]store.Meta) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, records)
	return fmt.Sprintf("%d.json", len(q.records)), nil
}

type fakePlayer struct {
	current string
	starts  []string
	unpause int
}

func (p *fakePlayer) Current() string { return p.current }

func (p *fakePlayer) Start(path string, position float64, tr player.Tracker) error {
	p.current = path
	p.starts = append(p.starts, path)
	return nil
}

func (p *fakePlayer) SetPaused(paused bool) error {
	if !paused {
		p.unpause++
	}
	return nil
}

func newTestMenu(t *testing.T, root string) (*Menu, *syncPool, *recordingQueue) {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "fabella.log"))
	pool := &syncPool{}
	queue := &recordingQueue{}
	m := New(Options{
		Root:       root,
		Theme:      theme.Default(),
		TileFont:   asset.NewFont(18, blockRasterizer{}),
		MenuFont:   asset.NewFont(36, blockRasterizer{}),
		RenderPool: pool,
		BuildPool:  pool,
		Queue:      queue,
		Library:    render.NewLibrary(pool, theme.Default(), store.Segments),
		Throttle:   tile.DefaultThrottle(),
		Segments:   store.Segments,
		Enabled:    true,
	})
	if err := m.Load(root); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m, pool, queue
}

func grid(perRow, rows int) Grid {
	return Grid{TilesPerRow: perRow, RowsVisible: rows}
}

func TestLayoutDefaultMetrics(t *testing.T) {
	g := Layout(theme.Default(), 1920, 1080)
	if g.TilesPerRow != 5 || g.HOffset != 64 {
		t.Fatalf("expected 5 tiles per row at offset 64, got %d at %d", g.TilesPerRow, g.HOffset)
	}
	if g.RowsVisible != 3 || g.VOffset != 36 {
		t.Fatalf("expected 3 rows at offset 36, got %d at %d", g.RowsVisible, g.VOffset)
	}
	x, y := g.TilePos(1, 2)
	if x != 64+2*368 || y != 91+36+327 {
		t.Fatalf("unexpected tile position (%d, %d)", x, y)
	}
}

func TestLayoutNeverBelowOne(t *testing.T) {
	g := Layout(theme.Default(), 10, 10)
	if g.TilesPerRow != 1 || g.RowsVisible != 1 {
		t.Fatalf("expected 1x1 grid, got %dx%d", g.TilesPerRow, g.RowsVisible)
	}
}

func TestNextRowFromShortLastRow(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv", "c.mkv", "d.mkv", "e.mkv")
	m, _, _ := newTestMenu(t, root)
	m.Scroll(grid(3, 2))

	m.Select(1)
	if !m.NextRow() || m.Index() != 4 {
		t.Fatalf("expected next row from 1 to select 4, got %d", m.Index())
	}
	if m.NextRow() {
		t.Fatalf("expected next row on last row to be a no-op")
	}
	m.Select(2)
	m.NextRow()
	if m.Index() != 4 {
		t.Fatalf("expected next row from 2 to clamp to 4, got %d", m.Index())
	}
	m.PreviousRow()
	if m.Index() != 1 {
		t.Fatalf("expected previous row from 4 to select 1, got %d", m.Index())
	}
	if m.PreviousRow() {
		t.Fatalf("expected previous row on first row to be a no-op")
	}
}

func TestNavigationClampsWithoutWrapping(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv", "c.mkv")
	m, _, _ := newTestMenu(t, root)
	m.Scroll(grid(2, 1))

	if m.Previous() {
		t.Fatalf("expected previous at 0 to be a no-op")
	}
	m.End()
	if m.Index() != 2 {
		t.Fatalf("expected end to select 2, got %d", m.Index())
	}
	if m.Next() {
		t.Fatalf("expected next at end to be a no-op")
	}
	m.Home()
	if m.Index() != 0 {
		t.Fatalf("expected home to select 0, got %d", m.Index())
	}
}

func TestScrollWindowContainsSelection(t *testing.T) {
	root := t.TempDir()
	var names []string
	for i := 0; i < 20; i++ {
		names = append(names, fmt.Sprintf("video%02d.mkv", i))
	}
	testutil.Touch(t, root, names...)
	m, _, _ := newTestMenu(t, root)
	g := grid(3, 2)
	m.Scroll(g)

	maxOffset := g.TotalRows(20) - g.RowsVisible
	check := func(idx int) {
		t.Helper()
		m.Select(idx)
		m.Scroll(g)
		row, offset := m.Index()/3, m.Offset()
		if row < offset || row >= offset+2 {
			t.Fatalf("index %d: row %d outside window at offset %d", idx, row, offset)
		}
		if offset < 0 || offset > maxOffset {
			t.Fatalf("index %d: offset %d outside [0, %d]", idx, offset, maxOffset)
		}
	}
	for i := 0; i < 20; i++ {
		check(i)
	}
	for i := 19; i >= 0; i-- {
		check(i)
	}
}

func TestPageMovesByVisibleRows(t *testing.T) {
	root := t.TempDir()
	var names []string
	for i := 0; i < 30; i++ {
		names = append(names, fmt.Sprintf("video%02d.mkv", i))
	}
	testutil.Touch(t, root, names...)
	m, _, _ := newTestMenu(t, root)
	m.Scroll(grid(3, 4))

	m.Select(1)
	m.PageDown()
	if m.Index() != 13 {
		t.Fatalf("expected page down to select 13, got %d", m.Index())
	}
	m.PageDown()
	m.PageDown()
	if m.Index() != 28 {
		t.Fatalf("expected page down to stop on the last row at 28, got %d", m.Index())
	}
	m.PageUp()
	if m.Index() != 16 {
		t.Fatalf("expected page up to select 16, got %d", m.Index())
	}
	m.PageUp()
	if m.Index() != 4 {
		t.Fatalf("expected page up to select 4, got %d", m.Index())
	}
	m.PageUp()
	if m.Index() != 1 {
		t.Fatalf("expected page up to stop on the first row at 1, got %d", m.Index())
	}
}

func TestInitialSelectionPrefersWatchingThenUnseen(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv", "c.mkv", "d.mkv")
	q := store.NewQueue()
	if _, err := q.Write(root, map[string]store.Meta{
		"a.mkv": {store.KeyWatched: store.AllWatched(store.Segments)},
		"b.mkv": {store.KeyWatched: store.AllWatched(store.Segments)},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, _, _ := newTestMenu(t, root)
	if m.Index() != 2 {
		t.Fatalf("expected first unseen tile 2, got %d", m.Index())
	}

	if _, err := q.Write(root, map[string]store.Meta{"d.mkv": {store.KeyWatched: uint64(3)}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := m.Load(root); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if m.Index() != 3 {
		t.Fatalf("expected watching tile 3, got %d", m.Index())
	}
}

func TestToggleSeenAllTwice(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv", "c.mkv", "shows/x.mkv")
	m, _, queue := newTestMenu(t, root)
	m.Tiles()[1].UpdatePos(0.5, true)
	before := len(queue.records)

	if err := m.ToggleSeenAll(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	for _, tl := range m.Tiles() {
		if tl.IsDir {
			continue
		}
		if tl.Watched() != store.AllWatched(store.Segments) || tl.Position() != 0 {
			t.Fatalf("expected %s fully watched at 0, got %d at %v", tl.Name, tl.Watched(), tl.Position())
		}
	}
	if len(queue.records) != before+1 || len(queue.records[before]) != 3 {
		t.Fatalf("expected one record for 3 files, got %v", queue.records[before:])
	}

	if err := m.ToggleSeenAll(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	for _, tl := range m.Tiles() {
		if !tl.IsDir && (tl.Watched() != 0 || tl.Position() != 0) {
			t.Fatalf("expected %s unwatched, got %d at %v", tl.Name, tl.Watched(), tl.Position())
		}
	}
	if len(queue.records) != before+2 {
		t.Fatalf("expected a second record, got %d", len(queue.records)-before)
	}
}

func TestEnterDirectoryAndBackReselects(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "z.mkv", "shows/x.mkv", "shows/y.mkv")
	m, _, _ := newTestMenu(t, root)
	m.Scroll(grid(3, 2))

	m.Select(2)
	if cur := m.Current(); cur == nil || !cur.IsDir {
		t.Fatalf("expected directory at index 2, got %v", cur)
	}
	if err := m.Enter(nil); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if m.Path() != filepath.Join(root, "shows") || m.Len() != 2 {
		t.Fatalf("expected shows with 2 tiles, got %s with %d", m.Path(), m.Len())
	}
	if crumbs := m.Breadcrumbs(); len(crumbs) != 1 || crumbs[0] != "shows" {
		t.Fatalf("expected breadcrumbs [shows], got %v", crumbs)
	}
	if m.breadcrumbText() != "shows" {
		t.Fatalf("unexpected breadcrumb text %q", m.breadcrumbText())
	}

	if err := m.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	if m.Path() != root || m.Index() != 2 {
		t.Fatalf("expected root with shows reselected, got %s at %d", m.Path(), m.Index())
	}
	if err := m.Back(); err != nil || m.Path() != root {
		t.Fatalf("expected back at root to be a no-op, got %s err=%v", m.Path(), err)
	}
}

func TestEnterFilePlaysOrUnpauses(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv")
	m, _, _ := newTestMenu(t, root)
	p := &fakePlayer{}

	if err := m.Enter(p); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if len(p.starts) != 1 || p.starts[0] != filepath.Join(root, "a.mkv") {
		t.Fatalf("expected a.mkv started, got %v", p.starts)
	}
	if m.Enabled() {
		t.Fatalf("expected menu closed after starting playback")
	}
	if m.NowPlaying() != "a" {
		t.Fatalf("expected now playing a, got %q", m.NowPlaying())
	}

	m.Open()
	if err := m.Enter(p); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if len(p.starts) != 1 || p.unpause != 1 {
		t.Fatalf("expected unpause of the same file, got starts=%v unpause=%d", p.starts, p.unpause)
	}
}

func TestReloadKeepsSelection(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "b.mkv", "c.mkv")
	m, _, _ := newTestMenu(t, root)
	m.Select(1)

	testutil.Touch(t, root, "a.mkv")
	if err := m.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 tiles after reload, got %d", m.Len())
	}
	if cur := m.Current(); cur == nil || cur.Name != "c.mkv" {
		t.Fatalf("expected c.mkv still selected, got %v", cur)
	}
	if m.Title() != filepath.Base(root) {
		t.Fatalf("expected title %q, got %q", filepath.Base(root), m.Title())
	}
}

func TestLoadFlushesAndRetiresTextures(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv", "shows/x.mkv")
	m, pool, _ := newTestMenu(t, root)
	rec := gfx.NewRecorder()
	gc := gfx.NewContext(rec)
	m.Scroll(grid(3, 2))
	if err := m.EnsureUploaded(gc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	live := rec.Live()

	flushes := pool.flushes
	if err := m.Load(filepath.Join(root, "shows")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if pool.flushes != flushes+2 {
		t.Fatalf("expected both pools flushed, got %d flushes", pool.flushes-flushes)
	}
	if err := m.EnsureUploaded(gc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	// three titles released, one uploaded
	if rec.Live() != live-2 {
		t.Fatalf("expected %d live textures, got %d", live-2, rec.Live())
	}

	m.Teardown(gc)
	lib := m.library
	lib.Close(gc)
	if rec.Live() != 0 {
		t.Fatalf("expected no live textures after teardown, got %d", rec.Live())
	}
}

func TestDrawAddsVisibleTiles(t *testing.T) {
	root := t.TempDir()
	var names []string
	for i := 0; i < 12; i++ {
		names = append(names, fmt.Sprintf("video%02d.mkv", i))
	}
	testutil.Touch(t, root, names...)
	m, _, _ := newTestMenu(t, root)
	gc := gfx.NewContext(gfx.NewRecorder())

	var scene gfx.Scene
	m.Draw(&scene, 1920, 1080, false)
	if err := m.EnsureUploaded(gc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	scene.Reset()
	m.Draw(&scene, 1920, 1080, false)

	outlines, headers := 0, 0
	for _, q := range scene.Quads() {
		switch q.Z {
		case tile.ZOutline:
			outlines++
		case ZHeader:
			headers++
		}
	}
	if outlines != 12 {
		t.Fatalf("expected 12 tiles drawn, got %d", outlines)
	}
	if headers != 2 {
		t.Fatalf("expected breadcrumbs and clock, got %d header quads", headers)
	}
	if q := scene.Quads()[0]; q.Z != ZBackground || q.X2 != 1920 || q.Y2 != 1080 {
		t.Fatalf("expected full-screen background first, got %+v", q)
	}
}

func TestDrawFrameAddsHeaderOnce(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "a.mkv", "b.mkv")
	m, _, _ := newTestMenu(t, root)
	m.SetNowPlaying("a")
	gc := gfx.NewContext(gfx.NewRecorder())
	frame := Frame{Width: 1920, Height: 1080, Playing: true, OSD: true}

	var scene gfx.Scene
	m.DrawFrame(&scene, frame)
	if err := m.EnsureUploaded(gc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	scene.Reset()
	if !m.DrawFrame(&scene, frame) {
		t.Fatalf("expected the frame to draw")
	}

	headers, osd := 0, 0
	for _, q := range scene.Quads() {
		switch q.Z {
		case ZHeader:
			headers++
		case ZOSD:
			osd++
		}
	}
	if headers != 2 {
		t.Fatalf("expected breadcrumbs and clock once, got %d header quads", headers)
	}
	if osd != 2 {
		t.Fatalf("expected name and status, got %d osd quads", osd)
	}

	m.Close()
	scene.Reset()
	if m.DrawFrame(&scene, Frame{Width: 1920, Height: 1080, Playing: true}) {
		t.Fatalf("expected nothing drawn with the menu closed and no overlay")
	}
	if scene.Len() != 0 {
		t.Fatalf("expected an empty scene, got %d quads", scene.Len())
	}
}

func TestFindSelectsBestMatch(t *testing.T) {
	root := t.TempDir()
	testutil.Touch(t, root, "Alpha Centauri.mkv", "Beta.mkv", "Gamma Ray.mkv", "Omega.mkv")
	m, _, _ := newTestMenu(t, root)
	m.Scroll(grid(3, 2))

	if idx := m.Find("gamma"); idx != 2 || m.Index() != 2 {
		t.Fatalf("expected gamma at 2, got %d (selected %d)", idx, m.Index())
	}
	if idx := m.Find("mega"); idx != 3 {
		t.Fatalf("expected substring match at 3, got %d", idx)
	}
	if idx := m.Find("acn"); idx != 0 {
		t.Fatalf("expected fuzzy match at 0, got %d", idx)
	}
	if idx := m.Find("zzz"); idx != -1 || m.Index() != 0 {
		t.Fatalf("expected no match to keep selection, got %d (selected %d)", idx, m.Index())
	}
}

func TestFormatStatus(t *testing.T) {
	cases := []struct {
		status Status
		want   string
	}{
		{Status{Paused: true, Position: 0.5, Duration: 7260, KnownDuration: true}, "⏸  1:00  ⁄  2:01"},
		{Status{Position: 0, Duration: 59, KnownDuration: true}, "▶  0:00  ⁄  0:00"},
		{Status{}, "▶  ?:??"},
	}
	for _, tc := range cases {
		if got := FormatStatus(tc.status); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
