// Package menu is the tile grid: it loads a directory into tiles, tracks
// the selection and scroll window, walks the directory tree and draws the
// grid and its header.
package menu

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/fabella/internal/asset"
	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
	"github.com/atomicstack/fabella/internal/player"
	"github.com/atomicstack/fabella/internal/render"
	"github.com/atomicstack/fabella/internal/store"
	"github.com/atomicstack/fabella/internal/theme"
	"github.com/atomicstack/fabella/internal/tile"
)

// CrumbSeparator joins breadcrumbs in the header.
const CrumbSeparator = "  ›  "

// Pool runs deferred jobs and can discard the ones not yet started.
// *pool.Pool satisfies it.
type Pool interface {
	Schedule(job func())
	Flush()
}

// Player is the playback side of Enter. *player.Session satisfies it.
type Player interface {
	Current() string
	Start(path string, position float64, tr player.Tracker) error
	SetPaused(paused bool) error
}

// Options configures a Menu.
type Options struct {
	Root       string
	Theme      theme.Metrics
	TileFont   *asset.Font
	MenuFont   *asset.Font
	RenderPool Pool
	BuildPool  Pool
	Queue      tile.Persister
	Library    *render.Library
	Clock      func() time.Time
	Throttle   tile.Throttle
	Segments   int
	Enabled    bool
}

// Menu holds the tiles of the current directory and the navigation state.
type Menu struct {
	root       string
	metrics    theme.Metrics
	tileFont   *asset.Font
	renderPool Pool
	buildPool  Pool
	queue      tile.Persister
	library    *render.Library
	clock      func() time.Time
	throttle   tile.Throttle
	segments   int

	bread  *asset.Text
	clockT *asset.Text
	name   *asset.Text
	status *asset.Text

	mu      sync.Mutex
	path    string
	tiles   []*tile.Tile
	retired []*tile.Tile
	current int
	offset  int
	perRow  int
	rows    int
	crumbs  []string
	enabled bool
	playing string
}

// New creates a menu rooted at opts.Root. Call Load to populate it.
func New(opts Options) *Menu {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Segments <= 0 {
		opts.Segments = store.Segments
	}
	m := &Menu{
		root:       filepath.Clean(opts.Root),
		metrics:    opts.Theme,
		tileFont:   opts.TileFont,
		renderPool: opts.RenderPool,
		buildPool:  opts.BuildPool,
		queue:      opts.Queue,
		library:    opts.Library,
		clock:      opts.Clock,
		throttle:   opts.Throttle,
		segments:   opts.Segments,
		enabled:    opts.Enabled,
		perRow:     1,
		rows:       1,
	}
	if opts.MenuFont != nil {
		text := func(name string, lines int) *asset.Text {
			return opts.MenuFont.Text(opts.RenderPool, asset.TextOptions{Name: name, Lines: lines, Persistent: true})
		}
		m.bread = text("breadcrumbs", 1)
		m.clockT = text("clock", 1)
		m.name = text("now-playing", 4)
		m.status = text("status", 1)
	}
	logging.Info("created menu: root=%s enabled=%t", m.root, m.enabled)
	return m
}

// Root returns the library root.
func (m *Menu) Root() string { return m.root }

// Path returns the directory currently shown.
func (m *Menu) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// Breadcrumbs returns the directory names from the root to the current
// directory.
func (m *Menu) Breadcrumbs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.crumbs...)
}

// Tiles returns the tiles of the current directory.
func (m *Menu) Tiles() []*tile.Tile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*tile.Tile(nil), m.tiles...)
}

// Len returns the number of tiles.
func (m *Menu) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tiles)
}

// Index returns the selected index, or -1 when the directory is empty.
func (m *Menu) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tiles) == 0 {
		return -1
	}
	return m.current
}

// Offset returns the first visible row.
func (m *Menu) Offset() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offset
}

// Current returns the selected tile, or nil when the directory is empty.
func (m *Menu) Current() *tile.Tile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked()
}

func (m *Menu) currentLocked() *tile.Tile {
	if m.current < 0 || m.current >= len(m.tiles) {
		return nil
	}
	return m.tiles[m.current]
}

// Open shows the menu.
func (m *Menu) Open() {
	m.setEnabled(true)
}

// Close hides the menu.
func (m *Menu) Close() {
	m.setEnabled(false)
}

func (m *Menu) setEnabled(enabled bool) {
	m.mu.Lock()
	changed := m.enabled != enabled
	m.enabled = enabled
	m.mu.Unlock()
	if changed {
		logging.Info("menu enabled=%t", enabled)
		events.Menu.Visibility(enabled)
	}
}

// Enabled reports whether the menu is shown.
func (m *Menu) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Load replaces the tiles with the contents of path. Pending work for the
// old directory is discarded before its tiles are retired; their textures
// are released by the next EnsureUploaded.
func (m *Menu) Load(path string) error {
	start := time.Now()
	m.flush()
	// The flush discarded any pending header render, so the breadcrumbs are
	// set again once the load finishes.
	defer m.updateBreadcrumbs()
	m.mu.Lock()
	m.retired = append(m.retired, m.tiles...)
	m.tiles = nil
	m.current, m.offset = 0, 0
	m.path = path
	m.mu.Unlock()

	logging.Info("loading %s", path)
	entries, err := store.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	tiles := make([]*tile.Tile, 0, len(entries))
	for _, entry := range entries {
		t := tile.New(tile.Options{
			Dir:       path,
			Name:      entry.Name(),
			IsDir:     entry.IsDir(),
			Font:      m.tileFont,
			Pool:      m.renderPool,
			Persister: m.queue,
			Clock:     m.clock,
			Throttle:  m.throttle,
			Segments:  m.segments,
			Theme:     m.metrics,
		})
		tiles = append(tiles, t)
		if err := t.UpdateMeta(entry); err != nil {
			m.mu.Lock()
			m.retired = append(m.retired, tiles...)
			m.mu.Unlock()
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}

	selected := initialSelection(tiles)
	m.mu.Lock()
	m.tiles = tiles
	m.current = selected
	m.mu.Unlock()

	if m.buildPool != nil {
		m.buildPool.Schedule(m.LoadCovers)
	}
	logging.Info("loaded %s: %d tiles in %s", path, len(tiles), time.Since(start).Round(time.Millisecond))
	events.Menu.Load(path, len(tiles), selected)
	return nil
}

// initialSelection picks the first partially watched tile, else the first
// unseen one, else the first tile.
func initialSelection(tiles []*tile.Tile) int {
	for i, t := range tiles {
		if t.Watching() {
			return i
		}
	}
	for i, t := range tiles {
		if t.Unseen() {
			return i
		}
	}
	return 0
}

func (m *Menu) flush() {
	if m.buildPool != nil {
		m.buildPool.Flush()
	}
	if m.renderPool != nil {
		m.renderPool.Flush()
	}
}

// Forget discards pending work and releases the textures of every tile,
// current and retired.
func (m *Menu) Forget(gc *gfx.Context) {
	logging.Info("forgetting tiles")
	m.flush()
	m.mu.Lock()
	tiles := append(m.retired, m.tiles...)
	m.retired = nil
	m.tiles = nil
	m.current, m.offset = 0, 0
	m.mu.Unlock()
	releaseAll(gc, tiles)
}

func releaseAll(gc *gfx.Context, tiles []*tile.Tile) {
	if len(tiles) == 0 {
		return
	}
	released := 0
	for _, t := range tiles {
		released += t.Release(gc, true)
	}
	events.Tile.Release(released)
}

// LoadCovers applies the current directory's cover archive to its tiles.
// It runs on the build pool.
func (m *Menu) LoadCovers() {
	m.mu.Lock()
	path := m.path
	tiles := append([]*tile.Tile(nil), m.tiles...)
	m.mu.Unlock()
	if path == "" || len(tiles) == 0 {
		return
	}

	start := time.Now()
	covers, err := store.OpenCovers(path)
	if err != nil {
		logging.Error(fmt.Errorf("parsing cover archive %s: %w", store.CoverPath(path), err))
		return
	}
	defer covers.Close()
	for _, t := range tiles {
		if err := t.UpdateCover(covers); err != nil {
			logging.Warn("cover for %s: %v", t.Name, err)
		}
	}
	logging.Info("updated %d covers in %s", len(tiles), time.Since(start).Round(time.Millisecond))
}

// ToggleSeen flips the watched state of the selected tile.
func (m *Menu) ToggleSeen() {
	if t := m.Current(); t != nil {
		t.ToggleSeen()
	}
}

// ToggleTrash flips the trash flag of the selected tile.
func (m *Menu) ToggleTrash() {
	if t := m.Current(); t != nil {
		t.ToggleTrash()
	}
}

// ToggleSeenAll marks every file fully watched if any of them is unseen,
// otherwise unwatched, and stores the change as a single record.
func (m *Menu) ToggleSeenAll() error {
	m.mu.Lock()
	path := m.path
	tiles := append([]*tile.Tile(nil), m.tiles...)
	m.mu.Unlock()

	seen := false
	for _, t := range tiles {
		if !t.IsDir && t.Unseen() {
			seen = true
			break
		}
	}
	records := make(map[string]store.Meta)
	var watched uint64
	for _, t := range tiles {
		if rec := t.MarkSeen(seen); rec != nil {
			records[t.Name] = rec
			watched = t.Watched()
		}
	}
	if len(records) == 0 {
		return nil
	}
	events.Menu.SeenAll(path, watched, len(records))
	if m.queue == nil {
		return nil
	}
	if _, err := m.queue.Write(path, records); err != nil {
		return fmt.Errorf("writing state for %s: %w", path, err)
	}
	return nil
}

// Enter descends into the selected directory or plays the selected file.
// Playing a file closes the menu.
func (m *Menu) Enter(p Player) error {
	t := m.Current()
	if t == nil {
		return nil
	}
	events.Menu.Enter(t.Dir, t.Name, t.IsDir)
	if t.IsDir {
		return m.descend(t)
	}
	return m.play(t, p)
}

func (m *Menu) descend(t *tile.Tile) error {
	previous := m.Path()
	m.mu.Lock()
	m.crumbs = append(m.crumbs, t.Name)
	m.mu.Unlock()

	if err := m.Load(t.FullPath); err != nil {
		m.mu.Lock()
		m.crumbs = m.crumbs[:len(m.crumbs)-1]
		m.mu.Unlock()
		if rerr := m.Load(previous); rerr != nil {
			logging.Error(rerr)
		}
		m.reselect(t.Name)
		return err
	}
	return nil
}

func (m *Menu) play(t *tile.Tile, p Player) error {
	if p == nil {
		return nil
	}
	if p.Current() != t.FullPath {
		logging.Info("starting new video: %s", t)
		m.SetNowPlaying(tile.DisplayName(t.Name, false))
		if err := p.Start(t.FullPath, t.Position(), t); err != nil {
			return fmt.Errorf("playing %s: %w", t.FullPath, err)
		}
	} else {
		logging.Info("already playing %s, unpausing", t)
		if err := p.SetPaused(false); err != nil {
			logging.Warn("unpausing: %v", err)
		}
	}
	m.Close()
	return nil
}

// Back returns to the parent directory and reselects the directory just
// left. It does nothing at the root.
func (m *Menu) Back() error {
	m.mu.Lock()
	if len(m.crumbs) == 0 {
		m.mu.Unlock()
		logging.Info("hit root, not going up")
		return nil
	}
	m.crumbs = m.crumbs[:len(m.crumbs)-1]
	from := m.path
	m.mu.Unlock()

	to := filepath.Dir(from)
	left := filepath.Base(from)
	events.Menu.Back(from, to)
	if err := m.Load(to); err != nil {
		return err
	}
	m.reselect(left)
	return nil
}

// Reload loads the current directory again and keeps the selection on the
// same entry when it still exists.
func (m *Menu) Reload() error {
	path := m.Path()
	if path == "" {
		return nil
	}
	var name string
	if t := m.Current(); t != nil {
		name = t.Name
	}
	if err := m.Load(path); err != nil {
		return err
	}
	if name != "" {
		m.reselect(name)
	}
	return nil
}

func (m *Menu) reselect(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tiles {
		if t.Name == name {
			m.current = i
			return
		}
	}
}

func (m *Menu) updateBreadcrumbs() {
	if m.bread == nil {
		return
	}
	m.bread.SetText(m.breadcrumbText())
}

// Title returns the header line: the root's name, or the breadcrumbs once
// below it.
func (m *Menu) Title() string { return m.breadcrumbText() }

func (m *Menu) breadcrumbText() string {
	crumbs := m.Breadcrumbs()
	if len(crumbs) == 0 {
		return filepath.Base(m.root)
	}
	return strings.Join(crumbs, CrumbSeparator)
}
