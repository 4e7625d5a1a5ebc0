// Package tile models one browsable entry of a directory: its metadata,
// watched state and the assets drawn for it.
package tile

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/fabella/internal/asset"
	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
	"github.com/atomicstack/fabella/internal/store"
	"github.com/atomicstack/fabella/internal/theme"
)

// ErrIdentityMismatch is returned when a record does not describe the tile
// it is applied to.
var ErrIdentityMismatch = errors.New("tile identity mismatch")

// UnknownDuration is shown for entries whose duration is null.
const UnknownDuration = "?:??"

// Persister stores update records. *store.Queue satisfies it.
type Persister interface {
	Write(dir string, records map[string]store.Meta) (string, error)
}

// CoverSource looks up encoded cover images by entry name.
type CoverSource interface {
	Lookup(name string) ([]byte, error)
}

// Throttle bounds how often playback position updates are persisted.
type Throttle struct {
	Interval time.Duration `mapstructure:"persist_interval" validate:"gte=0"`
	MinMove  float64       `mapstructure:"persist_min_move" validate:"gte=0"`
}

// DefaultThrottle persists at most every ten seconds unless the position
// moved by more than one percent.
func DefaultThrottle() Throttle {
	return Throttle{Interval: 10 * time.Second, MinMove: 0.01}
}

// Options configures a tile.
type Options struct {
	Dir       string
	Name      string
	IsDir     bool
	Font      *asset.Font
	Pool      asset.Scheduler
	Persister Persister
	Clock     func() time.Time
	Throttle  Throttle
	Segments  int
	Theme     theme.Metrics
}

// Tile is one file or directory in the grid.
type Tile struct {
	Name     string
	Dir      string
	FullPath string
	IsDir    bool
	Title    *asset.Text

	font      *asset.Font
	pool      asset.Scheduler
	persister Persister
	clock     func() time.Time
	throttle  Throttle
	segments  int
	metrics   theme.Metrics

	mu          sync.Mutex
	info        *asset.Text
	cover       *asset.Image
	duration    float64
	hasDuration bool
	position    float64
	watched     uint64
	trash       bool
	color       theme.Color
	lastPersist time.Time
}

// New creates a tile and schedules its title for rendering.
func New(opts Options) *Tile {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Segments <= 0 {
		opts.Segments = store.Segments
	}
	t := &Tile{
		Name:      opts.Name,
		Dir:       opts.Dir,
		FullPath:  filepath.Join(opts.Dir, opts.Name),
		IsDir:     opts.IsDir,
		font:      opts.Font,
		pool:      opts.Pool,
		persister: opts.Persister,
		clock:     opts.Clock,
		throttle:  opts.Throttle,
		segments:  opts.Segments,
		metrics:   opts.Theme,
		color:     opts.Theme.FallbackColor,
	}
	if opts.Font != nil {
		t.Title = opts.Font.Text(opts.Pool, asset.TextOptions{
			Name:     "title:" + opts.Name,
			MaxWidth: opts.Theme.TileWidth,
			Lines:    opts.Theme.TextLines,
		})
		t.Title.SetText(DisplayName(opts.Name, opts.IsDir))
	}
	return t
}

// DisplayName is the title shown for an entry: directories keep their name,
// files lose their extension.
func DisplayName(name string, isDir bool) string {
	if isDir {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (t *Tile) String() string {
	return fmt.Sprintf("Tile(dir=%s, name=%s, isdir=%t)", t.Dir, t.Name, t.IsDir)
}

// UpdateMeta applies the fields present in m.
func (t *Tile) UpdateMeta(m store.Meta) error {
	if m.Name() != t.Name || m.IsDir() != t.IsDir {
		return fmt.Errorf("%s: record name=%q isdir=%t: %w", t, m.Name(), m.IsDir(), ErrIdentityMismatch)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if m.Has(store.KeyTileColor) {
		t.color = t.metrics.FallbackColor
		if hex, ok := m.String(store.KeyTileColor); ok {
			if c, err := ParseHexColor(hex); err == nil {
				t.color = c
			} else {
				logging.Warn("%s: %v", t, err)
			}
		}
	}

	if m.Has(store.KeyDuration) {
		if t.info == nil && t.font != nil {
			t.info = t.font.Text(t.pool, asset.TextOptions{Name: "info:" + t.Name, Lines: 1})
		}
		label := UnknownDuration
		if d, ok := m.Float(store.KeyDuration); ok {
			t.duration, t.hasDuration = d, true
			label = FormatDuration(d)
		} else {
			t.duration, t.hasDuration = 0, false
		}
		if t.info != nil {
			t.info.SetText(label)
		}
	}

	if p, ok := m.Float(store.KeyPosition); ok {
		t.position = p
	}
	if w, ok := m.Uint(store.KeyWatched); ok {
		t.watched = w
	}
	if tr, ok := m.Bool(store.KeyTrash); ok {
		t.trash = tr
	}
	return nil
}

// UpdateCover loads the tile's cover from covers. An empty entry keeps the
// fallback fill; a missing entry is logged.
func (t *Tile) UpdateCover(covers CoverSource) error {
	data, err := covers.Lookup(t.Name)
	if errors.Is(err, store.ErrCoverNotFound) {
		logging.Warn("loading cover for %s: not found in archive", t.Name)
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	t.mu.Lock()
	if t.cover == nil {
		t.cover = asset.NewImage(t.pool, t.metrics.TileWidth, t.metrics.ThumbHeight, "cover:"+t.Name)
	}
	cover := t.cover
	t.mu.Unlock()
	cover.SetSource(data)
	return nil
}

// UpdatePos records a playback position, marks its segment watched and
// persists when the throttle allows it or force is set.
func (t *Tile) UpdatePos(position float64, force bool) {
	if t.IsDir {
		return
	}
	t.mu.Lock()
	old := t.position
	oldWatched := t.watched
	t.position = position
	t.watched |= store.SegmentBit(position, t.segments)
	now := t.clock()
	due := force ||
		now.Sub(t.lastPersist) >= t.throttle.Interval ||
		math.Abs(position-old) > t.throttle.MinMove ||
		t.watched != oldWatched
	var rec store.Meta
	if due {
		t.lastPersist = now
		rec = store.Meta{store.KeyPosition: t.position, store.KeyWatched: t.watched}
	}
	t.mu.Unlock()

	if rec == nil {
		events.Tile.Throttled(t.Dir, t.Name, position)
		return
	}
	t.persist(rec)
}

// ToggleSeen flips between fully watched and unwatched.
func (t *Tile) ToggleSeen() {
	if t.IsDir {
		return
	}
	t.mu.Lock()
	seen := t.watched < store.AllWatched(t.segments)
	t.mu.Unlock()
	t.SetSeen(seen)
}

// SetSeen marks the tile fully watched or unwatched and persists it.
func (t *Tile) SetSeen(seen bool) {
	if rec := t.MarkSeen(seen); rec != nil {
		t.persist(rec)
	}
}

// MarkSeen is SetSeen without persisting. It returns the record to store,
// or nil for directories.
func (t *Tile) MarkSeen(seen bool) store.Meta {
	if t.IsDir {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if seen {
		t.watched = store.AllWatched(t.segments)
	} else {
		t.watched = 0
	}
	t.position = 0
	return store.Meta{store.KeyPosition: t.position, store.KeyWatched: t.watched}
}

// ToggleTrash flips the trash flag and persists it.
func (t *Tile) ToggleTrash() {
	if t.IsDir {
		return
	}
	t.mu.Lock()
	t.trash = !t.trash
	rec := store.Meta{store.KeyTrash: t.trash}
	t.mu.Unlock()
	t.persist(rec)
}

func (t *Tile) persist(rec store.Meta) {
	if t.persister == nil {
		return
	}
	if _, err := t.persister.Write(t.Dir, map[string]store.Meta{t.Name: rec}); err != nil {
		logging.Error(fmt.Errorf("writing state for %s: %w", t.Name, err))
		return
	}
	events.Tile.Persist(t.Dir, t.Name, rec)
}

// Unseen reports a file with no watched segment.
func (t *Tile) Unseen() bool {
	if t.IsDir {
		return false
	}
	return store.Unseen(t.Watched())
}

// Watching reports a file that is partially watched.
func (t *Tile) Watching() bool {
	if t.IsDir {
		return false
	}
	return store.Watching(t.Watched(), t.segments)
}

func (t *Tile) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

func (t *Tile) Watched() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watched
}

func (t *Tile) Trash() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trash
}

// Duration returns the duration in seconds and whether it is known.
func (t *Tile) Duration() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration, t.hasDuration
}

func (t *Tile) Color() theme.Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.color
}

// Info is the duration label, nil until a duration is known.
func (t *Tile) Info() *asset.Text {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info
}

// Cover is the cover image, nil until one is loaded.
func (t *Tile) Cover() *asset.Image {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cover
}

// Progress is the highest watched segment, 0 when unseen.
func (t *Tile) Progress() int {
	return bits.Len64(t.Watched())
}

type uploadable interface {
	EnsureUploaded(*gfx.Context) error
	Release(*gfx.Context, bool)
}

func (t *Tile) assets() []uploadable {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]uploadable, 0, 3)
	if t.Title != nil {
		out = append(out, t.Title)
	}
	if t.info != nil {
		out = append(out, t.info)
	}
	if t.cover != nil {
		out = append(out, t.cover)
	}
	return out
}

// EnsureUploaded uploads any produced asset of the tile.
func (t *Tile) EnsureUploaded(gc *gfx.Context) error {
	for _, a := range t.assets() {
		if err := a.EnsureUploaded(gc); err != nil {
			return err
		}
	}
	return nil
}

// Release destroys the tile's textures and returns how many assets it held.
func (t *Tile) Release(gc *gfx.Context, force bool) int {
	assets := t.assets()
	for _, a := range assets {
		a.Release(gc, force)
	}
	return len(assets)
}

// FormatDuration renders seconds as H:MM with minutes rounded.
func FormatDuration(seconds float64) string {
	d := int(seconds)
	hours := d / 3600
	minutes := int(math.Round(float64(d%3600) / 60))
	if minutes == 60 {
		hours++
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", hours, minutes)
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(s string) (theme.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return theme.Color{}, fmt.Errorf("invalid tile color %q", s)
	}
	var c theme.Color
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return theme.Color{}, fmt.Errorf("invalid tile color %q: %w", s, err)
		}
		c[i] = float32(v) / 255
	}
	c[3] = 1
	return c, nil
}
