// Package render owns the textures shared by every tile: the drop shadow,
// the selection highlight and the state emblems. Untextured quads use the
// flat texture owned by gfx.Context.
//
// A Library is created once at startup and closed once at shutdown. All of
// its images are drawn on a worker pool with gg and uploaded by the render
// loop like any other asset.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/gg"

	"github.com/atomicstack/fabella/internal/asset"
	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/theme"
)

const (
	emblemSize = 48
	softSize   = 128
)

// Library holds the shared textures.
type Library struct {
	shadow    *asset.Image
	highlight *asset.Image
	unseen    *asset.Image
	trash     *asset.Image
	watching  []*asset.Image
}

// NewLibrary schedules drawing of every shared texture on sched.
func NewLibrary(sched asset.Scheduler, m theme.Metrics, segments int) *Library {
	if segments < 1 {
		segments = 1
	}
	l := &Library{
		shadow:    asset.NewPersistentImage(sched, softSize, softSize, "shadow"),
		highlight: asset.NewPersistentImage(sched, softSize, softSize, "highlight"),
		unseen:    asset.NewPersistentImage(sched, emblemSize, emblemSize, "emblem-unseen"),
		trash:     asset.NewPersistentImage(sched, emblemSize, emblemSize, "emblem-trash"),
		watching:  make([]*asset.Image, segments),
	}
	shadowBlur := softBlur(m.ShadowBlur, m.TileWidth, m.ShadowExpand)
	highlightBlur := softBlur(m.HighlightBlur, m.TileWidth, m.HighlightExpand)
	l.shadow.Produce(func() (*image.RGBA, error) { return SoftRect(softSize, shadowBlur) })
	l.highlight.Produce(func() (*image.RGBA, error) { return SoftRect(softSize, highlightBlur) })
	l.unseen.Produce(func() (*image.RGBA, error) { return UnseenEmblem(emblemSize) })
	l.trash.Produce(func() (*image.RGBA, error) { return TrashEmblem(emblemSize) })
	for i := range l.watching {
		n := i + 1
		l.watching[i] = asset.NewPersistentImage(sched, emblemSize, emblemSize, fmt.Sprintf("emblem-watching-%d", n))
		l.watching[i].Produce(func() (*image.RGBA, error) { return WatchingEmblem(emblemSize, n, segments) })
	}
	return l
}

// softBlur maps a blur radius in tile pixels to the soft texture's scale.
func softBlur(blur, tileWidth, expand int) int {
	span := tileWidth + 2*(blur+expand)
	if span <= 0 {
		return 1
	}
	b := int(math.Round(float64(blur) * softSize / float64(span)))
	if b < 1 {
		b = 1
	}
	if b > softSize/2-1 {
		b = softSize/2 - 1
	}
	return b
}

func (l *Library) Shadow() *gfx.Texture    { return l.shadow.Texture() }
func (l *Library) Highlight() *gfx.Texture { return l.highlight.Texture() }
func (l *Library) Unseen() *gfx.Texture    { return l.unseen.Texture() }
func (l *Library) Trash() *gfx.Texture     { return l.trash.Texture() }

// Watching returns the emblem for n watched segments, clamped to range.
func (l *Library) Watching(n int) *gfx.Texture {
	if n < 1 {
		n = 1
	}
	if n > len(l.watching) {
		n = len(l.watching)
	}
	return l.watching[n-1].Texture()
}

// Segments is the number of watching emblems.
func (l *Library) Segments() int { return len(l.watching) }

func (l *Library) images() []*asset.Image {
	out := []*asset.Image{l.shadow, l.highlight, l.unseen, l.trash}
	return append(out, l.watching...)
}

// Ready reports whether every shared texture is on the GPU.
func (l *Library) Ready() bool {
	for _, img := range l.images() {
		if !img.Ready() {
			return false
		}
	}
	return true
}

// EnsureUploaded uploads any texture whose pixels are ready.
func (l *Library) EnsureUploaded(gc *gfx.Context) error {
	for _, img := range l.images() {
		if err := img.EnsureUploaded(gc); err != nil {
			return err
		}
	}
	return nil
}

// Close destroys every shared texture.
func (l *Library) Close(gc *gfx.Context) {
	for _, img := range l.images() {
		img.Release(gc, true)
	}
}

// SoftRect draws a white rounded square whose alpha ramps up over blur
// pixels from the edge.
func SoftRect(size, blur int) (*image.RGBA, error) {
	dc := gg.NewContext(size, size)
	defer dc.Close()
	if blur < 1 {
		blur = 1
	}
	for i := 0; i < blur; i++ {
		inset := float64(i)
		// layer i lifts coverage to (i+1)/blur
		dc.SetRGBA(1, 1, 1, 1/float64(blur-i))
		dc.DrawRoundedRectangle(inset, inset, float64(size)-2*inset, float64(size)-2*inset, float64(blur))
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("soft rect: %w", err)
		}
	}
	return toRGBA(dc.Image()), nil
}

// UnseenEmblem draws a filled dot.
func UnseenEmblem(size int) (*image.RGBA, error) {
	dc := gg.NewContext(size, size)
	defer dc.Close()
	c := float64(size) / 2
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawCircle(c, c, c-1)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("unseen emblem: %w", err)
	}
	dc.SetRGBA(0.4, 0.7, 1, 1)
	dc.DrawCircle(c, c, c*0.6)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("unseen emblem: %w", err)
	}
	return toRGBA(dc.Image()), nil
}

// WatchingEmblem draws a pie filled to n of segments, starting at twelve
// o'clock and running clockwise.
func WatchingEmblem(size, n, segments int) (*image.RGBA, error) {
	dc := gg.NewContext(size, size)
	defer dc.Close()
	c := float64(size) / 2
	r := c - 2
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawCircle(c, c, c-1)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("watching emblem: %w", err)
	}
	dc.SetRGBA(1, 1, 1, 0.25)
	dc.DrawCircle(c, c, r)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("watching emblem: %w", err)
	}
	frac := float64(n) / float64(segments)
	if frac > 1 {
		frac = 1
	}
	start := -math.Pi / 2
	end := start + 2*math.Pi*frac
	steps := int(math.Ceil(64 * frac))
	if steps < 1 {
		steps = 1
	}
	dc.SetRGBA(1, 1, 1, 1)
	dc.MoveTo(c, c)
	for i := 0; i <= steps; i++ {
		a := start + (end-start)*float64(i)/float64(steps)
		dc.LineTo(c+r*math.Cos(a), c+r*math.Sin(a))
	}
	dc.ClosePath()
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("watching emblem: %w", err)
	}
	return toRGBA(dc.Image()), nil
}

// TrashEmblem draws a red badge with a cross.
func TrashEmblem(size int) (*image.RGBA, error) {
	dc := gg.NewContext(size, size)
	defer dc.Close()
	s := float64(size)
	dc.SetRGBA(0.8, 0.1, 0.1, 0.9)
	dc.DrawRoundedRectangle(1, 1, s-2, s-2, s/6)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("trash emblem: %w", err)
	}
	pad := s / 4
	dc.SetRGBA(1, 1, 1, 1)
	dc.SetLineWidth(s / 10)
	dc.MoveTo(pad, pad)
	dc.LineTo(s-pad, s-pad)
	dc.MoveTo(s-pad, pad)
	dc.LineTo(pad, s-pad)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("trash emblem: %w", err)
	}
	return toRGBA(dc.Image()), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
