// Package asset holds renderable content whose pixels are produced on a
// worker pool and uploaded to the GPU by the render loop.
//
// Every asset moves through Empty, Pending, Produced and Uploaded. Setting
// new content bumps a generation counter; a production job only publishes
// its buffer if its generation is still current, so when content is set
// twice in quick succession only the last result ever becomes visible.
package asset

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
)

// State is the production state of an asset.
type State int

const (
	Empty State = iota
	Pending
	Produced
	Uploaded
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Pending:
		return "pending"
	case Produced:
		return "produced"
	case Uploaded:
		return "uploaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Scheduler queues production jobs. *pool.Pool satisfies it.
type Scheduler interface {
	Schedule(job func())
}

// Producer renders the CPU pixels of an asset. It runs on a worker.
type Producer func() (*image.RGBA, error)

type core struct {
	name       string
	sched      Scheduler
	persistent bool

	mu       sync.Mutex
	gen      uint64
	state    State
	produced *image.RGBA
	tex      *gfx.Texture
}

func newCore(name string, sched Scheduler, persistent bool) core {
	return core{name: name, sched: sched, persistent: persistent}
}

// submit marks the asset pending and schedules produce. Results from older
// submissions are dropped, including one produced but not yet uploaded.
func (c *core) submit(produce Producer) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = Pending
	c.produced = nil
	c.mu.Unlock()

	c.sched.Schedule(func() {
		if !c.current(gen) {
			events.Asset.Stale(c.name, gen, c.generation())
			return
		}
		img, err := produce()
		if err != nil {
			logging.Error(fmt.Errorf("asset %s: %w", c.name, err))
			events.Asset.Failed(c.name, err)
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			events.Asset.Stale(c.name, gen, c.gen)
			return
		}
		c.produced = img
		c.state = Produced
	})
}

func (c *core) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

func (c *core) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Name identifies the asset in logs.
func (c *core) Name() string { return c.name }

// State returns the current production state.
func (c *core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ready reports whether the latest content has reached the GPU.
func (c *core) Ready() bool {
	return c.State() == Uploaded
}

// Texture returns the most recently uploaded texture, or nil when nothing
// has been uploaded yet. It has no side effects.
func (c *core) Texture() *gfx.Texture {
	c.mu.Lock()
	tex := c.tex
	c.mu.Unlock()
	if !tex.Concrete() {
		return nil
	}
	return tex
}

// EnsureUploaded moves a produced buffer to the GPU. It must be called from
// the render loop.
func (c *core) EnsureUploaded(gc *gfx.Context) error {
	c.mu.Lock()
	img := c.produced
	if img == nil {
		c.mu.Unlock()
		return nil
	}
	gen := c.gen
	c.produced = nil
	if c.tex == nil || c.tex.State() == gfx.Destroyed {
		c.tex = gfx.NewTexture(c.persistent)
	}
	tex := c.tex
	c.mu.Unlock()

	w, h := img.Rect.Dx(), img.Rect.Dy()
	if err := tex.Upload(gc, w, h, packed(img)); err != nil {
		events.Asset.Failed(c.name, err)
		return fmt.Errorf("upload %s: %w", c.name, err)
	}
	events.Asset.Upload(c.name, w, h)

	c.mu.Lock()
	if c.gen == gen && c.state == Produced {
		c.state = Uploaded
	}
	c.mu.Unlock()
	return nil
}

// Release destroys the GPU texture unless it is persistent and force is
// unset. A released asset is empty and any in-flight production is dropped.
func (c *core) Release(gc *gfx.Context, force bool) {
	c.mu.Lock()
	if c.persistent && !force {
		c.mu.Unlock()
		return
	}
	tex := c.tex
	c.tex = nil
	c.produced = nil
	c.gen++
	c.state = Empty
	c.mu.Unlock()
	if tex != nil {
		if err := tex.Destroy(gc, true); err != nil && err != gfx.ErrDestroyed {
			logging.Error(fmt.Errorf("release %s: %w", c.name, err))
		}
	}
}

// packed returns the pixels of img with a stride of exactly 4*width.
func packed(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 && img.Rect.Min == (image.Point{}) {
		return img.Pix[:w*h*4]
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Rect, img, img.Rect.Min, draw.Src)
	return dst.Pix
}
