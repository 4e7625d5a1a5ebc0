package gfx

import (
	"fmt"
	"sync"
)

// State is the lifecycle of a texture handle.
type State int

const (
	Live State = iota
	Destroyed
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Texture is a CPU-side slot for a GPU texture. The GPU handle is created on
// the first upload and reused for every later upload.
type Texture struct {
	mu         sync.Mutex
	persistent bool
	id         uint32
	w, h       int
	state      State
}

// NewTexture returns an empty texture. No GPU call is made.
func NewTexture(persistent bool) *Texture {
	return &Texture{persistent: persistent}
}

// Upload replaces the texture contents with w*h RGBA pixels.
func (t *Texture) Upload(gc *Context, w, h int, pix []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Destroyed {
		return ErrDestroyed
	}
	if len(pix) < w*h*4 {
		return fmt.Errorf("upload %dx%d: short pixel buffer (%d bytes)", w, h, len(pix))
	}
	if t.id == 0 {
		t.id = gc.genTexture()
	}
	gc.texImage(t.id, w, h, pix)
	t.w, t.h = w, h
	return nil
}

// Destroy deletes the GPU handle. Persistent textures survive unless force
// is set.
func (t *Texture) Destroy(gc *Context, force bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Destroyed {
		return ErrDestroyed
	}
	if t.persistent && !force {
		return nil
	}
	if t.id != 0 {
		gc.deleteTexture(t.id)
	}
	t.id = 0
	t.state = Destroyed
	return nil
}

// Concrete reports whether the texture holds uploaded GPU data.
func (t *Texture) Concrete() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == Live && t.id != 0
}

func (t *Texture) ID() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

func (t *Texture) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w, t.h
}

func (t *Texture) Persistent() bool { return t.persistent }

func (t *Texture) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Texture) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("texture(id=%d %dx%d %s persistent=%t)", t.id, t.w, t.h, t.state, t.persistent)
}
