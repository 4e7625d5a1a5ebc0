package gfx

import "sync"

// DrawnQuad is one recorded draw call.
type DrawnQuad struct {
	Quad    Quad
	Texture uint32
}

// Recorder is an in-memory Device. It keeps the set of live textures, upload
// counts and draw calls so tests and the terminal front-end can inspect what
// would have reached the GPU.
type Recorder struct {
	mu       sync.Mutex
	next     uint32
	live     map[uint32][2]int
	uploads  map[uint32]int
	deleted  []uint32
	drawn    []DrawnQuad
	clears   int
	viewport [2]int
}

// NewRecorder returns an empty recording device.
func NewRecorder() *Recorder {
	return &Recorder{
		live:    make(map[uint32][2]int),
		uploads: make(map[uint32]int),
	}
}

func (r *Recorder) GenTexture() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.live[r.next] = [2]int{}
	return r.next
}

func (r *Recorder) TexImage(id uint32, w, h int, pix []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[id] = [2]int{w, h}
	r.uploads[id]++
}

func (r *Recorder) DeleteTextures(ids ...uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.live, id)
		r.deleted = append(r.deleted, id)
	}
}

func (r *Recorder) DrawQuad(q Quad, tex uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drawn = append(r.drawn, DrawnQuad{Quad: q, Texture: tex})
}

func (r *Recorder) Viewport(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = [2]int{w, h}
}

func (r *Recorder) Clear(_, _, _, _ float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.drawn = r.drawn[:0]
}

// Live returns the number of textures that exist on the device.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// IsLive reports whether id is a live texture.
func (r *Recorder) IsLive(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[id]
	return ok
}

// Uploads returns how many times id was filled with pixels.
func (r *Recorder) Uploads(id uint32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploads[id]
}

// Deleted returns the deleted texture ids in deletion order.
func (r *Recorder) Deleted() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.deleted...)
}

// Drawn returns the draw calls issued since the last Clear.
func (r *Recorder) Drawn() []DrawnQuad {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DrawnQuad(nil), r.drawn...)
}

// Frames returns the number of Clear calls.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}
