// Package gfx is the boundary between the browser and the GPU.
//
// Every GPU call goes through a *Context, and only the render loop holds
// one. Worker goroutines produce CPU pixel buffers and never see a Context,
// so they cannot reach the device. The Context additionally flags overlapping
// entry from two goroutines as a programming error.
package gfx

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrDestroyed is returned when a texture is used after Destroy.
	ErrDestroyed = errors.New("texture destroyed")
	// ErrConcurrentAccess is the panic value raised when two goroutines
	// enter the same Context at once.
	ErrConcurrentAccess = errors.New("gpu context entered concurrently")
)

// Device is the raw GPU API. Implementations are not safe for concurrent
// use; Context serialises access.
type Device interface {
	GenTexture() uint32
	TexImage(id uint32, w, h int, pix []byte)
	DeleteTextures(ids ...uint32)
	// DrawQuad draws q using texture id tex, modulated by q.Color.
	DrawQuad(q Quad, tex uint32)
	Viewport(w, h int)
	Clear(r, g, b, a float32)
}

// Context owns a Device on behalf of the render goroutine.
type Context struct {
	dev  Device
	busy atomic.Bool
	flat *Texture
}

// NewContext wraps dev.
func NewContext(dev Device) *Context {
	return &Context{dev: dev}
}

func (c *Context) enter() {
	if !c.busy.CompareAndSwap(false, true) {
		panic(ErrConcurrentAccess)
	}
}

func (c *Context) leave() {
	c.busy.Store(false)
}

// Viewport sets the drawable size in pixels.
func (c *Context) Viewport(w, h int) {
	c.enter()
	defer c.leave()
	c.dev.Viewport(w, h)
}

// Clear fills the frame with a solid color.
func (c *Context) Clear(r, g, b, a float32) {
	c.enter()
	defer c.leave()
	c.dev.Clear(r, g, b, a)
}

// Close releases GPU objects owned by the context itself.
func (c *Context) Close() {
	if c.flat != nil {
		_ = c.flat.Destroy(c, true)
		c.flat = nil
	}
}

func (c *Context) genTexture() uint32 {
	c.enter()
	defer c.leave()
	return c.dev.GenTexture()
}

func (c *Context) texImage(id uint32, w, h int, pix []byte) {
	c.enter()
	defer c.leave()
	c.dev.TexImage(id, w, h, pix)
}

func (c *Context) deleteTexture(id uint32) {
	c.enter()
	defer c.leave()
	c.dev.DeleteTextures(id)
}

func (c *Context) drawQuad(q Quad, tex uint32) {
	c.enter()
	defer c.leave()
	c.dev.DrawQuad(q, tex)
}

// flatTexture returns the 1x1 white texture used for untextured quads.
func (c *Context) flatTexture() *Texture {
	if c.flat == nil {
		c.flat = NewTexture(true)
		_ = c.flat.Upload(c, 1, 1, []byte{0xff, 0xff, 0xff, 0xff})
	}
	return c.flat
}
