// Package opengl implements gfx.Device on OpenGL 2.1.
//
// All methods must be called on the goroutine that owns the current GL
// context, after Init.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/atomicstack/fabella/internal/gfx"
)

// Device draws immediate-mode textured quads with alpha blending under an
// orthographic projection whose origin is the top-left corner.
type Device struct{}

// Init loads the GL function pointers for the current context.
func Init() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.TEXTURE_2D)
	return &Device{}, nil
}

// Version reports the driver's GL version string.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Device) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return id
}

func (d *Device) TexImage(id uint32, w, h int, pix []byte) {
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
}

func (d *Device) DeleteTextures(ids ...uint32) {
	if len(ids) == 0 {
		return
	}
	gl.DeleteTextures(int32(len(ids)), &ids[0])
}

func (d *Device) DrawQuad(q gfx.Quad, tex uint32) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.Color4f(q.Color[0], q.Color[1], q.Color[2], q.Color[3])
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(q.X1, q.Y1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(q.X2, q.Y1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(q.X2, q.Y2)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(q.X1, q.Y2)
	gl.End()
}

func (d *Device) Viewport(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, float64(w), float64(h), 0, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
}

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

var _ gfx.Device = (*Device)(nil)
