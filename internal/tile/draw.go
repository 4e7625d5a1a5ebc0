package tile

import (
	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/render"
)

// Depths of the tile layers, back to front.
const (
	ZShadow float32 = 10 + iota
	ZHighlight
	ZOutline
	ZCover
	ZInfo
	ZPosBar
	ZEmblem
	ZTrash
	ZTitle
)

// Draw adds the tile's quads to scene with its top-left corner at (x, y).
// Layers whose texture is not uploaded yet are left out.
func (t *Tile) Draw(scene *gfx.Scene, lib *render.Library, x, y int, selected bool) {
	m := t.metrics
	fx, fy := float32(x), float32(y)
	w, h := float32(m.TileWidth), float32(m.ThumbHeight)

	if tex := lib.Shadow(); tex != nil {
		b := float32(m.ShadowBlur)
		off := float32(m.ShadowOffset)
		scene.Add(gfx.Quad{
			X1: fx - b + off, Y1: fy - b + off, X2: fx + w + b + off, Y2: fy + h + b + off,
			Z: ZShadow, Texture: tex, Color: m.ShadowColor,
		})
	}

	if selected {
		if tex := lib.Highlight(); tex != nil {
			b := float32(m.HighlightBlur)
			scene.Add(gfx.Quad{
				X1: fx - b, Y1: fy - b, X2: fx + w + b, Y2: fy + h + b,
				Z: ZHighlight, Texture: tex, Color: m.HighlightColor,
			})
		}
	}

	o := float32(m.OutlineSize)
	scene.Add(gfx.Quad{X1: fx - o, Y1: fy - o, X2: fx + w + o, Y2: fy + h + o, Z: ZOutline, Color: m.OutlineColor})

	textColor := m.TextColor
	if selected {
		textColor = m.TextHLColor
	}

	t.mu.Lock()
	cover, info := t.cover, t.info
	color, position, trash := t.color, t.position, t.trash
	t.mu.Unlock()

	var coverTex *gfx.Texture
	if cover != nil {
		coverTex = cover.Texture()
	}
	if tex := coverTex; tex != nil {
		scene.Add(gfx.Quad{X1: fx, Y1: fy, X2: fx + w, Y2: fy + h, Z: ZCover, Texture: tex, Color: gfx.White})
	} else {
		scene.Add(gfx.Quad{X1: fx, Y1: fy, X2: fx + w, Y2: fy + h, Z: ZCover, Color: color})
	}

	if info != nil {
		if tex := info.Texture(); tex != nil {
			iw, ih := tex.Size()
			x2 := fx + float32(int(float64(m.TileWidth)*0.98))
			y2 := fy + h
			scene.Add(gfx.Quad{X1: x2 - float32(iw), Y1: y2 - float32(ih), X2: x2, Y2: y2, Z: ZInfo, Texture: tex, Color: textColor})
		}
	}

	if position > 0 && !t.IsDir {
		y1 := fy + h + 1
		scene.Add(gfx.Quad{
			X1: fx, Y1: y1, X2: fx + w*float32(position), Y2: y1 + float32(m.PosBarHeight),
			Z: ZPosBar, Color: m.PosBarColor,
		})
	}

	var emblem *gfx.Texture
	switch {
	case t.Watching():
		emblem = lib.Watching(t.Progress())
	case t.Unseen():
		emblem = lib.Unseen()
	}
	if emblem != nil {
		addCentered(scene, emblem, fx+w, fy, ZEmblem)
	}
	if trash && !t.IsDir {
		if tex := lib.Trash(); tex != nil {
			addCentered(scene, tex, fx, fy, ZTrash)
		}
	}

	if t.Title != nil {
		if tex := t.Title.Texture(); tex != nil {
			tw, th := tex.Size()
			y1 := fy + h + float32(m.TextVSpace)
			scene.Add(gfx.Quad{X1: fx, Y1: y1, X2: fx + float32(tw), Y2: y1 + float32(th), Z: ZTitle, Texture: tex, Color: textColor})
		}
	}
}

func addCentered(scene *gfx.Scene, tex *gfx.Texture, cx, cy float32, z float32) {
	w, h := tex.Size()
	hw, hh := float32(w/2), float32(h/2)
	scene.Add(gfx.Quad{X1: cx - hw, Y1: cy - hh, X2: cx - hw + float32(w), Y2: cy - hh + float32(h), Z: z, Texture: tex, Color: gfx.White})
}
