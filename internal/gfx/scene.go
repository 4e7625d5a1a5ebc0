package gfx

import "sort"

// Quad is an axis-aligned rectangle in window pixels, origin top-left.
// Higher Z draws later. A nil Texture draws a flat colored rectangle.
type Quad struct {
	X1, Y1, X2, Y2 float32
	Z              float32
	Texture        *Texture
	Color          [4]float32
}

// White is the identity modulation color.
var White = [4]float32{1, 1, 1, 1}

// Scene collects the quads of one frame.
type Scene struct {
	quads []Quad
}

func (s *Scene) Add(q Quad) {
	s.quads = append(s.quads, q)
}

// Reset empties the scene for the next frame, keeping its storage.
func (s *Scene) Reset() {
	s.quads = s.quads[:0]
}

func (s *Scene) Len() int { return len(s.quads) }

// Quads returns the collected quads in insertion order.
func (s *Scene) Quads() []Quad {
	return s.quads
}

// Render draws the scene in ascending Z order. Quads with equal Z keep their
// insertion order. Quads whose texture is not concrete are skipped.
func (s *Scene) Render(gc *Context) int {
	sort.SliceStable(s.quads, func(i, j int) bool { return s.quads[i].Z < s.quads[j].Z })
	drawn := 0
	for _, q := range s.quads {
		tex := q.Texture
		if tex == nil {
			tex = gc.flatTexture()
		}
		if !tex.Concrete() {
			continue
		}
		gc.drawQuad(q, tex.ID())
		drawn++
	}
	return drawn
}
