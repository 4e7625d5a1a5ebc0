package asset

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/gogpu/gg/text"
)

const ellipsis = "…"

// Rasterizer turns a string into white text with a black outline.
type Rasterizer interface {
	Rasterize(f *Font, s string, maxWidth, lines int) (*image.RGBA, error)
}

// Font is a typeface at a fixed pixel size together with the rasterizer
// that draws it.
type Font struct {
	Size        float64
	StrokeWidth int
	Raster      Rasterizer

	face text.Face
}

// LoadFont opens a TrueType or OpenType file at the given size.
func LoadFont(path string, size float64) (*Font, error) {
	source, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	return &Font{
		Size:        size,
		StrokeWidth: DefaultStrokeWidth(size),
		Raster:      GGRasterizer{},
		face:        source.Face(size),
	}, nil
}

// NewFont returns a font backed by a custom rasterizer.
func NewFont(size float64, r Rasterizer) *Font {
	return &Font{Size: size, StrokeWidth: DefaultStrokeWidth(size), Raster: r}
}

// DefaultStrokeWidth is the outline thickness used for a given text size.
func DefaultStrokeWidth(size float64) int {
	return 1 + int(math.Round(size/9))
}

// Face exposes the underlying gg face, nil for fonts without one.
func (f *Font) Face() text.Face { return f.face }

// GGRasterizer draws text with gg's text package.
type GGRasterizer struct{}

// Rasterize wraps s at word boundaries to at most lines lines of maxWidth
// pixels (0 means unbounded), ellipsizing the last line on overflow, and
// draws it with a black stroke under white fill.
func (GGRasterizer) Rasterize(f *Font, s string, maxWidth, lines int) (*image.RGBA, error) {
	if f == nil || f.face == nil {
		return nil, fmt.Errorf("rasterize %q: font has no face", s)
	}
	face := f.face
	stroke := f.StrokeWidth
	m := face.Metrics()
	lineHeight := int(math.Ceil(m.LineHeight()))
	ascent := m.Ascent

	avail := 0.0
	if maxWidth > 0 {
		avail = float64(maxWidth - 2*stroke)
		if avail < 1 {
			avail = 1
		}
	}
	rows := layoutLines(s, face, avail, lines)

	width := 0.0
	for _, row := range rows {
		if w := face.Advance(row); w > width {
			width = w
		}
	}
	w := int(math.Ceil(width)) + 2*stroke
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	if w < 1 {
		w = 1
	}
	h := len(rows)*lineHeight + 2*stroke
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for i, row := range rows {
		x := float64(stroke)
		y := float64(stroke+i*lineHeight) + ascent
		for dy := -stroke; dy <= stroke; dy++ {
			for dx := -stroke; dx <= stroke; dx++ {
				if dx == 0 && dy == 0 || dx*dx+dy*dy > stroke*stroke {
					continue
				}
				text.Draw(img, row, face, x+float64(dx), y+float64(dy), color.Black)
			}
		}
		text.Draw(img, row, face, x, y, color.White)
	}
	return img, nil
}

// layoutLines splits s into display rows. Overflowing content is folded
// into the last row with an ellipsis.
func layoutLines(s string, face text.Face, avail float64, lines int) []string {
	s = strings.TrimSpace(s)
	if avail <= 0 {
		return []string{s}
	}
	wrapped := text.WrapText(s, face, avail, text.WrapWord)
	rows := make([]string, 0, len(wrapped))
	for _, r := range wrapped {
		rows = append(rows, strings.TrimSpace(r.Text))
	}
	if len(rows) == 0 {
		rows = []string{""}
	}
	if lines > 0 && len(rows) > lines {
		rows = rows[:lines]
		rows[lines-1] = ellipsize(rows[lines-1]+" "+ellipsis, face, avail, true)
	}
	for i, row := range rows {
		if face.Advance(row) > avail {
			rows[i] = ellipsize(row, face, avail, false)
		}
	}
	return rows
}

func ellipsize(row string, face text.Face, avail float64, force bool) string {
	base := strings.TrimSuffix(row, " "+ellipsis)
	if !force && face.Advance(base) <= avail {
		return base
	}
	runes := []rune(base)
	for n := len(runes); n >= 0; n-- {
		candidate := strings.TrimRight(string(runes[:n]), " ") + ellipsis
		if face.Advance(candidate) <= avail {
			return candidate
		}
	}
	return ellipsis
}
