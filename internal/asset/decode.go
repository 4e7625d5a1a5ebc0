package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrEmptySource is returned when asked to decode zero bytes.
var ErrEmptySource = errors.New("empty image source")

// DecodeFit decodes data and resamples it to exactly w×h.
func DecodeFit(data []byte, w, h int) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptySource
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("decode %s: invalid target size %dx%d", format, w, h)
	}
	return Fit(src, w, h), nil
}

// Fit scales src to w×h with Catmull-Rom resampling.
func Fit(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Src, nil)
	return dst
}
