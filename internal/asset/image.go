package asset

import "image"

// Image is a fixed-size picture: a decoded cover or a procedural drawing.
type Image struct {
	core
	w, h int
}

// NewImage creates an empty w×h image asset that renders on sched.
func NewImage(sched Scheduler, w, h int, name string) *Image {
	return &Image{core: newCore(name, sched, false), w: w, h: h}
}

// NewPersistentImage is NewImage whose texture survives unforced releases.
func NewPersistentImage(sched Scheduler, w, h int, name string) *Image {
	return &Image{core: newCore(name, sched, true), w: w, h: h}
}

// Size returns the target dimensions.
func (i *Image) Size() (int, int) { return i.w, i.h }

// SetSource decodes encoded image bytes (jpeg, png or webp) and scales them
// to the image size.
func (i *Image) SetSource(data []byte) {
	w, h := i.w, i.h
	i.submit(func() (*image.RGBA, error) {
		return DecodeFit(data, w, h)
	})
}

// SetPixels publishes an already rendered buffer.
func (i *Image) SetPixels(img *image.RGBA) {
	i.submit(func() (*image.RGBA, error) {
		return img, nil
	})
}

// Produce schedules fn to draw the image.
func (i *Image) Produce(fn Producer) {
	i.submit(fn)
}
