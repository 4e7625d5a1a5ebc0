package gfx

import (
	"errors"
	"sync"
	"testing"
)

func TestTextureUploadReusesHandle(t *testing.T) {
	rec := NewRecorder()
	gc := NewContext(rec)
	tex := NewTexture(true)
	if tex.Concrete() {
		t.Fatalf("expected new texture to be abstract")
	}
	if err := tex.Upload(gc, 2, 2, make([]byte, 16)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	id := tex.ID()
	if err := tex.Upload(gc, 1, 1, make([]byte, 4)); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if tex.ID() != id {
		t.Fatalf("expected handle %d to be reused, got %d", id, tex.ID())
	}
	if rec.Uploads(id) != 2 {
		t.Fatalf("expected 2 uploads, got %d", rec.Uploads(id))
	}
	if w, h := tex.Size(); w != 1 || h != 1 {
		t.Fatalf("expected size 1x1, got %dx%d", w, h)
	}
}

func TestPersistentTextureSurvivesUnforcedDestroy(t *testing.T) {
	rec := NewRecorder()
	gc := NewContext(rec)
	tex := NewTexture(true)
	_ = tex.Upload(gc, 1, 1, make([]byte, 4))
	if err := tex.Destroy(gc, false); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if !tex.Concrete() || rec.Live() != 1 {
		t.Fatalf("expected persistent texture to survive")
	}
	if err := tex.Destroy(gc, true); err != nil {
		t.Fatalf("forced destroy: %v", err)
	}
	if rec.Live() != 0 {
		t.Fatalf("expected no live textures, got %d", rec.Live())
	}
}

func TestUseAfterDestroyFails(t *testing.T) {
	gc := NewContext(NewRecorder())
	tex := NewTexture(false)
	_ = tex.Upload(gc, 1, 1, make([]byte, 4))
	if err := tex.Destroy(gc, false); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if tex.State() != Destroyed {
		t.Fatalf("expected destroyed state, got %s", tex.State())
	}
	if err := tex.Upload(gc, 1, 1, make([]byte, 4)); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
	if err := tex.Destroy(gc, true); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed on double destroy, got %v", err)
	}
}

func TestShortPixelBufferRejected(t *testing.T) {
	gc := NewContext(NewRecorder())
	tex := NewTexture(false)
	if err := tex.Upload(gc, 4, 4, make([]byte, 4)); err == nil {
		t.Fatalf("expected short buffer error")
	}
	if tex.Concrete() {
		t.Fatalf("expected no handle after failed upload")
	}
}

func TestSceneRendersByDepthAndSkipsAbstract(t *testing.T) {
	rec := NewRecorder()
	gc := NewContext(rec)
	a := NewTexture(false)
	_ = a.Upload(gc, 1, 1, make([]byte, 4))
	pending := NewTexture(false)

	var s Scene
	s.Add(Quad{X1: 1, Z: 3, Texture: a, Color: White})
	s.Add(Quad{X1: 2, Z: 1, Color: White})
	s.Add(Quad{X1: 3, Z: 2, Texture: pending, Color: White})
	s.Add(Quad{X1: 4, Z: 1, Texture: a, Color: White})

	gc.Clear(0, 0, 0, 1)
	if n := s.Render(gc); n != 3 {
		t.Fatalf("expected 3 quads drawn, got %d", n)
	}
	drawn := rec.Drawn()
	order := []float32{2, 4, 1}
	for i, want := range order {
		if drawn[i].Quad.X1 != want {
			t.Fatalf("expected quad %v at %d, got %v", want, i, drawn[i].Quad.X1)
		}
	}
	if drawn[0].Texture == 0 || drawn[0].Texture == a.ID() {
		t.Fatalf("expected untextured quad to use the flat texture, got %d", drawn[0].Texture)
	}
}

func TestContextDetectsConcurrentEntry(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{})
	dev := &blockingDevice{Recorder: NewRecorder(), entered: entered, block: block}
	gc := NewContext(dev)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		gc.Viewport(10, 10)
	}()
	<-entered

	defer func() {
		close(block)
		wg.Wait()
		r := recover()
		if r != ErrConcurrentAccess {
			t.Fatalf("expected ErrConcurrentAccess panic, got %v", r)
		}
	}()
	gc.Clear(0, 0, 0, 0)
}

type blockingDevice struct {
	*Recorder
	entered chan struct{}
	block   chan struct{}
}

func (d *blockingDevice) Viewport(w, h int) {
	close(d.entered)
	<-d.block
}
