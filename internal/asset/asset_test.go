package asset

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/atomicstack/fabella/internal/gfx"
)

// manualScheduler queues jobs until the test runs them.
type manualScheduler struct {
	mu   sync.Mutex
	jobs []func()
}

func (s *manualScheduler) Schedule(job func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

func (s *manualScheduler) runAll() {
	s.mu.Lock()
	jobs := s.jobs
	s.jobs = nil
	s.mu.Unlock()
	for _, job := range jobs {
		job()
	}
}

// widthRasterizer renders a solid block whose width is the string length.
type widthRasterizer struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (r *widthRasterizer) Rasterize(f *Font, s string, maxWidth, lines int) (*image.RGBA, error) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
	if r.fail {
		return nil, errors.New("boom")
	}
	w := len(s)
	if w == 0 {
		w = 1
	}
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	return image.NewRGBA(image.Rect(0, 0, w, 2)), nil
}

func TestLastSetWins(t *testing.T) {
	sched := &manualScheduler{}
	raster := &widthRasterizer{}
	font := NewFont(18, raster)
	txt := font.Text(sched, TextOptions{Name: "title"})

	txt.SetText("A")
	txt.SetText("BBB")
	if txt.State() != Pending {
		t.Fatalf("expected pending, got %s", txt.State())
	}
	sched.runAll()
	if txt.State() != Produced {
		t.Fatalf("expected produced, got %s", txt.State())
	}
	if len(raster.calls) != 1 || raster.calls[0] != "BBB" {
		t.Fatalf("expected only the latest string to be rasterized, got %v", raster.calls)
	}

	rec := gfx.NewRecorder()
	gc := gfx.NewContext(rec)
	if err := txt.EnsureUploaded(gc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !txt.Ready() {
		t.Fatalf("expected ready after upload")
	}
	if txt.Width() != 3 {
		t.Fatalf("expected width 3, got %d", txt.Width())
	}
	if rec.Uploads(txt.Texture().ID()) != 1 {
		t.Fatalf("expected one upload")
	}
}

func TestProducedBufferDroppedWhenContentChanges(t *testing.T) {
	sched := &manualScheduler{}
	raster := &widthRasterizer{}
	font := NewFont(18, raster)
	txt := font.Text(sched, TextOptions{Name: "clock"})
	rec := gfx.NewRecorder()
	gc := gfx.NewContext(rec)

	txt.SetText("A")
	sched.runAll()
	if txt.State() != Produced {
		t.Fatalf("expected produced, got %s", txt.State())
	}
	txt.SetText("BBBBB")
	if err := txt.EnsureUploaded(gc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if txt.State() != Pending {
		t.Fatalf("expected pending, got %s", txt.State())
	}
	if tex := txt.Texture(); tex != nil {
		t.Fatalf("expected no texture before the new content is produced, got %s", tex)
	}

	sched.runAll()
	if err := txt.EnsureUploaded(gc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !txt.Ready() || txt.Width() != 5 {
		t.Fatalf("expected the new content uploaded with width 5, got %s width %d", txt.State(), txt.Width())
	}
	if rec.Uploads(txt.Texture().ID()) != 1 {
		t.Fatalf("expected the superseded buffer never to be uploaded")
	}
}

func TestStaleResultDiscardedAfterProductionStarts(t *testing.T) {
	sched := &manualScheduler{}
	img := NewImage(sched, 1, 1, "cover")
	first := image.NewRGBA(image.Rect(0, 0, 1, 1))
	second := image.NewRGBA(image.Rect(0, 0, 1, 1))
	second.Pix[0] = 0xaa

	img.Produce(func() (*image.RGBA, error) {
		// content changes while this job is running
		img.SetPixels(second)
		return first, nil
	})
	sched.runAll()
	if img.State() != Pending {
		t.Fatalf("expected stale result to be dropped, got %s", img.State())
	}
	sched.runAll()

	rec := gfx.NewRecorder()
	gc := gfx.NewContext(rec)
	if err := img.EnsureUploaded(gc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !img.Ready() {
		t.Fatalf("expected second content to be uploaded")
	}
}

func TestTextureIsNilUntilUploaded(t *testing.T) {
	sched := &manualScheduler{}
	txt := NewFont(18, &widthRasterizer{}).Text(sched, TextOptions{})
	txt.SetText("x")
	sched.runAll()
	if txt.Texture() != nil {
		t.Fatalf("expected no texture before EnsureUploaded")
	}
}

func TestUploadReusesHandleAcrossContent(t *testing.T) {
	sched := &manualScheduler{}
	rec := gfx.NewRecorder()
	gc := gfx.NewContext(rec)
	txt := NewFont(18, &widthRasterizer{}).Text(sched, TextOptions{Persistent: true})

	txt.SetText("12:00")
	sched.runAll()
	_ = txt.EnsureUploaded(gc)
	id := txt.Texture().ID()

	txt.SetText("12:01")
	if txt.Texture() == nil {
		t.Fatalf("expected previous texture to stay visible while pending")
	}
	sched.runAll()
	_ = txt.EnsureUploaded(gc)
	if txt.Texture().ID() != id {
		t.Fatalf("expected handle reuse, got %d then %d", id, txt.Texture().ID())
	}
	if rec.Uploads(id) != 2 {
		t.Fatalf("expected 2 uploads, got %d", rec.Uploads(id))
	}
}

func TestSetTextSameStringIsNoop(t *testing.T) {
	sched := &manualScheduler{}
	raster := &widthRasterizer{}
	txt := NewFont(18, raster).Text(sched, TextOptions{})
	txt.SetText("same")
	sched.runAll()
	txt.SetText("same")
	sched.runAll()
	if len(raster.calls) != 1 {
		t.Fatalf("expected one rasterization, got %d", len(raster.calls))
	}
}

func TestFailedProductionNeverProduces(t *testing.T) {
	sched := &manualScheduler{}
	txt := NewFont(18, &widthRasterizer{fail: true}).Text(sched, TextOptions{})
	txt.SetText("x")
	sched.runAll()
	if txt.State() != Pending {
		t.Fatalf("expected asset to stay pending, got %s", txt.State())
	}
}

func TestReleaseDestroysNonPersistentTexture(t *testing.T) {
	sched := &manualScheduler{}
	rec := gfx.NewRecorder()
	gc := gfx.NewContext(rec)
	img := NewImage(sched, 1, 1, "cover")
	img.SetPixels(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	sched.runAll()
	_ = img.EnsureUploaded(gc)
	if rec.Live() != 1 {
		t.Fatalf("expected one live texture, got %d", rec.Live())
	}
	img.Release(gc, false)
	if rec.Live() != 0 {
		t.Fatalf("expected texture to be destroyed, got %d live", rec.Live())
	}
	if img.State() != Empty || img.Texture() != nil {
		t.Fatalf("expected empty asset after release")
	}
}

func TestPersistentSurvivesUnforcedRelease(t *testing.T) {
	sched := &manualScheduler{}
	rec := gfx.NewRecorder()
	gc := gfx.NewContext(rec)
	img := NewPersistentImage(sched, 1, 1, "shadow")
	img.SetPixels(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	sched.runAll()
	_ = img.EnsureUploaded(gc)
	img.Release(gc, false)
	if rec.Live() != 1 {
		t.Fatalf("expected persistent texture to survive")
	}
	img.Release(gc, true)
	if rec.Live() != 0 {
		t.Fatalf("expected forced release to destroy")
	}
}

func TestDecodeFitResizes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	src.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeFit(buf.Bytes(), 4, 2)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Rect.Dx() != 4 || out.Rect.Dy() != 2 {
		t.Fatalf("expected 4x2, got %v", out.Rect)
	}
}

func TestDecodeFitRejectsGarbage(t *testing.T) {
	if _, err := DecodeFit(nil, 1, 1); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	if _, err := DecodeFit([]byte("not an image"), 1, 1); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDefaultStrokeWidth(t *testing.T) {
	cases := map[float64]int{18: 3, 36: 5, 9: 2, 4: 1}
	for size, want := range cases {
		if got := DefaultStrokeWidth(size); got != want {
			t.Fatalf("expected stroke %d for size %v, got %d", want, size, got)
		}
	}
}
