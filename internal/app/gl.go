package app

import (
	"github.com/atomicstack/fabella/internal/gfx"
	"github.com/atomicstack/fabella/internal/gfx/opengl"
	"github.com/atomicstack/fabella/internal/input"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
	"github.com/atomicstack/fabella/internal/menu"
	"github.com/atomicstack/fabella/internal/pool"
	"github.com/atomicstack/fabella/internal/window"
	"github.com/gogpu/gg"
)

const glFrontendName = "gl"

// runGL drives the window on the main thread: input, uploads of produced
// assets, then one frame per wake-up.
func runGL(cfg Config, s *services) error {
	if logging.TraceEnabled() {
		gg.SetLogger(logging.Slog())
	}

	width, height := cfg.Width, cfg.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	win, err := window.New(width, height, "Fabella")
	if err != nil {
		return err
	}
	defer win.Close()
	// a produced buffer uploads on the next frame instead of the next timeout
	for _, p := range []*pool.Pool{s.renderPool, s.buildPool} {
		p.SetOnDone(win.Wake)
		defer p.SetOnDone(nil)
	}

	dev, err := opengl.Init()
	if err != nil {
		return err
	}
	logging.Info("OpenGL %s", dev.Version())
	gc := gfx.NewContext(dev)
	defer gc.Close()
	defer s.library.Close(gc)
	defer s.menu.Teardown(gc)

	ctrl := input.NewController(s.menu, s.session)
	var scene gfx.Scene
	for !win.Closed() {
		win.Wait()
		for _, k := range win.Keys() {
			events.UI.Key(glFrontendName, k.String())
			res := ctrl.HandleKey(k)
			switch {
			case res.Quit:
				events.App.Quit("key")
				s.menu.Forget(gc)
				if err := s.session.Stop(); err != nil {
					logging.Error(err)
				}
				return nil
			case res.Fullscreen:
				win.ToggleFullscreen()
			case res.Find:
				logging.Info("find needs the terminal front-end")
			}
		}
		s.drainBackend()

		if err := s.menu.EnsureUploaded(gc); err != nil {
			logging.Error(err)
		}
		w, h := win.Size()
		gc.Viewport(w, h)
		gc.Clear(0, 0, 0, 1)
		scene.Reset()
		s.menu.DrawFrame(&scene, menu.Frame{
			Width:   w,
			Height:  h,
			Playing: s.session.Playing(),
			OSD:     ctrl.OSD() || s.session.Paused(),
			Status:  s.status(),
		})
		scene.Render(gc)
		win.Swap()
	}
	events.App.Quit("window closed")
	return nil
}

// drainBackend applies every pending watcher event without blocking.
func (s *services) drainBackend() {
	for {
		select {
		case evt, ok := <-s.watcher.Events():
			if !ok {
				return
			}
			s.applyBackendEvent(evt)
		default:
			return
		}
	}
}

func (s *services) status() menu.Status {
	d, known := s.session.Duration()
	return menu.Status{
		Paused:        s.session.Paused(),
		Position:      s.session.Position(),
		Duration:      d,
		KnownDuration: known,
	}
}
