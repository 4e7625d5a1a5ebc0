package app

import (
	"fmt"
	"os"

	"github.com/atomicstack/fabella/internal/asset"
	"github.com/atomicstack/fabella/internal/backend"
	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
	"github.com/atomicstack/fabella/internal/menu"
	"github.com/atomicstack/fabella/internal/player"
	"github.com/atomicstack/fabella/internal/pool"
	"github.com/atomicstack/fabella/internal/render"
	"github.com/atomicstack/fabella/internal/store"
)

// services are the long-lived parts shared by both front-ends.
type services struct {
	renderPool *pool.Pool
	buildPool  *pool.Pool
	library    *render.Library
	menu       *menu.Menu
	session    *player.Session
	watcher    *backend.Watcher
}

func start(cfg Config) (*services, error) {
	t := cfg.Tunables
	s := &services{
		renderPool: pool.New("render", t.RenderWorkers),
		buildPool:  pool.New("build", t.BuildWorkers),
	}

	opts := menu.Options{
		Root:       cfg.Root,
		Theme:      t.Theme,
		RenderPool: s.renderPool,
		BuildPool:  s.buildPool,
		Queue:      store.NewQueue(),
		Throttle:   t.Throttle(),
		Segments:   t.Segments,
		Enabled:    true,
	}
	if cfg.Frontend == FrontendGL {
		tileFont, err := asset.LoadFont(cfg.FontPath, t.Theme.TextSize)
		if err != nil {
			s.close()
			return nil, err
		}
		menuFont, err := asset.LoadFont(cfg.FontPath, t.Theme.HeaderTextSize)
		if err != nil {
			s.close()
			return nil, err
		}
		s.library = render.NewLibrary(s.renderPool, t.Theme, t.Segments)
		opts.TileFont, opts.MenuFont, opts.Library = tileFont, menuFont, s.library
	}
	s.menu = menu.New(opts)

	engine, err := player.NewMPV(cfg.MPV, os.TempDir())
	if err != nil {
		s.close()
		return nil, fmt.Errorf("starting %s: %w", cfg.MPV, err)
	}
	s.session = player.New(player.Options{
		Engine:   engine,
		Immunity: t.Immunity,
		OnEOF:    s.menu.Open,
	})

	if err := s.menu.Load(cfg.Root); err != nil {
		s.close()
		return nil, err
	}
	s.watcher = backend.NewWatcher(s.menu.Path, t.PollInterval)
	events.App.Frontend(cfg.Frontend)
	return s, nil
}

// applyBackendEvent refreshes the menu after an external rewrite of the
// directory's index or cover archive.
func (s *services) applyBackendEvent(evt backend.Event) {
	if evt.Err != nil {
		logging.Error(fmt.Errorf("watching %s %s: %w", evt.Dir, evt.Kind, evt.Err))
		return
	}
	if evt.Dir != s.menu.Path() {
		return
	}
	switch evt.Kind {
	case backend.KindCovers:
		logging.Info("covers of %s changed, reloading", evt.Dir)
		s.buildPool.Schedule(s.menu.LoadCovers)
	case backend.KindIndex:
		logging.Info("index of %s changed, reloading", evt.Dir)
		if err := s.menu.Reload(); err != nil {
			logging.Error(err)
		}
	}
}

// close stops the video, persisting its final position, then the watcher
// and the pools. Pending pool work is discarded.
func (s *services) close() {
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			logging.Error(err)
		}
	}
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher.Wait()
	}
	s.buildPool.Close()
	s.renderPool.Close()
}
