package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/fabella/internal/backend"
	"github.com/atomicstack/fabella/internal/player"
	"github.com/atomicstack/fabella/internal/store"
	"github.com/atomicstack/fabella/internal/theme"
	"github.com/atomicstack/fabella/internal/tile"
	"github.com/go-playground/validator/v10"
)

// Front-end names accepted by Config.Frontend.
const (
	FrontendAuto = "auto"
	FrontendGL   = "gl"
	FrontendTUI  = "tui"
)

// Default window size of the graphical front-end.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// Config describes user-provided application options.
type Config struct {
	Root     string `validate:"required,dir"`
	Frontend string `validate:"oneof=auto gl tui"`
	Width    int    `validate:"gte=0"`
	Height   int    `validate:"gte=0"`
	FontPath string `validate:"required_if=Frontend gl,omitempty,file"`
	MPV      string `validate:"required"`
	Tunables Tunables
}

// Tunables are the settings read from the optional config file.
type Tunables struct {
	Theme           theme.Metrics `mapstructure:"theme"`
	RenderWorkers   int           `mapstructure:"render_workers" validate:"gte=1"`
	BuildWorkers    int           `mapstructure:"build_workers" validate:"gte=1"`
	PersistInterval time.Duration `mapstructure:"persist_interval" validate:"gte=0"`
	PersistMinMove  float64       `mapstructure:"persist_min_move" validate:"gte=0,lte=1"`
	Segments        int           `mapstructure:"segments" validate:"gte=1,lte=64"`
	Immunity        time.Duration `mapstructure:"immunity" validate:"gte=0"`
	PollInterval    time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
}

// DefaultTunables returns the stock tunables.
func DefaultTunables() Tunables {
	throttle := tile.DefaultThrottle()
	return Tunables{
		Theme:           theme.Default(),
		RenderWorkers:   1,
		BuildWorkers:    1,
		PersistInterval: throttle.Interval,
		PersistMinMove:  throttle.MinMove,
		Segments:        store.Segments,
		Immunity:        player.DefaultImmunity,
		PollInterval:    backend.DefaultInterval,
	}
}

// Throttle is the tile persistence throttle.
func (t Tunables) Throttle() tile.Throttle {
	return tile.Throttle{Interval: t.PersistInterval, MinMove: t.PersistMinMove}
}

var validate = validator.New()

// Validate checks cfg against its struct tags, tile metrics included.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid %s: failed %q (value %v)", first.Namespace(), first.Tag(), first.Value())
		}
		return err
	}
	return nil
}

// ResolveFrontend picks the front-end for an "auto" request: the terminal
// UI when running on a terminal without a display server, the window
// otherwise.
func ResolveFrontend(requested string, tty bool, getenv func(string) string) string {
	if requested != FrontendAuto && requested != "" {
		return requested
	}
	display := getenv("DISPLAY") != "" || getenv("WAYLAND_DISPLAY") != ""
	if tty && !display {
		return FrontendTUI
	}
	return FrontendGL
}

// Run loads the library root and runs the configured front-end until the
// user quits.
func Run(cfg Config) error {
	s, err := start(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	switch cfg.Frontend {
	case FrontendTUI:
		return runTUI(s)
	default:
		return runGL(cfg, s)
	}
}
