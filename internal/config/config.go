package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atomicstack/fabella/internal/app"
	"github.com/spf13/viper"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envRoot     = "FABELLA_ROOT"
	envFrontend = "FABELLA_FRONTEND"
	envWidth    = "FABELLA_WIDTH"
	envHeight   = "FABELLA_HEIGHT"
	envFont     = "FABELLA_FONT"
	envMPV      = "FABELLA_MPV"
	envConfig   = "FABELLA_CONFIG"
	envTrace    = "FABELLA_TRACE"
	envLogFile  = "FABELLA_LOG_FILE"
)

// ErrNoRoot is returned when neither an argument nor the environment names
// the library root.
var ErrNoRoot = errors.New("no library root given")

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. The library
// root is the first positional argument.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("fabella", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	frontend := fs.String("frontend", envOrDefault(env, envFrontend, app.FrontendAuto), "front-end to run: auto, gl or tui")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "window width in pixels (0 uses the default)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "window height in pixels (0 uses the default)")
	font := fs.String("font", envOrDefault(env, envFont, ""), "path to the TrueType or OpenType font")
	mpv := fs.String("mpv", envOrDefault(env, envMPV, "mpv"), "mpv binary used for playback")
	configFile := fs.String("config", envOrDefault(env, envConfig, ""), "path to a config file with tunables")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	root := envOrDefault(env, envRoot, "")
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	if root == "" {
		return Config{}, ErrNoRoot
	}

	tunables, err := LoadTunables(*configFile)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			Root:     root,
			Frontend: *frontend,
			Width:    *width,
			Height:   *height,
			FontPath: *font,
			MPV:      *mpv,
			Tunables: tunables,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"root":     root,
			"frontend": *frontend,
			"width":    strconv.Itoa(*width),
			"height":   strconv.Itoa(*height),
			"font":     *font,
			"mpv":      *mpv,
			"config":   *configFile,
			"trace":    strconv.FormatBool(*trace),
			"logFile":  *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// LoadTunables reads the optional config file over the default tunables.
// An empty path returns the defaults. Durations accept Go duration
// strings such as "10s".
func LoadTunables(path string) (app.Tunables, error) {
	tunables := app.DefaultTunables()
	if path == "" {
		return tunables, nil
	}
	v := viper.New()
	v.SetDefault("render_workers", tunables.RenderWorkers)
	v.SetDefault("build_workers", tunables.BuildWorkers)
	v.SetDefault("persist_interval", tunables.PersistInterval)
	v.SetDefault("persist_min_move", tunables.PersistMinMove)
	v.SetDefault("segments", tunables.Segments)
	v.SetDefault("immunity", tunables.Immunity)
	v.SetDefault("poll_interval", tunables.PollInterval)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return app.Tunables{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := v.Unmarshal(&tunables); err != nil {
		return app.Tunables{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return tunables, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintln(os.Stderr, "usage: fabella [flags] <library root>")
		os.Exit(2)
	}
	return cfg
}

// Validate ensures the application configuration is usable.
func Validate(cfg Config) error {
	return app.Validate(cfg.App)
}
