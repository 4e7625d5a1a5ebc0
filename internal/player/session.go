package player

import (
	"sync"
	"time"

	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
)

// DefaultImmunity is how long position reports are ignored after playback
// starts at a resume position.
const DefaultImmunity = time.Second

// eofRoundUp is the position above which an EOF counts as fully played.
const eofRoundUp = 0.99

// Tracker receives position updates for the video being played.
// *tile.Tile satisfies it.
type Tracker interface {
	UpdatePos(position float64, force bool)
}

// Options configures a Session.
type Options struct {
	Engine   Engine
	Immunity time.Duration
	Clock    func() time.Time
	// OnEOF runs on the engine goroutine after a video ends and has been
	// stopped.
	OnEOF func()
}

// Session tracks the video currently handed to the engine.
type Session struct {
	engine   Engine
	immunity time.Duration
	clock    func() time.Time
	onEOF    func()

	mu          sync.Mutex
	current     string
	tracker     Tracker
	position    float64
	duration    float64
	hasDuration bool
	immuneUntil time.Time

	loop sync.WaitGroup
}

// New creates a session and starts consuming the engine's events.
func New(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Immunity < 0 {
		opts.Immunity = 0
	}
	s := &Session{
		engine:   opts.Engine,
		immunity: opts.Immunity,
		clock:    opts.Clock,
		onEOF:    opts.OnEOF,
	}
	s.loop.Add(1)
	go s.consume()
	return s
}

// Start plays path from position, stopping whatever was playing. A fully
// watched video restarts from the beginning.
func (s *Session) Start(path string, position float64, tr Tracker) error {
	if s.Playing() {
		if err := s.Stop(); err != nil {
			logging.Warn("stopping previous video: %v", err)
		}
	}
	if position >= 1 {
		position = 0
	}
	logging.Info("starting playback for %s at pos=%.3f", path, position)

	s.mu.Lock()
	s.current = path
	s.tracker = tr
	s.position = position
	s.duration, s.hasDuration = 0, false
	s.immuneUntil = s.clock().Add(s.immunity)
	s.mu.Unlock()

	events.Player.Start(path, position)
	if err := s.engine.Play(path, position); err != nil {
		s.mu.Lock()
		s.current, s.tracker = "", nil
		s.mu.Unlock()
		return err
	}
	return nil
}

// Stop stops playback and persists the final position.
func (s *Session) Stop() error {
	s.mu.Lock()
	path, tr, position := s.current, s.tracker, s.position
	s.current, s.tracker = "", nil
	s.mu.Unlock()
	if path == "" {
		return nil
	}

	logging.Info("stopping playback for %s", path)
	events.Player.Stop(path, position)
	err := s.engine.Stop()
	if tr != nil {
		tr.UpdatePos(position, true)
	}
	return err
}

// SetPaused pauses or resumes playback if the state differs.
func (s *Session) SetPaused(paused bool) error {
	if s.engine.Paused() == paused {
		return nil
	}
	if paused {
		logging.Info("pausing video")
	} else {
		logging.Info("unpausing video")
	}
	events.Player.Pause(paused)
	return s.engine.SetPause(paused)
}

// TogglePause flips the pause state.
func (s *Session) TogglePause() error {
	return s.SetPaused(!s.engine.Paused())
}

// Seek moves the playback position. Engine errors are logged and the
// position is left unchanged.
func (s *Session) Seek(amount float64, mode SeekMode) {
	logging.Info("seeking %s %v", mode, amount)
	events.Player.Seek(amount, mode.String())
	if err := s.engine.Seek(amount, mode); err != nil {
		logging.Warn("seek error: %v", err)
	}
}

// CycleSubtitles switches subtitle tracks; errors are logged.
func (s *Session) CycleSubtitles(down bool) {
	if err := s.engine.CycleSubtitles(down); err != nil {
		logging.Warn("cycling subtitles: %v", err)
	}
}

// Current returns the path being played, or "" when stopped.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Playing reports whether a video is loaded.
func (s *Session) Playing() bool {
	return s.Current() != ""
}

// Position returns the last known normalized position.
func (s *Session) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Duration returns the duration in seconds and whether it is known.
func (s *Session) Duration() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration, s.hasDuration
}

// Paused reports whether the engine is paused.
func (s *Session) Paused() bool {
	return s.engine.Paused()
}

// Close stops playback, shuts the engine down and waits for the event loop.
func (s *Session) Close() error {
	if err := s.Stop(); err != nil {
		logging.Warn("stopping video: %v", err)
	}
	err := s.engine.Close()
	s.loop.Wait()
	return err
}

func (s *Session) consume() {
	defer s.loop.Done()
	for ev := range s.engine.Events() {
		s.handle(ev)
	}
}

func (s *Session) handle(ev Event) {
	switch ev.Kind {
	case EventPosition:
		s.mu.Lock()
		if s.current == "" {
			s.mu.Unlock()
			return
		}
		if s.clock().Before(s.immuneUntil) {
			s.mu.Unlock()
			events.Player.Immune(ev.Position)
			return
		}
		s.position = ev.Position
		tr := s.tracker
		s.mu.Unlock()
		if tr != nil {
			tr.UpdatePos(ev.Position, false)
		}
	case EventDuration:
		s.mu.Lock()
		s.duration, s.hasDuration = ev.Duration, true
		s.mu.Unlock()
	case EventEOF:
		s.mu.Lock()
		path := s.current
		if path == "" {
			s.mu.Unlock()
			return
		}
		if s.position > eofRoundUp {
			s.position = 1
		}
		position := s.position
		s.mu.Unlock()

		logging.Info("reached EOF @pos=%.3f", position)
		events.Player.EOF(path, position)
		if err := s.Stop(); err != nil {
			logging.Warn("stopping after EOF: %v", err)
		}
		if s.onEOF != nil {
			s.onEOF()
		}
	}
}
