// Package player hands videos to an external playback engine and feeds the
// engine's position reports back into the tile being watched.
package player

import "errors"

// ErrNotRunning is returned when a command is sent to an engine that has
// exited or been closed.
var ErrNotRunning = errors.New("playback engine not running")

// SeekMode selects how a seek amount is interpreted.
type SeekMode int

const (
	// SeekRelative moves by a number of seconds from the current position.
	SeekRelative SeekMode = iota
	// SeekAbsolute moves to a position in seconds; negative values count
	// from the end.
	SeekAbsolute
	// SeekAbsolutePercent moves to a percentage of the duration.
	SeekAbsolutePercent
)

func (m SeekMode) String() string {
	switch m {
	case SeekAbsolute:
		return "absolute"
	case SeekAbsolutePercent:
		return "absolute-percent"
	default:
		return "relative"
	}
}

// EventKind identifies an engine notification.
type EventKind int

const (
	EventPosition EventKind = iota
	EventDuration
	EventEOF
	EventPause
)

// Event is an asynchronous notification from the engine. Position is
// normalized to 0..1 and Duration is in seconds.
type Event struct {
	Kind     EventKind
	Position float64
	Duration float64
	EOF      bool
	Paused   bool
}

// Engine is the boundary to the process that decodes and shows video.
// Events are delivered on the engine's own goroutine; the channel is
// closed when the engine exits.
type Engine interface {
	Play(path string, start float64) error
	Stop() error
	SetPause(paused bool) error
	Paused() bool
	Seek(amount float64, mode SeekMode) error
	CycleSubtitles(down bool) error
	Close() error
	Events() <-chan Event
}
