package backend

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/atomicstack/fabella/internal/store"
)

// DefaultInterval is the poll period used when none is configured.
const DefaultInterval = 2 * time.Second

// Kind identifies which per-directory file changed.
type Kind int

const (
	// KindCovers reports a rewritten cover archive.
	KindCovers Kind = iota
	// KindIndex reports a rewritten base index.
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindCovers:
		return "covers"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Event reports that a file of the watched directory changed.
type Event struct {
	Kind    Kind
	Dir     string
	ModTime time.Time
	Err     error
}

// Watcher polls the state files of the directory currently shown and
// publishes an event when one of them is rewritten.
type Watcher struct {
	dir      func() string
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts polling every interval. dir is called on each poll and
// returns the directory to watch; a change of directory resets the
// baseline without emitting.
func NewWatcher(dir func() string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      dir,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.startPoller(KindCovers, store.CoverPath)
	w.startPoller(KindIndex, store.IndexPath)

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. Pollers exit after their current stat.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all pollers have exited and the events channel is
// closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// fileState is what a poller remembers between ticks.
type fileState struct {
	dir     string
	modTime time.Time
	size    int64
}

func stat(dir string, path func(string) string) (fileState, error) {
	st := fileState{dir: dir}
	if dir == "" {
		return st, nil
	}
	info, err := os.Stat(path(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.modTime = info.ModTime()
	st.size = info.Size()
	return st, nil
}

func (w *Watcher) startPoller(kind Kind, path func(string) string) {
	last, _ := stat(w.dir(), path)
	gate := newThrottle(w.interval / 2)
	w.wg.Add(1)
	go w.poll(kind, func() (Event, bool) {
		gate.wait()
		cur, err := stat(w.dir(), path)
		if err != nil {
			return Event{Kind: kind, Dir: cur.dir, Err: err}, true
		}
		prev := last
		last = cur
		if cur.dir != prev.dir || cur.dir == "" {
			return Event{}, false
		}
		if cur.modTime.Equal(prev.modTime) && cur.size == prev.size {
			return Event{}, false
		}
		return Event{Kind: kind, Dir: cur.dir, ModTime: cur.modTime}, true
	})
}

func (w *Watcher) poll(kind Kind, check func() (Event, bool)) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			evt, changed := check()
			if !changed {
				continue
			}
			select {
			case <-w.ctx.Done():
				return
			case w.events <- evt:
			}
		}
	}
}
