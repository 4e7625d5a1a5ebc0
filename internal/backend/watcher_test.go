package backend

import (
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/fabella/internal/store"
	"github.com/atomicstack/fabella/internal/testutil"
)

type dirSwitch struct {
	mu  sync.Mutex
	dir string
}

func (d *dirSwitch) get() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dir
}

func (d *dirSwitch) set(dir string) {
	d.mu.Lock()
	d.dir = dir
	d.mu.Unlock()
}

func expectEvent(t *testing.T, w *Watcher, kind Kind, dir string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt, ok := <-w.Events():
			if !ok {
				t.Fatalf("events closed while waiting for %s", kind)
			}
			if evt.Err != nil {
				t.Fatalf("unexpected error: %v", evt.Err)
			}
			if evt.Kind == kind {
				if evt.Dir != dir {
					t.Fatalf("expected dir %s, got %s", dir, evt.Dir)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func TestWatcherReportsNewCoverArchive(t *testing.T) {
	dir := t.TempDir()
	cur := &dirSwitch{dir: dir}
	w := NewWatcher(cur.get, 10*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	testutil.WriteFile(t, store.CoverPath(dir), "zip")
	expectEvent(t, w, KindCovers, dir)

	testutil.WriteFile(t, store.IndexPath(dir), `{"files":[]}`)
	expectEvent(t, w, KindIndex, dir)
}

func TestWatcherIgnoresDirectoryChange(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	testutil.WriteFile(t, store.CoverPath(b), "zip")
	cur := &dirSwitch{dir: a}
	w := NewWatcher(cur.get, 10*time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	cur.set(b)
	select {
	case evt := <-w.Events():
		t.Fatalf("expected no event after switching directory, got %+v", evt)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherStopClosesEvents(t *testing.T) {
	w := NewWatcher(func() string { return "" }, 10*time.Millisecond)
	w.Stop()
	w.Wait()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("expected events channel to close")
		}
	}
}

func TestKindNames(t *testing.T) {
	if KindCovers.String() != "covers" || KindIndex.String() != "index" {
		t.Fatalf("unexpected kind names %s, %s", KindCovers, KindIndex)
	}
}
