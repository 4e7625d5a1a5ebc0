package store

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/atomicstack/fabella/internal/testutil"
	"github.com/google/uuid"
)

func names(entries []Meta) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name()
	}
	return out
}

func TestReadIndexKeepsListingOrder(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, IndexPath(dir), `{"files":[
		{"name":"b.mkv","isdir":false,"duration":3600,"tile_color":"#102030"},
		{"name":"a","isdir":true},
		{"name":"c.mp4","isdir":false,"duration":null}
	]}`)
	entries, err := ReadIndex(dir)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if got := names(entries); !reflect.DeepEqual(got, []string{"b.mkv", "a", "c.mp4"}) {
		t.Fatalf("expected listing order, got %v", got)
	}
	if d, ok := entries[0].Float(KeyDuration); !ok || d != 3600 {
		t.Fatalf("expected duration 3600, got %v %v", d, ok)
	}
	if !entries[1].IsDir() {
		t.Fatalf("expected a to be a directory")
	}
	if !entries[2].IsNull(KeyDuration) {
		t.Fatalf("expected explicit null duration")
	}
}

func TestReadIndexMissing(t *testing.T) {
	if _, err := ReadIndex(t.TempDir()); !errors.Is(err, ErrNoIndex) {
		t.Fatalf("expected ErrNoIndex, got %v", err)
	}
}

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mkv", "a.MP4", ".hidden.mkv", "notes.txt", "z.webm"} {
		testutil.WriteFile(t, filepath.Join(dir, name), "")
	}
	for _, name := range []string{"Season 2", "Season 1", ".fabella"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{"a.MP4", "b.mkv", "z.webm", "Season 1", "Season 2"}
	if got := names(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if entries[0].IsDir() || !entries[3].IsDir() {
		t.Fatalf("expected directory flags to be set from the listing")
	}
}

func TestMergeLastFieldWinsAndIsIdempotent(t *testing.T) {
	base := []Meta{
		{KeyName: "a.mkv", KeyIsDir: false, KeyDuration: 60.0},
		{KeyName: "b.mkv", KeyIsDir: false},
	}
	updates := map[string]Meta{
		"a.mkv":    {KeyPosition: 0.5, KeyWatched: 3.0},
		"gone.mp4": {KeyTrash: true},
	}
	once := Merge(base, updates)
	twice := Merge(once, updates)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected merge to be idempotent:\n%v\n%v", once, twice)
	}
	if p, _ := once[0].Float(KeyPosition); p != 0.5 {
		t.Fatalf("expected position 0.5, got %v", p)
	}
	if d, _ := once[0].Float(KeyDuration); d != 60 {
		t.Fatalf("expected untouched duration, got %v", d)
	}
	if base[0].Has(KeyPosition) {
		t.Fatalf("expected base to be unmodified")
	}
	if len(once) != 2 {
		t.Fatalf("expected unknown names to be ignored, got %d entries", len(once))
	}
}

func TestQueueWriteAndReadPendingInOrder(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue()
	if _, err := q.Write(dir, map[string]Meta{"a.mkv": {KeyPosition: 0.1, KeyWatched: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := q.Write(dir, map[string]Meta{"a.mkv": {KeyPosition: 0.2}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := q.Write(dir, map[string]Meta{"b.mkv": {KeyTrash: true}, "a.mkv": {KeyWatched: 3}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	pending, err := ReadPending(dir)
	if err != nil {
		t.Fatalf("read pending: %v", err)
	}
	a := pending["a.mkv"]
	if p, _ := a.Float(KeyPosition); p != 0.2 {
		t.Fatalf("expected last position 0.2, got %v", p)
	}
	if w, _ := a.Uint(KeyWatched); w != 3 {
		t.Fatalf("expected last watched 3, got %v", w)
	}
	if tr, _ := pending["b.mkv"].Bool(KeyTrash); !tr {
		t.Fatalf("expected trash on b.mkv")
	}
}

func TestReadPendingSkipsBrokenAndTemporaryRecords(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(QueuePath(dir), "0001.json"), `{"a.mkv":{"position":0.4}}`)
	testutil.WriteFile(t, filepath.Join(QueuePath(dir), "0002.json"), `{"a.mkv":{"posi`)
	testutil.WriteFile(t, filepath.Join(QueuePath(dir), ".pending-123"), `{"a.mkv":{"position":0.9}}`)
	pending, err := ReadPending(dir)
	if err != nil {
		t.Fatalf("read pending: %v", err)
	}
	if p, _ := pending["a.mkv"].Float(KeyPosition); p != 0.4 {
		t.Fatalf("expected only the valid record to apply, got %v", p)
	}
}

func TestQueueRecordsAreUniquelyNamed(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		path, err := q.Write(dir, map[string]Meta{"a.mkv": {KeyPosition: float64(i) / 20}})
		if err != nil {
			t.Fatalf("write: %v", err)
		}
		if seen[path] {
			t.Fatalf("expected unique record names, got duplicate %s", path)
		}
		seen[path] = true
	}
	pending, _ := ReadPending(dir)
	if p, _ := pending["a.mkv"].Float(KeyPosition); p != 19.0/20 {
		t.Fatalf("expected creation order to be preserved, got %v", p)
	}
}

func TestQueueWriteFailureLeavesNoRecord(t *testing.T) {
	dir := t.TempDir()
	q := &Queue{newID: func() (uuid.UUID, error) { return uuid.UUID{}, errors.New("entropy") }}
	if _, err := q.Write(dir, map[string]Meta{"a.mkv": {KeyTrash: true}}); err == nil {
		t.Fatalf("expected id error")
	}
	if _, err := os.Stat(QueuePath(dir)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no queue directory, got %v", err)
	}
}

func TestLoadFallsBackToScanAndAppliesPending(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "ep1.mkv"), "")
	testutil.WriteFile(t, filepath.Join(dir, "ep2.mkv"), "")
	if _, err := NewQueue().Write(dir, map[string]Meta{"ep2.mkv": {KeyWatched: 1023}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := names(entries); !reflect.DeepEqual(got, []string{"ep1.mkv", "ep2.mkv"}) {
		t.Fatalf("expected scanned entries, got %v", got)
	}
	if w, _ := entries[1].Uint(KeyWatched); w != 1023 {
		t.Fatalf("expected pending watched applied, got %v", w)
	}
}

func TestCoversLookup(t *testing.T) {
	dir := t.TempDir()
	path := CoverPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("a.mkv")
	_, _ = w.Write([]byte("jpegbytes"))
	_, _ = zw.Create("b.mkv")
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	f.Close()

	covers, err := OpenCovers(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer covers.Close()
	if data, err := covers.Lookup("a.mkv"); err != nil || string(data) != "jpegbytes" {
		t.Fatalf("expected cover bytes, got %q %v", data, err)
	}
	if data, err := covers.Lookup("b.mkv"); err != nil || data == nil || len(data) != 0 {
		t.Fatalf("expected explicit empty cover, got %v %v", data, err)
	}
	if _, err := covers.Lookup("c.mkv"); !errors.Is(err, ErrCoverNotFound) {
		t.Fatalf("expected ErrCoverNotFound, got %v", err)
	}
}

func TestWatchedHelpers(t *testing.T) {
	if AllWatched(10) != 1023 {
		t.Fatalf("expected 1023, got %d", AllWatched(10))
	}
	if SegmentBit(0, 10) != 1 || SegmentBit(0.55, 10) != 1<<5 || SegmentBit(1, 10) != 1<<9 {
		t.Fatalf("unexpected segment bits")
	}
	if !Unseen(0) || Watching(0, 10) || !Watching(4, 10) || Watching(1023, 10) {
		t.Fatalf("unexpected watched classification")
	}
	if WatchedCount(0b1011, 10) != 3 {
		t.Fatalf("expected 3 segments counted")
	}
}
