// Package store reads and writes the per-directory library state.
//
// Each directory may carry a .fabella folder holding a pre-built index, a
// queue of small update records and an archive of cover thumbnails:
//
//	.fabella/index.json        base listing, rewritten out of band
//	.fabella/queue/<id>.json   append-only update records
//	.fabella/covers.zip        cover images keyed by entry name
//
// Records in the queue are never modified after they are written. Readers
// apply them in filename order over the base index; record ids are time
// ordered so filename order is creation order.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
)

const (
	// StateDir is the per-directory metadata folder.
	StateDir  = ".fabella"
	IndexName = "index.json"
	QueueName = "queue"
	CoverName = "covers.zip"
)

// ErrNoIndex is returned by ReadIndex when a directory has no index file.
var ErrNoIndex = errors.New("no index")

// VideoExtensions are the file suffixes kept by Scan.
var VideoExtensions = []string{
	".3gp", ".avi", ".flv", ".m2ts", ".m4v", ".mkv", ".mov", ".mp4",
	".mpeg", ".mpg", ".ogm", ".ogv", ".rm", ".rmvb", ".ts", ".vob",
	".webm", ".wmv",
}

// IndexPath returns the index file location for dir.
func IndexPath(dir string) string { return filepath.Join(dir, StateDir, IndexName) }

// QueuePath returns the update queue location for dir.
func QueuePath(dir string) string { return filepath.Join(dir, StateDir, QueueName) }

// CoverPath returns the cover archive location for dir.
func CoverPath(dir string) string { return filepath.Join(dir, StateDir, CoverName) }

type indexFile struct {
	Files []Meta `json:"files"`
}

// ReadIndex returns the base index entries in listing order.
func ReadIndex(dir string) ([]Meta, error) {
	data, err := os.ReadFile(IndexPath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", IndexPath(dir), err)
	}
	for i, entry := range idx.Files {
		if entry.Name() == "" {
			return nil, fmt.Errorf("parse index %s: entry %d has no name", IndexPath(dir), i)
		}
	}
	return idx.Files, nil
}

// Scan lists dir directly. Dot entries are skipped, files are kept only with
// a known video extension, and files sort before directories, each group in
// lexicographic order.
func Scan(dir string) ([]Meta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	type row struct {
		name  string
		isDir bool
	}
	rows := make([]row, 0, len(entries))
	for _, de := range entries {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		isDir := de.IsDir()
		if !isDir && de.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
				isDir = info.IsDir()
			}
		}
		if !isDir && !IsVideo(name) {
			continue
		}
		rows = append(rows, row{name: name, isDir: isDir})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].isDir != rows[j].isDir {
			return !rows[i].isDir
		}
		return rows[i].name < rows[j].name
	})
	out := make([]Meta, 0, len(rows))
	for _, r := range rows {
		out = append(out, Meta{KeyName: r.name, KeyIsDir: r.isDir})
	}
	return out, nil
}

// IsVideo reports whether name has a known video extension.
func IsVideo(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// Merge applies updates over base per entry name. Fields present in an
// update overwrite the base; absent fields are untouched. Updates for names
// not in base are ignored. base is not modified.
func Merge(base []Meta, updates map[string]Meta) []Meta {
	out := make([]Meta, len(base))
	for i, entry := range base {
		merged := entry.Clone()
		if u, ok := updates[entry.Name()]; ok {
			merged.Apply(u)
		}
		out[i] = merged
	}
	return out
}

// Load returns the merged listing for dir: the base index, or a scan when
// the index is absent, with every pending update applied.
func Load(dir string) ([]Meta, error) {
	base, err := ReadIndex(dir)
	if errors.Is(err, ErrNoIndex) {
		logging.Warn("%s: no index, falling back to directory scan", dir)
		base, err = Scan(dir)
		if err == nil {
			events.Store.Fallback(dir, len(base))
		}
	}
	if err != nil {
		return nil, err
	}
	pending, err := ReadPending(dir)
	if err != nil {
		return nil, err
	}
	return Merge(base, pending), nil
}
