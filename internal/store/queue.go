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

	"github.com/google/uuid"

	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
)

const recordExt = ".json"

// ReadPending reads every update record queued for dir in filename order and
// folds them into one partial record per entry name. Records that cannot be
// read or parsed are logged and skipped.
func ReadPending(dir string) (map[string]Meta, error) {
	qdir := QueuePath(dir)
	entries, err := os.ReadDir(qdir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Meta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue %s: %w", qdir, err)
	}
	names := make([]string, 0, len(entries))
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make(map[string]Meta)
	for _, name := range names {
		path := filepath.Join(qdir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Warn("skipping update record %s: %v", path, err)
			continue
		}
		var record map[string]Meta
		if err := json.Unmarshal(data, &record); err != nil {
			logging.Warn("skipping update record %s: %v", path, err)
			continue
		}
		for tile, fields := range record {
			if fields == nil {
				continue
			}
			if updates[tile] == nil {
				updates[tile] = make(Meta, len(fields))
			}
			updates[tile].Apply(fields)
		}
	}
	events.Store.Pending(dir, len(names))
	return updates, nil
}

// Queue writes update records.
type Queue struct {
	newID func() (uuid.UUID, error)
}

// NewQueue returns a queue naming records with time-ordered UUIDs.
func NewQueue() *Queue {
	return &Queue{newID: uuid.NewV7}
}

// Write stores records, keyed by entry name, as a new record in dir's
// queue and returns its path. The record is written to a hidden temporary
// file first and renamed into place, so readers never see partial records.
func (q *Queue) Write(dir string, records map[string]Meta) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	id, err := q.newID()
	if err != nil {
		return "", fmt.Errorf("record id: %w", err)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	qdir := QueuePath(dir)
	if err := os.MkdirAll(qdir, 0o755); err != nil {
		return "", fmt.Errorf("create queue %s: %w", qdir, err)
	}
	tmp, err := os.CreateTemp(qdir, ".pending-*")
	if err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("sync record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close record: %w", err)
	}
	final := filepath.Join(qdir, id.String()+recordExt)
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publish record: %w", err)
	}
	events.Store.Write(dir, filepath.Base(final), len(records))
	return final, nil
}
