package store

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
)

// ErrCoverNotFound is returned when the archive has no entry for a name.
var ErrCoverNotFound = errors.New("cover not found")

// Covers is an open cover archive.
type Covers struct {
	zr    *zip.ReadCloser
	files map[string]*zip.File
}

// OpenCovers opens dir's cover archive.
func OpenCovers(dir string) (*Covers, error) {
	path := CoverPath(dir)
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open covers %s: %w", path, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	return &Covers{zr: zr, files: files}, nil
}

// Lookup returns the cover bytes for name. An empty result means the entry
// exists but the name explicitly has no cover.
func (c *Covers) Lookup(name string) ([]byte, error) {
	f, ok := c.files[name]
	if !ok {
		return nil, ErrCoverNotFound
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open cover %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read cover %s: %w", name, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Len returns the number of archive entries.
func (c *Covers) Len() int { return len(c.files) }

// Close releases the archive.
func (c *Covers) Close() error {
	return c.zr.Close()
}
