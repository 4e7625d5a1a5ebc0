// Package testutil builds video library fixtures on disk for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Touch creates empty files under dir, making parent directories as
// needed. Names may contain slashes.
func Touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		WriteFile(t, filepath.Join(dir, name), "")
	}
}

// WriteFile writes content to path, making parent directories as needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Library creates a fresh library root holding the given files.
func Library(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	Touch(t, root, names...)
	return root
}
