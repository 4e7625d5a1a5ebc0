package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultLogFile = "fabella.log"

var (
	traceMu      sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
)

// Error writes errors to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	write("ERROR", err.Error())
}

// Warn writes a formatted warning line to the shared log file.
func Warn(format string, args ...interface{}) {
	write("WARN", fmt.Sprintf(format, args...))
}

// Info writes a formatted informational line to the shared log file.
func Info(format string, args ...interface{}) {
	write("INFO", fmt.Sprintf(format, args...))
}

// appendLog opens the log file for one append. Callers hold traceMu.
func appendLog(fn func(f *os.File) error) error {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func write(level, msg string) {
	traceMu.Lock()
	defer traceMu.Unlock()
	err := appendLog(func(f *os.File) error {
		log.New(f, "", log.LstdFlags|log.Lmicroseconds).Printf("%-5s %s", level, msg)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
	}
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	traceMu.Lock()
	traceEnabled = enabled
	traceMu.Unlock()
}

// TraceEnabled reports whether structured tracing is active.
func TraceEnabled() bool {
	traceMu.Lock()
	defer traceMu.Unlock()
	return traceEnabled
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	traceMu.Lock()
	defer traceMu.Unlock()
	if !traceEnabled {
		return
	}

	entry := struct {
		Time    time.Time   `json:"time"`
		Event   string      `json:"event"`
		Payload interface{} `json:"payload,omitempty"`
	}{
		Time:    time.Now().UTC(),
		Event:   event,
		Payload: payload,
	}

	err := appendLog(func(f *os.File) error {
		return json.NewEncoder(f).Encode(entry)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
	}
}

// Slog returns a slog.Logger that appends to the shared log file. It is
// handed to libraries that accept a structured logger.
func Slog() *slog.Logger {
	return slog.New(slog.NewTextHandler(fileWriter{}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fileWriter struct{}

func (fileWriter) Write(p []byte) (int, error) {
	traceMu.Lock()
	defer traceMu.Unlock()
	n := 0
	err := appendLog(func(f *os.File) error {
		var werr error
		n, werr = f.Write(p)
		return werr
	})
	return n, err
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	traceMu.Lock()
	defer traceMu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}
