package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/atomicstack/fabella/internal/logging"
)

const (
	dialTimeout    = 5 * time.Second
	dialRetry      = 50 * time.Millisecond
	commandTimeout = 5 * time.Second
)

// Observer ids for the properties the engine watches.
const (
	observePosition = iota + 1
	observeDuration
	observeEOF
	observePause
)

var defaultMPVArgs = []string{
	"--idle=yes",
	"--force-window=yes",
	"--fullscreen",
	"--hwdec=auto",
	"--osd-duration=1000",
	"--osd-level=1",
	"--replaygain=track",
	"--replaygain-clip=yes",
}

type mpvRequest struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

type mpvMessage struct {
	Event     string          `json:"event"`
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
}

type mpvReply struct {
	data json.RawMessage
	err  error
}

// MPV drives an mpv process over its JSON IPC socket.
type MPV struct {
	cmd    *exec.Cmd
	socket string
	conn   net.Conn

	writeMu sync.Mutex
	mu      sync.Mutex
	pending map[int64]chan mpvReply
	nextID  int64

	paused  atomic.Bool
	events  chan Event
	closing chan struct{}
	done    chan struct{}
	once    sync.Once
	timeout time.Duration
}

// NewMPV starts binary in idle mode with its IPC server in socketDir and
// connects to it. extra is appended to the default command line.
func NewMPV(binary, socketDir string, extra ...string) (*MPV, error) {
	if binary == "" {
		binary = "mpv"
	}
	if socketDir == "" {
		socketDir = os.TempDir()
	}
	socket := filepath.Join(socketDir, "fabella-mpv-"+uuid.NewString()+".sock")
	args := append([]string{"--input-ipc-server=" + socket}, defaultMPVArgs...)
	args = append(args, extra...)

	cmd := exec.Command(binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", binary, err)
	}

	conn, err := dialSocket(socket, dialTimeout)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("connecting to %s: %w", socket, err)
	}
	m, err := attach(conn)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	m.cmd = cmd
	m.socket = socket
	logging.Info("mpv started: pid=%d socket=%s", cmd.Process.Pid, socket)
	return m, nil
}

func dialSocket(socket string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(dialRetry)
	}
}

// attach speaks the IPC protocol over an established connection and
// registers the property observers.
func attach(conn net.Conn) (*MPV, error) {
	m := &MPV{
		conn:    conn,
		pending: make(map[int64]chan mpvReply),
		events:  make(chan Event, 64),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
		timeout: commandTimeout,
	}
	go m.read()

	observers := []struct {
		id   int
		name string
	}{
		{observePosition, "percent-pos"},
		{observeDuration, "duration"},
		{observeEOF, "eof-reached"},
		{observePause, "pause"},
	}
	for _, o := range observers {
		if _, err := m.command("observe_property", o.id, o.name); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("observing %s: %w", o.name, err)
		}
	}
	return m, nil
}

// Events returns the notification channel.
func (m *MPV) Events() <-chan Event { return m.events }

// Play replaces the current file with path, starting at the normalized
// position start.
func (m *MPV) Play(path string, start float64) error {
	at := "none"
	if start > 0 {
		at = strconv.FormatFloat(start*100, 'f', 3, 64) + "%"
	}
	if _, err := m.command("set_property", "start", at); err != nil {
		return fmt.Errorf("setting start position: %w", err)
	}
	if _, err := m.command("loadfile", path, "replace"); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return m.SetPause(false)
}

// Stop unloads the current file and leaves mpv idle.
func (m *MPV) Stop() error {
	_, err := m.command("stop")
	return err
}

// SetPause pauses or resumes playback.
func (m *MPV) SetPause(paused bool) error {
	if _, err := m.command("set_property", "pause", paused); err != nil {
		return err
	}
	m.paused.Store(paused)
	return nil
}

// Paused reports the last known pause state.
func (m *MPV) Paused() bool { return m.paused.Load() }

// Seek moves the playback position.
func (m *MPV) Seek(amount float64, mode SeekMode) error {
	_, err := m.command("seek", amount, mode.String())
	return err
}

// CycleSubtitles selects the next (or previous) subtitle track and shows
// the selection on the engine's OSD.
func (m *MPV) CycleSubtitles(down bool) error {
	args := []interface{}{"cycle", "sub"}
	if down {
		args = append(args, "down")
	}
	if _, err := m.command(args...); err != nil {
		return err
	}
	_, err := m.command("show-text", "Subtitles: ${sub}")
	return err
}

// Close asks mpv to quit, closes the connection and reaps the process.
func (m *MPV) Close() error {
	var err error
	m.once.Do(func() {
		select {
		case <-m.done:
		default:
			_ = m.send("quit")
		}
		close(m.closing)
		err = m.conn.Close()
		<-m.done
		if m.cmd != nil {
			waited := make(chan error, 1)
			go func() { waited <- m.cmd.Wait() }()
			select {
			case <-waited:
			case <-time.After(2 * time.Second):
				_ = m.cmd.Process.Kill()
				<-waited
			}
		}
		if m.socket != "" {
			_ = os.Remove(m.socket)
		}
	})
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (m *MPV) send(args ...interface{}) error {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.mu.Unlock()
	return m.write(mpvRequest{Command: args, RequestID: id})
}

func (m *MPV) write(req mpvRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_, err = m.conn.Write(append(payload, '\n'))
	return err
}

// command sends args and waits for mpv's reply.
func (m *MPV) command(args ...interface{}) (json.RawMessage, error) {
	reply := make(chan mpvReply, 1)
	m.mu.Lock()
	select {
	case <-m.done:
		m.mu.Unlock()
		return nil, ErrNotRunning
	default:
	}
	m.nextID++
	id := m.nextID
	m.pending[id] = reply
	m.mu.Unlock()

	if err := m.write(mpvRequest{Command: args, RequestID: id}); err != nil {
		m.forget(id)
		return nil, fmt.Errorf("mpv %v: %w", args[0], err)
	}

	select {
	case r := <-reply:
		if r.err != nil {
			return nil, fmt.Errorf("mpv %v: %w", args[0], r.err)
		}
		return r.data, nil
	case <-time.After(m.timeout):
		m.forget(id)
		return nil, fmt.Errorf("mpv %v: timed out", args[0])
	}
}

func (m *MPV) forget(id int64) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

// read runs on its own goroutine until the connection closes.
func (m *MPV) read() {
	defer func() {
		m.mu.Lock()
		for id, ch := range m.pending {
			ch <- mpvReply{err: ErrNotRunning}
			delete(m.pending, id)
		}
		close(m.done)
		m.mu.Unlock()
		close(m.events)
	}()

	scanner := bufio.NewScanner(m.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			logging.Warn("mpv: undecodable message %q: %v", scanner.Text(), err)
			continue
		}
		if msg.Event == "" {
			m.resolve(msg)
			continue
		}
		if ev, ok := translate(msg); ok {
			if ev.Kind == EventPause {
				m.paused.Store(ev.Paused)
			}
			select {
			case m.events <- ev:
			case <-m.closing:
				return
			}
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		logging.Warn("mpv: connection lost: %v", err)
	}
}

func (m *MPV) resolve(msg mpvMessage) {
	m.mu.Lock()
	ch, ok := m.pending[msg.RequestID]
	delete(m.pending, msg.RequestID)
	m.mu.Unlock()
	if !ok {
		return
	}
	if msg.Error != "" && msg.Error != "success" {
		ch <- mpvReply{err: errors.New(msg.Error)}
		return
	}
	ch <- mpvReply{data: msg.Data}
}

// translate maps a property-change message onto an Event. Null values and
// unobserved properties produce no event.
func translate(msg mpvMessage) (Event, bool) {
	if msg.Event != "property-change" || len(msg.Data) == 0 || string(msg.Data) == "null" {
		return Event{}, false
	}
	switch msg.ID {
	case observePosition:
		var pct float64
		if err := json.Unmarshal(msg.Data, &pct); err != nil {
			return Event{}, false
		}
		return Event{Kind: EventPosition, Position: pct / 100}, true
	case observeDuration:
		var d float64
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return Event{}, false
		}
		return Event{Kind: EventDuration, Duration: d}, true
	case observeEOF:
		var eof bool
		if err := json.Unmarshal(msg.Data, &eof); err != nil || !eof {
			return Event{}, false
		}
		return Event{Kind: EventEOF, EOF: true}, true
	case observePause:
		var paused bool
		if err := json.Unmarshal(msg.Data, &paused); err != nil {
			return Event{}, false
		}
		return Event{Kind: EventPause, Paused: paused}, true
	}
	return Event{}, false
}
