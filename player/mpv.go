package player

import (
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// MPV is an Element backed by an mpv process driven over JSON-IPC.
type MPV struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	listener   *EventListener
	onError    func(error)
	mu         sync.Mutex
	handlerMu  sync.Mutex
}

// NewMPV returns an MPV element that has not been started yet.
func NewMPV() *MPV {
	exited := make(chan struct{})
	close(exited)
	return &MPV{exited: exited}
}

func (m *MPV) ID() string {
	if m.socketPath == "" {
		return "mpv"
	}
	return "mpv:" + filepath.Base(m.socketPath)
}

// Open starts mpv idle with a window and an IPC socket, then attaches the
// event listener that reports load failures.
func (m *MPV) Open(title string) error {
	if m.IsRunning() {
		return nil
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes))

	safeTitle := sanitizeTitle(title)

	// user mpv.conf stays in charge of --vo, --hwdec and profiles
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + m.socketPath,
		"--force-media-title=" + safeTitle,
		"--title=" + safeTitle,
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
	}

	m.cmd = exec.Command("mpv", args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	m.exited = exited
	go func() {
		_ = m.cmd.Wait()
		close(exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, m.handleEvent)
	if err := m.listener.Start(); err != nil {
		log.Warnf("mpv event listener: %v", err)
	}

	return nil
}

func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// OnMediaError registers fn for end-file events that ended in an error.
func (m *MPV) OnMediaError(fn func(error)) {
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	m.onError = fn
}

func (m *MPV) handleEvent(name string, data any) {
	if name != "end-file" {
		return
	}

	err := endFileError(data)
	if err == nil {
		return
	}

	m.handlerMu.Lock()
	fn := m.onError
	m.handlerMu.Unlock()

	log.Warnf("%s: %v", m.ID(), err)
	if fn != nil {
		fn(err)
	}
}

// endFileError extracts a MediaError from an end-file event. Stops and
// replacements caused by loadfile or stop are not errors.
func endFileError(data any) error {
	event, ok := data.(map[string]any)
	if !ok {
		return nil
	}

	if reason, _ := event["reason"].(string); reason != "error" {
		return nil
	}

	detail, _ := event["file_error"].(string)
	return &MediaError{Reason: "error", Detail: detail}
}

// SetSource replaces the loaded file with url.
func (m *MPV) SetSource(rawURL string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	_, err = m.sendCommand("loadfile", safeURL, "replace")
	return err
}

// ClearSource stops playback and unloads the file, leaving the window open.
func (m *MPV) ClearSource() error {
	if !m.IsRunning() {
		return nil
	}
	_, err := m.sendCommand("stop")
	return err
}

func (m *MPV) CanPlayType(mime string) bool {
	return canPlayType(mime)
}

// SetBuffering maps engine buffer limits onto mpv's demuxer cache. mpv
// bounds the back buffer in bytes, so the byte budget is split by the
// ratio of the two windows.
func (m *MPV) SetBuffering(b Buffering) error {
	props := map[string]any{
		"cache":                  "yes",
		"demuxer-readahead-secs": b.Forward.Seconds(),
	}

	if b.MaxBytes > 0 {
		back := int64(0)
		if total := b.Back + b.Forward; total > 0 {
			back = int64(float64(b.MaxBytes) * float64(b.Back) / float64(total))
		}
		props["demuxer-max-bytes"] = b.MaxBytes - back
		props["demuxer-max-back-bytes"] = back
	}

	for name, value := range props {
		if err := m.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Size reports the OSD size, which tracks the window's video area.
func (m *MPV) Size() (int, int, error) {
	width, err := m.getFloatProperty("osd-width")
	if err != nil {
		return 0, 0, err
	}
	height, err := m.getFloatProperty("osd-height")
	if err != nil {
		return 0, 0, err
	}
	return int(width), int(height), nil
}

func (m *MPV) Position() (time.Duration, error) {
	return m.getDurationProperty("time-pos")
}

func (m *MPV) Duration() (time.Duration, error) {
	return m.getDurationProperty("duration")
}

func (m *MPV) TogglePause() error {
	_, err := m.sendCommand("cycle", "pause")
	return err
}

// Set writes an mpv property.
func (m *MPV) Set(property string, value any) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// IsRunning reports whether the mpv process is alive.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// Close quits mpv, killing it if it doesn't exit within three seconds.
func (m *MPV) Close() error {
	if m.listener != nil {
		m.listener.Stop()
	}

	if m.socketPath == "" {
		return nil
	}

	if m.IsRunning() {
		_, _ = m.sendCommand("quit")

		select {
		case <-m.exited:
		case <-time.After(3 * time.Second):
			_ = killProcess(m.cmd)
		}
	}

	_ = os.Remove(m.socketPath)
	return nil
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected number, got %T", name, data)
	}
	return val, nil
}

func (m *MPV) getDurationProperty(name string) (time.Duration, error) {
	seconds, err := m.getFloatProperty(name)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// sanitizeMediaTarget keeps untrusted provider URLs from being read as mpv flags.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-'")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
