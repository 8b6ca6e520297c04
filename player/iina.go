package player

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// IINA is an Element for the macOS IINA player. IINA has no IPC socket, so
// every SetSource relaunches it with the new URL.
type IINA struct {
	title     string
	cmd       *exec.Cmd
	exited    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
}

func NewIINA() *IINA {
	exited := make(chan struct{})
	close(exited)
	return &IINA{exited: exited, closed: make(chan struct{})}
}

func (i *IINA) ID() string { return "iina" }

func (i *IINA) Open(title string) error {
	if runtime.GOOS != "darwin" {
		return fmt.Errorf("IINA is only supported on macOS")
	}
	i.title = sanitizeTitle(title)
	return nil
}

func (i *IINA) SetSource(rawURL string) error {
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if err := i.ClearSource(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	cmd := exec.Command("open", "-W", "-n", "-a", "IINA", "--args", "--mpv-force-media-title="+i.title, safeURL)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("LaunchServices failed to invoke IINA: %w", err)
	}

	exited := make(chan struct{})
	i.cmd, i.exited = cmd, exited
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	return nil
}

func (i *IINA) ClearSource() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cmd == nil || i.cmd.Process == nil {
		return nil
	}

	select {
	case <-i.exited:
	default:
		_ = i.cmd.Process.Kill()
		<-i.exited
	}
	i.cmd = nil
	return nil
}

func (i *IINA) CanPlayType(mime string) bool { return canPlayType(mime) }

// OnMediaError is a no-op: IINA reports nothing back to its launcher.
func (i *IINA) OnMediaError(func(error)) {}

func (i *IINA) TogglePause() error { return fmt.Errorf("not supported on IINA") }

func (i *IINA) Position() (time.Duration, error) { return 0, fmt.Errorf("not supported on IINA") }

func (i *IINA) Duration() (time.Duration, error) { return 0, fmt.Errorf("not supported on IINA") }

// Wait is closed by Close. IINA windows come and go with each source.
func (i *IINA) Wait() <-chan struct{} {
	return i.closed
}

func (i *IINA) Close() error {
	err := i.ClearSource()
	i.closeOnce.Do(func() { close(i.closed) })
	return err
}
