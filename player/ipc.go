package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type ipcMessage struct {
	Event     string `json:"event"`
	Data      any    `json:"data"`
	Error     string `json:"error"`
	RequestID int64  `json:"request_id"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 2 * time.Second
)

var requestIDs atomic.Int64

// sendCommand runs one mpv JSON-IPC command, retrying transient connection failures.
func (m *MPV) sendCommand(command ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(m.socketPath, command)
		if err == nil {
			return result, nil
		}
		if _, ok := err.(*commandError); ok {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// commandError is an error reported by mpv itself. It is not retried.
type commandError struct {
	command string
	reason  string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.command, e.reason)
}

// doSendCommand sends command on a fresh connection and waits for the reply
// carrying the same request id. Event lines in between are skipped.
func doSendCommand(socketPath string, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	id := requestIDs.Add(1)
	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		var msg ipcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		if msg.Event != "" || msg.RequestID != id {
			continue
		}

		if msg.Error != "" && msg.Error != "success" {
			return nil, &commandError{command: fmt.Sprint(command[0]), reason: msg.Error}
		}
		return msg.Data, nil
	}
}
