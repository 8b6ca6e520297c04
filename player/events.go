package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/coursecast/coursecast/log"
)

// EventCallback receives mpv events. For property changes name is the
// property and data its value; for other events name is the event type and
// data the whole decoded event.
type EventCallback func(name string, data any)

// EventListener holds a persistent IPC connection and dispatches every
// event mpv writes to it.
type EventListener struct {
	socketPath string
	observe    []string
	conn       net.Conn
	callback   EventCallback
	done       chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a listener for socketPath. Properties passed in
// observe are subscribed on the listener's own connection.
func NewEventListener(socketPath string, callback EventCallback, observe ...string) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		observe:    observe,
		callback:   callback,
	}
}

// Start connects, subscribes and begins the read loop.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	// observe_property subscriptions live as long as the connection that made them
	for i, name := range el.observe {
		payload, _ := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.done = make(chan struct{})
	el.listening = true

	go el.readLoop(conn, el.done)

	log.Debugf("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	el.listening = false
	conn, done := el.conn, el.done
	el.mu.Unlock()

	_ = conn.Close()
	<-done
}

func (el *EventListener) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	for scanner.Scan() {
		el.processEvent(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}

	el.mu.Lock()
	el.listening = false
	el.mu.Unlock()
}

func (el *EventListener) processEvent(line []byte) {
	if el.callback == nil {
		return
	}

	var event map[string]any
	if err := json.Unmarshal(line, &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return
	}

	if eventType == "property-change" {
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
		return
	}

	el.callback(eventType, event)
}
