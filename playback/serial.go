package playback

import "sync"

type task struct {
	fn   func()
	done chan struct{}
}

// serial runs posted functions one at a time in posting order. The
// goroutine that finds the queue idle drains it; anyone posting while it
// drains only enqueues. A function posted from inside another one therefore
// runs after it, never nested inside it.
type serial struct {
	mu       sync.Mutex
	queue    []task
	draining bool
}

// do queues fn and drains if nobody else is. The returned channel is closed
// once fn has run.
func (s *serial) do(fn func()) <-chan struct{} {
	done := s.enqueue(fn)
	s.flush()
	return done
}

// enqueue queues fn without draining.
func (s *serial) enqueue(fn func()) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	s.queue = append(s.queue, task{fn: fn, done: done})
	s.mu.Unlock()

	return done
}

// flush drains the queue on the calling goroutine unless it is already
// being drained.
func (s *serial) flush() {
	s.mu.Lock()
	if s.draining || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
}

func (s *serial) drain() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue[0] = task{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		next.run()
	}
}

func (t task) run() {
	defer close(t.done)
	t.fn()
}
