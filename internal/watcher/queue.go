package watcher

import "sync"

// queue is an unbounded FIFO. push never blocks, so the fsnotify reader is
// never held up by a slow consumer.
type queue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
	notify chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

func (q *queue) push(ev Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.signal()
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// next pops the oldest event. When the queue is empty ok is false and closed
// tells whether more events can arrive.
func (q *queue) next() (ev Event, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		ev = q.items[0]
		q.items[0] = Event{}
		q.items = q.items[1:]
		return ev, true, false
	}
	return Event{}, false, q.closed
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
