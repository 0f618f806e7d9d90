package engine

import (
	"sync"

	"github.com/roach88/devlink/internal/clientdata"
	"github.com/roach88/devlink/internal/protocol"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeBatch carries a decoded message batch for AddData.
	EventTypeBatch EventType = iota + 1
	// EventTypeMode switches logging-only mode.
	EventTypeMode
	// EventTypeCall runs a function against the ClientData.
	EventTypeCall
)

// String returns the event type name for logs.
func (t EventType) String() string {
	switch t {
	case EventTypeBatch:
		return "batch"
	case EventTypeMode:
		return "mode"
	case EventTypeCall:
		return "call"
	default:
		return "unknown"
	}
}

// Event is one unit of work for the Run loop.
type Event struct {
	Type    EventType
	Batch   []protocol.Msg
	LogOnly bool

	call func(*clientdata.ClientData)
	done chan error // buffered, size 1
}

// eventQueue is a thread-safe unbounded FIFO queue for events.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking: the buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front event without blocking.
// Returns (Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Clear the slot so the batch can be collected
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed once the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued.
// Wakes any waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
