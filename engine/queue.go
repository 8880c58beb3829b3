package engine

import "sync/atomic"

// EventQueue is the headless stand-in for a window event loop. Producers on
// any goroutine push events; only the loop goroutine polls them.
type EventQueue struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewEventQueue creates a queue holding at most size pending events.
func NewEventQueue(size int) *EventQueue {
	return &EventQueue{ch: make(chan Event, size)}
}

// Push enqueues ev without blocking. A full queue drops the event so that
// producers never stall the loop.
func (q *EventQueue) Push(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// PollEvents hands the events pending at call time to fn in arrival order.
// Events pushed while polling wait for the next call.
func (q *EventQueue) PollEvents(fn func(Event)) {
	for n := len(q.ch); n > 0; n-- {
		select {
		case ev := <-q.ch:
			fn(ev)
		default:
			return
		}
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (q *EventQueue) Dropped() int64 { return q.dropped.Load() }
