package session

import "sync"

// CompletionText is the display value carried by EventCompleted.
const CompletionText = "Reading Complete"

// EventKind identifies what a presentation should do with an Event.
type EventKind int

const (
	// EventWord asks the presentation to display Word.
	EventWord EventKind = iota + 1
	// EventCleared asks the presentation to clear the display.
	EventCleared
	// EventCompleted reports that the sequence has been read to the end.
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventWord:
		return "word"
	case EventCleared:
		return "cleared"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is a display notification. Index is the position of Word in the
// sequence (-1 for Cleared and Completed), Total the sequence length.
type Event struct {
	Kind  EventKind
	Word  string
	Index int
	Total int
}

// Listener receives session events in the order the session produced them,
// one at a time, from a goroutine owned by the session.
type Listener interface {
	HandleEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) HandleEvent(ev Event) { f(ev) }

// dispatcher delivers queued events to a listener on its own goroutine so the
// session never calls out while holding its lock.
type dispatcher struct {
	listener Listener

	mu     sync.Mutex
	queue  []Event
	closed bool

	wake chan struct{}
	done chan struct{}
}

func newDispatcher(l Listener) *dispatcher {
	d := &dispatcher{
		listener: l,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// push never blocks.
func (d *dispatcher) push(ev Event) {
	if d.listener == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.queue = append(d.queue, ev)
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	defer close(d.done)
	for range d.wake {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		d.mu.Unlock()

		for _, ev := range batch {
			d.listener.HandleEvent(ev)
		}
	}
}

// close delivers what is already queued, then stops the goroutine. It must
// not be called from the listener.
func (d *dispatcher) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.wake)
	}
	d.mu.Unlock()
	<-d.done
}
