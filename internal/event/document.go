// Package event provides the document-level listener registry used by
// widgets that need to keep tracking a gesture after the pointer has left
// their own bounds.
package event

import "sync"

// Kind identifies the type of a pointer event.
type Kind int

const (
	// MouseMove is delivered for every frame in which the cursor moved.
	MouseMove Kind = iota
	// MouseUp is delivered when the left mouse button is released.
	MouseUp
	// TouchMove is delivered for every frame in which a touch point moved.
	TouchMove
	// TouchEnd is delivered when a touch point is lifted.
	TouchEnd
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case MouseMove:
		return "mousemove"
	case MouseUp:
		return "mouseup"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	default:
		return "unknown"
	}
}

// Source is the input device that started a gesture.
type Source int

const (
	SourceMouse Source = iota
	SourceTouch
)

// Event is a single pointer event in screen coordinates.
type Event struct {
	Kind Kind
	X, Y float64
	// TouchID is only meaningful for touch events.
	TouchID int
}

// Listener receives dispatched events.
type Listener func(Event)

// Handle identifies a registered listener.
type Handle uint64

type registration struct {
	handle Handle
	kind   Kind
	fn     Listener
}

// Document is a registry of listeners that receive every pointer event of
// the frame, wherever it happened on screen.
type Document struct {
	mu        sync.Mutex
	next      Handle
	listeners []registration
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Add registers fn for events of the given kind.
func (d *Document) Add(kind Kind, fn Listener) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.listeners = append(d.listeners, registration{handle: d.next, kind: kind, fn: fn})
	return d.next
}

// Remove unregisters a listener. It reports whether the handle was registered.
func (d *Document) Remove(h Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, r := range d.listeners {
		if r.handle == h {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch delivers ev to every listener registered for its kind and returns
// the number of listeners invoked. Listeners may add or remove listeners
// while being dispatched; a listener removed during dispatch is not called.
func (d *Document) Dispatch(ev Event) int {
	d.mu.Lock()
	snapshot := make([]registration, 0, len(d.listeners))
	for _, r := range d.listeners {
		if r.kind == ev.Kind {
			snapshot = append(snapshot, r)
		}
	}
	d.mu.Unlock()

	called := 0
	for _, r := range snapshot {
		if !d.registered(r.handle) {
			continue
		}
		r.fn(ev)
		called++
	}
	return called
}

func (d *Document) registered(h Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.listeners {
		if r.handle == h {
			return true
		}
	}
	return false
}

// Len returns the total number of registered listeners.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// Count returns the number of listeners registered for kind.
func (d *Document) Count(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.listeners {
		if r.kind == kind {
			n++
		}
	}
	return n
}
