// Package input turns platform window events into the few signals the
// viewer reacts to: quit, escape and resize.
package input

// EventType identifies a processed window event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
)

// Key is a platform-neutral key code. Only keys the viewer reacts to are named.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyQ
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
}

// Source is a platform event queue. PollEvents appends every pending event
// to dst and returns it.
type Source interface {
	PollEvents(dst []Event) []Event
}

// Input handles per-frame input processing.
type Input struct {
	src     Source
	events  []Event
	width   int
	height  int
	resized bool
}

// New creates an input handler reading from src.
func New(src Source) *Input {
	return &Input{
		src:    src,
		events: make([]Event, 0, 16),
	}
}

// Update polls the source and converts its events for this frame.
// Returns true if the viewer should quit: a quit event or Escape.
func (i *Input) Update() bool {
	i.events = i.src.PollEvents(i.events[:0])
	i.resized = false

	quit := false
	for _, e := range i.events {
		switch e.Type {
		case EventQuit:
			quit = true
		case EventKeyDown:
			if e.Key == KeyEscape {
				quit = true
			}
		case EventWindowResize:
			// Only the last size of a burst matters.
			i.width, i.height = e.Width, e.Height
			i.resized = true
		}
	}
	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Resized returns the newest window size seen by the last Update.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(k Key) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == k {
			return true
		}
	}
	return false
}

// Queue is a Source fed by callbacks, for platforms that deliver events
// asynchronously to the poll call (GLFW) and for tests.
type Queue struct {
	pending []Event
}

// Push adds an event to be returned by the next PollEvents.
func (q *Queue) Push(e Event) {
	q.pending = append(q.pending, e)
}

// PollEvents drains the queue into dst.
func (q *Queue) PollEvents(dst []Event) []Event {
	dst = append(dst, q.pending...)
	q.pending = q.pending[:0]
	return dst
}
