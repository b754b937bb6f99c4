package caption

import "github.com/Elitezen/text-on-gif/frames"

// EventKind 区分进度事件类型。
type EventKind int

const (
	// EventDimensions fires once the animation size is known, possibly before
	// frames are ready.
	EventDimensions EventKind = iota
	// EventExtracted fires when extraction completed successfully.
	EventExtracted
	// EventFrame fires as frame Frame begins compositing.
	EventFrame
	// EventProgress fires after each committed frame with Percent in 0..100.
	EventProgress
	// EventFinished fires once a render produced its output.
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventDimensions:
		return "dimensions"
	case EventExtracted:
		return "extracted"
	case EventFrame:
		return "frame"
	case EventProgress:
		return "progress"
	case EventFinished:
		return "finished"
	}
	return "unknown"
}

// Event is delivered to listeners. Only the fields of its kind are set.
type Event struct {
	Kind       EventKind
	Dimensions frames.Dimensions
	Frame      int
	Percent    int
	Bytes      int
}

// Listener receives events synchronously, on the goroutine that produced them.
type Listener func(Event)

// Subscribe registers l and returns a function removing it again. Events that
// happened before the call are not replayed.
func (c *Caption) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Caption) emit(e Event) {
	c.mu.Lock()
	ls := make([]Listener, 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if l, ok := c.listeners[id]; ok {
			ls = append(ls, l)
		}
	}
	c.mu.Unlock()
	for _, l := range ls {
		l(e)
	}
}
