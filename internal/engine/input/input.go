// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a translated input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int // motion since the last event, or wheel ticks
	DeltaY int
	Button uint8
}

// Input translates SDL events and tracks held mouse buttons.
type Input struct {
	events  []Event
	buttons map[uint8]bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		buttons: make(map[uint8]bool),
	}
}

// Update polls SDL events and converts them.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := translate(event); ok {
			i.push(ev)
			if ev.Type == EventQuit {
				return true
			}
		}
	}

	return false
}

// push records ev and updates button state.
func (i *Input) push(ev Event) {
	switch ev.Type {
	case EventMouseDown:
		i.buttons[ev.Button] = true
	case EventMouseUp:
		delete(i.buttons, ev.Button)
	}
	i.events = append(i.events, ev)
}

func translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		}

	case *sdl.KeyboardEvent:
		ev := Event{Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}
		switch e.Type {
		case sdl.KEYDOWN:
			ev.Type = EventKeyDown
		case sdl.KEYUP:
			ev.Type = EventKeyUp
		default:
			return Event{}, false
		}
		return ev, true

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			DeltaX: int(e.XRel),
			DeltaY: int(e.YRel),
		}, true

	case *sdl.MouseButtonEvent:
		ev := Event{MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}
		switch e.Type {
		case sdl.MOUSEBUTTONDOWN:
			ev.Type = EventMouseDown
		case sdl.MOUSEBUTTONUP:
			ev.Type = EventMouseUp
		default:
			return Event{}, false
		}
		return ev, true

	case *sdl.MouseWheelEvent:
		dy := int(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		return Event{Type: EventMouseWheel, DeltaX: int(e.X), DeltaY: dy}, true
	}

	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key went down this frame, including
// auto-repeat.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsButtonHeld reports whether a mouse button is currently down.
func (i *Input) IsButtonHeld(button uint8) bool {
	return i.buttons[button]
}

// WheelDelta sums vertical wheel ticks from the last Update.
func (i *Input) WheelDelta() int {
	total := 0
	for _, e := range i.events {
		if e.Type == EventMouseWheel {
			total += e.DeltaY
		}
	}
	return total
}

// DragDelta sums mouse motion from the last Update while button is held.
func (i *Input) DragDelta(button uint8) (dx, dy int) {
	if !i.buttons[button] {
		return 0, 0
	}
	for _, e := range i.events {
		if e.Type == EventMouseMove {
			dx += e.DeltaX
			dy += e.DeltaY
		}
	}
	return dx, dy
}
