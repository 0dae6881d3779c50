package backend

import "fmt"

// EventKind identifies the shape of an input event.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventQuit              // application quit requested
	EventKeyDown
	EventKeyUp
	EventMouse
	EventResize
)

func (k EventKind) String() string {
	switch k {
	case EventQuit:
		return "quit"
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	case EventMouse:
		return "mouse"
	case EventResize:
		return "resize"
	}
	return "unknown"
}

// Event represents a raw input event from the driver.
type Event struct {
	Kind EventKind
	Data any // Key, Mouse or Resize, depending on Kind
}

func (e Event) String() string {
	if e.Data == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s %+v", e.Kind, e.Data)
}

// Keycode identifies a key independent of the text it produces.
// KeyNone means the driver could not name the key.
type Keycode int

const (
	KeyNone Keycode = iota
	KeyEscape
	KeyReturn
	KeyBackspace
	KeyTab
	KeyDelete
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyOther
)

// Key represents a decoded keyboard event.
type Key struct {
	Code Keycode
	Rune rune
}

// Mouse represents a decoded mouse event.
type Mouse struct {
	X       int
	Y       int
	Buttons int
	ScrollY int // +1 / -1 for wheel
}

// Resize represents a window resize event.
type Resize struct {
	Width  int
	Height int
}

// Quit returns a quit-requested event.
func Quit() Event {
	return Event{Kind: EventQuit}
}

// KeyDown returns a key-press event for code.
func KeyDown(code Keycode, r rune) Event {
	return Event{Kind: EventKeyDown, Data: Key{Code: code, Rune: r}}
}

// KeyOf returns the key carried by a key event.
func (e Event) KeyOf() (Key, bool) {
	k, ok := e.Data.(Key)
	return k, ok
}

// KeycodeForRune names the few keys that arrive as control runes.
func KeycodeForRune(r rune) Keycode {
	switch r {
	case 0x1b:
		return KeyEscape
	case '\n', '\r':
		return KeyReturn
	case '\b':
		return KeyBackspace
	case '\t':
		return KeyTab
	case 0x7f:
		return KeyDelete
	}
	if r >= 0x20 {
		return KeyOther
	}
	return KeyNone
}
