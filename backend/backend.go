// Package backend defines the capability surface a graphics driver must
// provide to the toolkit: a context with a video subsystem, one window
// with a presentable canvas, a texture creator bound to that canvas, and
// a non-blocking event pump.
//
// Drivers report failures with the error types in errors.go. The toolkit
// maps each of them onto its own error kinds, so callers never see them.
//
// Drivers register themselves from an init function:
//
//	func init() { backend.Register(&Driver{}) }
package backend

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"
)

// Driver starts a backend context.
type Driver interface {
	// Name returns the driver identifier (e.g. "devdraw", "headless").
	Name() string

	// Init starts the backend context.
	Init() (Context, error)
}

// Context is a started backend.
type Context interface {
	// Video starts the video subsystem on this context.
	Video() (Video, error)

	// EventPump returns the event source bound to this context.
	// Drivers that need a window for input return an *Error until one exists.
	EventPump() (EventPump, error)

	// Quit stops the context. The context must not be used afterwards.
	Quit()
}

// Video creates windows.
type Video interface {
	// CreateWindow opens a window. Failures are *WindowBuildError.
	CreateWindow(title string, width, height uint32) (Window, error)
	Quit()
}

// Window is an open window.
type Window interface {
	// Canvas builds the presentable canvas for the window.
	// Failures are *IntegerOrBackendError.
	Canvas(vsync bool) (Canvas, error)
	Destroy()
}

// Canvas is the drawing surface bound to a window.
type Canvas interface {
	SetDrawColor(c color.RGBA)
	DrawColor() color.RGBA

	// Clear fills the whole canvas with the draw color.
	Clear()

	// Present makes everything drawn since the last Present visible.
	Present() error

	// TextureCreator returns the factory for textures usable on this canvas.
	TextureCreator() TextureCreator

	// VSync reports whether Present waits for the display refresh.
	VSync() bool

	Destroy()
}

// TextureCreator converts rendered pixel surfaces into textures.
type TextureCreator interface {
	// CreateTextureFromSurface uploads s. Failures are *TextureValueError.
	CreateTextureFromSurface(s *image.RGBA) (Texture, error)
}

// TextureQuery describes a texture.
type TextureQuery struct {
	Format string
	Width  uint32
	Height uint32
}

// Texture is image data owned by the driver.
type Texture interface {
	Query() TextureQuery
	Destroy()
}

// EventPump delivers input events.
type EventPump interface {
	// Poll returns the events queued at the time of the call, oldest
	// first. It never blocks; an empty queue yields nil.
	Poll() []Event
}

// Common registry errors.
var (
	// ErrNoDriver is returned when a requested driver is not registered.
	ErrNoDriver = errors.New("backend: driver not registered")
)

var (
	mu            sync.Mutex
	drivers       = map[string]Driver{}
	defaultDriver string
)

// Register makes a driver available by name. The first registered
// driver becomes the default until SetDefault is called.
// It panics if a driver with the same name is already registered.
func Register(d Driver) {
	mu.Lock()
	defer mu.Unlock()
	name := d.Name()
	if _, dup := drivers[name]; dup {
		panic("backend: Register called twice for driver " + name)
	}
	drivers[name] = d
	if defaultDriver == "" {
		defaultDriver = name
	}
}

// SetDefault selects the driver returned by Default.
func SetDefault(name string) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := drivers[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoDriver, name)
	}
	defaultDriver = name
	return nil
}

// Get returns the driver registered under name.
func Get(name string) (Driver, error) {
	mu.Lock()
	defer mu.Unlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDriver, name)
	}
	return d, nil
}

// Default returns the default driver, or ErrNoDriver if none is registered.
func Default() (Driver, error) {
	mu.Lock()
	name := defaultDriver
	mu.Unlock()
	if name == "" {
		return nil, ErrNoDriver
	}
	return Get(name)
}

// Drivers returns the sorted names of all registered drivers.
func Drivers() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
