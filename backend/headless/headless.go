// Package headless is a software graphics driver. The canvas is an
// in-memory RGBA framebuffer, input comes from a queue filled with Push,
// and any step can be made to fail with Fail. Presented frames can be
// written out as PNG files.
//
// A default instance is registered as "headless".
package headless

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/elizafairlady/go-tabkit/backend"
)

// Name is the registered driver name.
const Name = "headless"

// TextureFormat is the pixel format of every headless texture.
const TextureFormat = "RGBA32"

// Step names a driver operation that can be made to fail.
type Step string

const (
	StepInit      Step = "init"
	StepVideo     Step = "video"
	StepWindow    Step = "window"
	StepCanvas    Step = "canvas"
	StepEventPump Step = "event_pump"
	StepTexture   Step = "texture"
	StepPresent   Step = "present"
)

func init() {
	backend.Register(New())
}

// Driver is the headless driver. Its methods are safe for concurrent use.
type Driver struct {
	mu       sync.Mutex
	faults   map[Step]error
	queue    []backend.Event
	journal  []string
	frameDir string
	canvas   *Canvas
	textures int
}

// Option configures a Driver.
type Option func(*Driver)

// WithFrameDir makes every Present write the frame to dir as
// frame-NNNNN.png.
func WithFrameDir(dir string) Option {
	return func(d *Driver) { d.frameDir = dir }
}

// New returns a driver with an empty event queue and no faults.
func New(opts ...Option) *Driver {
	d := &Driver{faults: make(map[Step]error)}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Driver) Name() string { return Name }

// Fail makes step return err until Heal is called. err should be the
// error type the backend contract specifies for that step.
func (d *Driver) Fail(step Step, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[step] = err
}

// Heal clears the fault on step.
func (d *Driver) Heal(step Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.faults, step)
}

// Push queues events for the next Poll.
func (d *Driver) Push(evs ...backend.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, evs...)
}

// Journal returns the resource acquisitions and releases so far, in order.
func (d *Driver) Journal() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.journal...)
}

// Canvas returns the most recently created canvas, or nil.
func (d *Driver) Canvas() *Canvas {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canvas
}

// LiveTextures returns the number of textures not yet destroyed.
func (d *Driver) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.textures
}

func (d *Driver) fault(step Step) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.faults[step]
}

func (d *Driver) record(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = append(d.journal, fmt.Sprintf(format, args...))
}

func (d *Driver) Init() (backend.Context, error) {
	if err := d.fault(StepInit); err != nil {
		return nil, err
	}
	d.record("init context")
	return &driverContext{d: d}, nil
}

type driverContext struct {
	d *Driver
}

func (c *driverContext) Video() (backend.Video, error) {
	if err := c.d.fault(StepVideo); err != nil {
		return nil, err
	}
	c.d.record("start video")
	return &video{d: c.d}, nil
}

func (c *driverContext) EventPump() (backend.EventPump, error) {
	if err := c.d.fault(StepEventPump); err != nil {
		return nil, err
	}
	c.d.record("create event pump")
	return &pump{d: c.d}, nil
}

func (c *driverContext) Quit() { c.d.record("quit context") }

type video struct {
	d *Driver
}

func (v *video) CreateWindow(title string, width, height uint32) (backend.Window, error) {
	if err := backend.CheckWindow(title, width, height); err != nil {
		return nil, err
	}
	if err := v.d.fault(StepWindow); err != nil {
		return nil, err
	}
	v.d.record("create window %q %dx%d", title, width, height)
	return &window{d: v.d, title: title, r: image.Rect(0, 0, int(width), int(height))}, nil
}

func (v *video) Quit() { v.d.record("quit video") }

type window struct {
	d     *Driver
	title string
	r     image.Rectangle
}

func (w *window) Canvas(vsync bool) (backend.Canvas, error) {
	if err := w.d.fault(StepCanvas); err != nil {
		return nil, err
	}
	c := &Canvas{
		d:     w.d,
		fb:    image.NewRGBA(w.r),
		vsync: vsync,
	}
	w.d.mu.Lock()
	w.d.canvas = c
	w.d.journal = append(w.d.journal, "create canvas")
	w.d.mu.Unlock()
	return c, nil
}

func (w *window) Destroy() { w.d.record("destroy window") }

// Canvas is the headless framebuffer.
type Canvas struct {
	d      *Driver
	fb     *image.RGBA
	front  *image.RGBA
	color  color.RGBA
	vsync  bool
	clears []color.RGBA
	frames int
}

func (c *Canvas) SetDrawColor(col color.RGBA) { c.color = col }
func (c *Canvas) DrawColor() color.RGBA       { return c.color }
func (c *Canvas) VSync() bool                 { return c.vsync }

func (c *Canvas) Clear() {
	xdraw.Draw(c.fb, c.fb.Bounds(), image.NewUniform(c.color), image.Point{}, xdraw.Src)
	c.clears = append(c.clears, c.color)
}

func (c *Canvas) Present() error {
	if err := c.d.fault(StepPresent); err != nil {
		return err
	}
	c.front = clone(c.fb)
	c.frames++
	if c.d.frameDir == "" {
		return nil
	}
	name := filepath.Join(c.d.frameDir, fmt.Sprintf("frame-%05d.png", c.frames))
	if err := writePNG(name, c.front); err != nil {
		return backend.Errorf("headless: %v", err)
	}
	slog.Debug("headless: wrote frame", "path", name)
	return nil
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Canvas) TextureCreator() backend.TextureCreator {
	return &textureCreator{d: c.d}
}

func (c *Canvas) Destroy() { c.d.record("destroy canvas") }

// Clears returns the draw color used by every Clear so far.
func (c *Canvas) Clears() []color.RGBA {
	return append([]color.RGBA(nil), c.clears...)
}

// Frames returns the number of successful Presents.
func (c *Canvas) Frames() int { return c.frames }

// Front returns the last presented frame, or nil before the first Present.
func (c *Canvas) Front() *image.RGBA { return c.front }

func clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
	return dst
}

type textureCreator struct {
	d *Driver
}

func (tc *textureCreator) CreateTextureFromSurface(s *image.RGBA) (backend.Texture, error) {
	if err := tc.d.fault(StepTexture); err != nil {
		return nil, err
	}
	b := s.Bounds()
	if err := backend.CheckTextureSize(TextureFormat, uint64(b.Dx()), uint64(b.Dy())); err != nil {
		return nil, err
	}
	tc.d.mu.Lock()
	tc.d.textures++
	tc.d.mu.Unlock()
	return &texture{d: tc.d, img: clone(s)}, nil
}

type texture struct {
	d         *Driver
	img       *image.RGBA
	destroyed bool
}

func (t *texture) Query() backend.TextureQuery {
	b := t.img.Bounds()
	return backend.TextureQuery{Format: TextureFormat, Width: uint32(b.Dx()), Height: uint32(b.Dy())}
}

func (t *texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.d.mu.Lock()
	t.d.textures--
	t.d.journal = append(t.d.journal, "destroy texture")
	t.d.mu.Unlock()
}

type pump struct {
	d *Driver
}

func (p *pump) Poll() []backend.Event {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	evs := p.d.queue
	p.d.queue = nil
	return evs
}
