// Package devdraw is a graphics driver for Plan 9 devdraw, reached
// through 9fans.net/go/draw (plan9port's devdraw on Unix, /dev/draw on
// Plan 9). The display connection is the window; keyboard and mouse are
// read by the draw package's own goroutines and drained by Poll.
//
// Registered as "devdraw".
package devdraw

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"9fans.net/go/draw"

	"github.com/elizafairlady/go-tabkit/backend"
)

// Name is the registered driver name.
const Name = "devdraw"

// TextureFormat is the devdraw channel descriptor of uploaded textures.
// a8b8g8r8 stores bytes in image.RGBA order.
const TextureFormat = "ABGR32"

// refNone asks devdraw not to keep a backing store when reattaching.
const refNone = 1

// Runes the Plan 9 keyboard sends for special keys.
const (
	keyDel   = 0x7f // interrupt; treated as a quit request
	keyFn    = 0xF000
	keyUp    = keyFn | 0x0E
	keyLeft  = keyFn | 0x11
	keyRight = keyFn | 0x12
	keyDown  = 0x80
)

func init() {
	backend.Register(&Driver{})
}

// Driver is the devdraw driver.
type Driver struct{}

func (*Driver) Name() string { return Name }

func (*Driver) Init() (backend.Context, error) {
	return &drawContext{}, nil
}

// drawContext owns the one display connection.
type drawContext struct {
	mu      sync.Mutex
	display *draw.Display
	errc    chan error
}

func (c *drawContext) Video() (backend.Video, error) {
	return &video{c: c}, nil
}

func (c *drawContext) EventPump() (backend.EventPump, error) {
	c.mu.Lock()
	d := c.display
	c.mu.Unlock()
	if d == nil {
		return nil, backend.Errorf("devdraw: no window to read input from")
	}
	return &pump{
		d:    d,
		errc: c.errc,
		mc:   d.InitMouse(),
		kc:   d.InitKeyboard(),
	}, nil
}

func (c *drawContext) Quit() {}

type video struct {
	c *drawContext
}

func (v *video) CreateWindow(title string, width, height uint32) (backend.Window, error) {
	if err := backend.CheckWindow(title, width, height); err != nil {
		return nil, err
	}
	v.c.mu.Lock()
	defer v.c.mu.Unlock()
	if v.c.display != nil {
		return nil, &backend.WindowBuildError{Kind: backend.WindowBackend, Msg: "devdraw: only one window per context"}
	}
	errc := make(chan error, 4)
	d, err := draw.Init(errc, "", title, fmt.Sprintf("%dx%d", width, height))
	if err != nil {
		return nil, &backend.WindowBuildError{Kind: backend.WindowBackend, Msg: fmt.Sprintf("devdraw: init display: %v", err)}
	}
	v.c.display = d
	v.c.errc = errc
	return &window{c: v.c, d: d}, nil
}

func (v *video) Quit() {}

type window struct {
	c *drawContext
	d *draw.Display
}

func (w *window) Canvas(vsync bool) (backend.Canvas, error) {
	if w.d.ScreenImage == nil {
		return nil, backend.Failed(backend.Errorf("devdraw: display has no screen image"))
	}
	return &canvas{d: w.d}, nil
}

func (w *window) Destroy() {
	w.c.mu.Lock()
	w.c.display = nil
	w.c.mu.Unlock()
	if err := w.d.Close(); err != nil {
		slog.Debug("devdraw: close display", "err", err)
	}
}

// canvas draws straight onto the screen image; devdraw double-buffers
// until Flush.
type canvas struct {
	d     *draw.Display
	col   color.RGBA
	brush *draw.Image // 1x1 replicated image of col
	err   error       // first error since the last Present
}

func (c *canvas) SetDrawColor(col color.RGBA) {
	if c.brush != nil && col == c.col {
		return
	}
	c.col = col
	if c.brush != nil {
		c.brush.Free()
		c.brush = nil
	}
	brush, err := c.d.AllocImage(image.Rect(0, 0, 1, 1), draw.RGBA32, true, rgba(col))
	if err != nil {
		c.fail(backend.Errorf("devdraw: alloc color: %v", err))
		return
	}
	c.brush = brush
}

// rgba packs a premultiplied color the way devdraw expects: 0xRRGGBBAA.
func rgba(c color.RGBA) draw.Color {
	return draw.Color(uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A))
}

func (c *canvas) DrawColor() color.RGBA { return c.col }

// VSync is always false: devdraw has no refresh synchronization, so
// the toolkit paces frames itself.
func (c *canvas) VSync() bool { return false }

func (c *canvas) Clear() {
	if c.brush == nil {
		c.SetDrawColor(c.col)
		if c.brush == nil {
			return
		}
	}
	screen := c.d.ScreenImage
	screen.Draw(screen.R, c.brush, nil, image.Point{})
}

func (c *canvas) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *canvas) Present() error {
	err := c.err
	c.err = nil
	if ferr := c.d.Flush(); ferr != nil && err == nil {
		err = backend.Errorf("devdraw: flush: %v", ferr)
	}
	return err
}

func (c *canvas) TextureCreator() backend.TextureCreator {
	return &textureCreator{d: c.d}
}

func (c *canvas) Destroy() {
	if c.brush != nil {
		c.brush.Free()
		c.brush = nil
	}
}

type textureCreator struct {
	d *draw.Display
}

func (tc *textureCreator) CreateTextureFromSurface(s *image.RGBA) (backend.Texture, error) {
	b := s.Bounds()
	if err := backend.CheckTextureSize(TextureFormat, uint64(b.Dx()), uint64(b.Dy())); err != nil {
		return nil, err
	}
	r := image.Rect(0, 0, b.Dx(), b.Dy())
	img, err := tc.d.AllocImage(r, draw.ABGR32, false, draw.Transparent)
	if err != nil {
		return nil, &backend.TextureValueError{Kind: backend.TextureBackend, Msg: fmt.Sprintf("devdraw: alloc texture: %v", err)}
	}
	if _, err := img.Load(r, packed(s)); err != nil {
		img.Free()
		return nil, &backend.TextureValueError{Kind: backend.TextureBackend, Msg: fmt.Sprintf("devdraw: load texture: %v", err)}
	}
	return &texture{img: img, w: uint32(r.Dx()), h: uint32(r.Dy())}, nil
}

// packed returns the pixels of s with no padding between rows.
func packed(s *image.RGBA) []byte {
	b := s.Bounds()
	row := 4 * b.Dx()
	if s.Stride == row && s.Rect.Min == (image.Point{}) {
		return s.Pix[:row*b.Dy()]
	}
	buf := make([]byte, 0, row*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := s.PixOffset(b.Min.X, y)
		buf = append(buf, s.Pix[i:i+row]...)
	}
	return buf
}

type texture struct {
	img  *draw.Image
	w, h uint32
}

func (t *texture) Query() backend.TextureQuery {
	return backend.TextureQuery{Format: TextureFormat, Width: t.w, Height: t.h}
}

func (t *texture) Destroy() {
	if t.img == nil {
		return
	}
	t.img.Free()
	t.img = nil
}

type pump struct {
	d    *draw.Display
	errc <-chan error
	mc   *draw.Mousectl
	kc   *draw.Keyboardctl
}

// Poll takes only what each channel held when Poll began, so a
// steady stream of input cannot keep it draining.
func (p *pump) Poll() []backend.Event {
	var evs []backend.Event
	for n := len(p.errc); n > 0; n-- {
		err := <-p.errc
		slog.Debug("devdraw: display error", "err", err)
		evs = append(evs, backend.Quit())
	}
	for n := len(p.mc.Resize); n > 0; n-- {
		<-p.mc.Resize
		if err := p.d.Attach(refNone); err != nil {
			slog.Warn("devdraw: reattach", "err", err)
			continue
		}
		r := p.d.ScreenImage.R
		evs = append(evs, backend.Event{Kind: backend.EventResize, Data: backend.Resize{Width: r.Dx(), Height: r.Dy()}})
	}
	for n := len(p.mc.C); n > 0; n-- {
		m := <-p.mc.C
		bm := backend.Mouse{X: m.X, Y: m.Y, Buttons: m.Buttons}
		// Buttons 4 and 5 are the scroll wheel.
		if m.Buttons&8 != 0 {
			bm.ScrollY = -1
		} else if m.Buttons&16 != 0 {
			bm.ScrollY = 1
		}
		evs = append(evs, backend.Event{Kind: backend.EventMouse, Data: bm})
	}
	for n := len(p.kc.C); n > 0; n-- {
		evs = append(evs, keyEvent(<-p.kc.C))
	}
	return evs
}

// keyEvent translates a rune from the keyboard channel.
func keyEvent(r rune) backend.Event {
	switch r {
	case keyDel:
		return backend.Quit()
	case keyUp:
		return backend.KeyDown(backend.KeyArrowUp, r)
	case keyDown:
		return backend.KeyDown(backend.KeyArrowDown, r)
	case keyLeft:
		return backend.KeyDown(backend.KeyArrowLeft, r)
	case keyRight:
		return backend.KeyDown(backend.KeyArrowRight, r)
	}
	return backend.KeyDown(backend.KeycodeForRune(r), r)
}
