// Package ttf is the toolkit's font subsystem. It is started once per
// process with Init, loads TrueType/OpenType fonts at a point size, and
// renders single lines of text to anti-aliased RGBA surfaces.
package ttf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Builtin names the font compiled into the binary. LoadFont accepts it
// in place of a file path.
const Builtin = "builtin:goregular"

// dpi makes one point one pixel.
const dpi = 72

var live atomic.Bool

// InitErrorKind classifies an InitError.
type InitErrorKind int

const (
	InitAlreadyInitialized InitErrorKind = iota
	InitIO
)

// InitError is returned by Init. InitIO is reserved for rasterizer
// setup faults; the pure-Go rasterizer has none today.
type InitError struct {
	Kind InitErrorKind
	Err  error // InitIO only
}

func (e *InitError) Error() string {
	if e.Kind == InitAlreadyInitialized {
		return "ttf: already initialized"
	}
	return "ttf: initialization: " + e.Err.Error()
}

func (e *InitError) Unwrap() error { return e.Err }

// FontErrorKind classifies a FontError.
type FontErrorKind int

const (
	FontInvalidText FontErrorKind = iota
	FontBackend
)

// FontError is returned by font loading and rendering.
type FontError struct {
	Kind FontErrorKind
	Text string // FontInvalidText only
	Msg  string // FontBackend only
}

func (e *FontError) Error() string {
	if e.Kind == FontInvalidText {
		return fmt.Sprintf("ttf: invalid text %q", e.Text)
	}
	return e.Msg
}

func backendErr(format string, args ...any) *FontError {
	return &FontError{Kind: FontBackend, Msg: fmt.Sprintf(format, args...)}
}

// Context is the started font subsystem. Fonts loaded from it stop
// rendering once it is closed.
type Context struct {
	closed atomic.Bool
}

// Init starts the font subsystem. Only one Context may be live at a time.
func Init() (*Context, error) {
	if !live.CompareAndSwap(false, true) {
		return nil, &InitError{Kind: InitAlreadyInitialized}
	}
	return &Context{}, nil
}

// WasInit reports whether a Context is live.
func WasInit() bool {
	return live.Load()
}

// Quit stops the subsystem. Calling Quit more than once is harmless.
func (c *Context) Quit() {
	if c.closed.CompareAndSwap(false, true) {
		live.Store(false)
	}
}

// LoadFont reads the font file at path and opens it at the given
// point size. Failures are *FontError.
func (c *Context) LoadFont(path string, points int) (*Font, error) {
	if c.closed.Load() {
		return nil, backendErr("ttf: subsystem not initialized")
	}
	if path == Builtin {
		return c.LoadFontBytes(goregular.TTF, path, points)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			return nil, backendErr("ttf: couldn't open %s: %v", path, pe.Err)
		}
		return nil, backendErr("ttf: couldn't open %s: %v", path, err)
	}
	return c.LoadFontBytes(data, path, points)
}

// LoadFontBytes opens an in-memory font.
func (c *Context) LoadFontBytes(data []byte, name string, points int) (*Font, error) {
	if c.closed.Load() {
		return nil, backendErr("ttf: subsystem not initialized")
	}
	if points <= 0 {
		return nil, backendErr("ttf: %s: invalid point size %d", name, points)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, backendErr("ttf: %s: %v", name, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(points),
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, backendErr("ttf: %s: %v", name, err)
	}
	return &Font{ctx: c, face: face, name: name, points: points}, nil
}

// Font is a face opened at one point size.
type Font struct {
	ctx    *Context
	face   font.Face
	name   string
	points int
}

// Name returns the path or name the font was loaded from.
func (f *Font) Name() string { return f.name }

// Points returns the point size.
func (f *Font) Points() int { return f.points }

// Height returns the line height in pixels.
func (f *Font) Height() int {
	return f.face.Metrics().Height.Ceil()
}

// Close releases the face.
func (f *Font) Close() error {
	return f.face.Close()
}

// SizeOf returns the pixel size a rendering of text would have.
func (f *Font) SizeOf(text string) (w, h int, err error) {
	if err := f.check(text); err != nil {
		return 0, 0, err
	}
	return font.MeasureString(f.face, text).Ceil(), f.Height(), nil
}

func (f *Font) check(text string) error {
	if f.ctx.closed.Load() {
		return backendErr("ttf: subsystem not initialized")
	}
	if strings.IndexByte(text, 0) >= 0 || !utf8.ValidString(text) {
		return &FontError{Kind: FontInvalidText, Text: text}
	}
	return nil
}

// Render starts a rendering of text; finish it with Blended.
func (f *Font) Render(text string) PartialRendering {
	return PartialRendering{font: f, text: text}
}

// PartialRendering is text waiting for a render mode.
type PartialRendering struct {
	font *Font
	text string
}

// Blended renders anti-aliased text in c onto a transparent surface
// sized to the text. Empty text has no width and fails.
func (p PartialRendering) Blended(c color.Color) (*image.RGBA, error) {
	w, h, err := p.font.SizeOf(p.text)
	if err != nil {
		return nil, err
	}
	if w == 0 {
		return nil, backendErr("ttf: text has zero width")
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: p.font.face,
		Dot:  fixed.P(0, p.font.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(p.text)
	return dst, nil
}
