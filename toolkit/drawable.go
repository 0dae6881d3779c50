package toolkit

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/elizafairlady/go-tabkit/backend"
)

// Drawable is anything the toolkit can draw during a redraw pass.
type Drawable interface {
	Draw() error
}

// ButtonKind selects how a button behaves. Only ButtonNormal exists.
type ButtonKind int

const ButtonNormal ButtonKind = iota

func (k ButtonKind) String() string {
	if k == ButtonNormal {
		return "Normal"
	}
	return fmt.Sprintf("ButtonKind(%d)", int(k))
}

var textColor = color.RGBA{255, 255, 255, 255}

// Button is a text label rendered once into a texture. The texture is
// owned by the toolkit that created the button and is released with it.
type Button struct {
	name string
	x, y int32
	w, h int32
	kind ButtonKind
	text backend.Texture
}

// NewButton renders name with the toolkit font and positions it at
// (x, y). Width and height come from the rendered texture.
func NewButton(tk *Toolkit, name string, x, y int32) (*Button, error) {
	tex, err := tk.renderText(name)
	if err != nil {
		return nil, err
	}
	q := tex.Query()
	b := &Button{
		name: name,
		x:    x,
		y:    y,
		w:    int32(q.Width),
		h:    int32(q.Height),
		kind: ButtonNormal,
		text: tex,
	}
	tk.buttons = append(tk.buttons, b)
	return b, nil
}

func (b *Button) Name() string     { return b.name }
func (b *Button) X() int32         { return b.x }
func (b *Button) Y() int32         { return b.y }
func (b *Button) W() int32         { return b.w }
func (b *Button) H() int32         { return b.h }
func (b *Button) Kind() ButtonKind { return b.kind }

// Draw emits a trace line. Blitting the label is left to a later
// layout pass; a button whose toolkit is closed fails.
func (b *Button) Draw() error {
	if b.text == nil {
		return backendError("button " + b.name + ": toolkit is closed")
	}
	slog.Debug("drawing button", "name", b.name)
	return nil
}

func (b *Button) String() string {
	return fmt.Sprintf("Button{name: %q, x: %d, y: %d, w: %d, h: %d, kind: %v}",
		b.name, b.x, b.y, b.w, b.h, b.kind)
}

func (b *Button) release() {
	if b.text != nil {
		b.text.Destroy()
		b.text = nil
	}
}

// Tab is a named group of buttons. Only the active tab is drawn.
type Tab struct {
	name    string
	items   []*Button
	itemPos int
}

func (t *Tab) Name() string { return t.name }

// Buttons returns the tab's buttons in draw order.
func (t *Tab) Buttons() []*Button {
	return append([]*Button(nil), t.items...)
}

// Draw draws every button in order and stops at the first failure.
func (t *Tab) Draw() error {
	for _, b := range t.items {
		if err := b.Draw(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tab) String() string {
	return fmt.Sprintf("Tab{name: %q, items: %d, itemPos: %d}", t.name, len(t.items), t.itemPos)
}
