// Package toolkit is a small tabbed widget toolkit. A Toolkit owns one
// window, a font and the textures its buttons render into. The caller
// drives it by calling Tick once per frame, or Run.
//
//	tk, err := toolkit.Initialize()
//	if err != nil {
//		log.Fatal(toolkit.Message(err))
//	}
//	defer tk.Close()
//	tk.AddTab("main")
//	if _, err := tk.AddButton("OK", 10, 10); err != nil {
//		log.Fatal(err)
//	}
//	if err := tk.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// A Toolkit is not safe for concurrent use.
package toolkit

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/elizafairlady/go-tabkit/backend"
	"github.com/elizafairlady/go-tabkit/config"
	"github.com/elizafairlady/go-tabkit/ttf"
)

// Toolkit is an initialized window with its tabs and top-level items.
type Toolkit struct {
	cfg  *config.Config
	sess session

	canvas   backend.Canvas
	pump     backend.EventPump
	font     *ttf.Font
	textures backend.TextureCreator

	bg      color.RGBA
	tabs    []*Tab
	tabPos  int
	items   []Drawable
	buttons []*Button
	run     bool
	closed  bool
}

// Initialize opens a toolkit with the default configuration on the
// default driver.
func Initialize() (*Toolkit, error) {
	return New(config.Default(), nil)
}

// New opens a toolkit. A nil cfg means config.Default(); a nil drv is
// looked up by cfg.Backend.Driver. If any step fails, everything acquired
// so far is released in reverse order and the mapped error is returned.
func New(cfg *config.Config, drv backend.Driver) (_ *Toolkit, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if drv == nil {
		drv, err = backend.Get(cfg.Backend.Driver)
		if err != nil {
			return nil, FromBackend(err)
		}
	}

	tk := &Toolkit{cfg: cfg, run: true}
	defer func() {
		if err != nil {
			tk.sess.release()
		}
	}()
	fail := func(step string, err error) error {
		slog.Debug("toolkit: init failed", "driver", drv.Name(), "step", step, "err", err)
		return FromBackend(err)
	}

	ctx, err := drv.Init()
	if err != nil {
		return nil, fail("context", err)
	}
	tk.sess.push("context", noErr(ctx.Quit))

	video, err := ctx.Video()
	if err != nil {
		return nil, fail("video", err)
	}
	tk.sess.push("video", noErr(video.Quit))

	win, err := video.CreateWindow(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return nil, fail("window", err)
	}
	tk.sess.push("window", noErr(win.Destroy))

	tk.canvas, err = win.Canvas(cfg.Window.VSync)
	if err != nil {
		return nil, fail("canvas", err)
	}
	tk.sess.push("canvas", noErr(tk.canvas.Destroy))

	tk.pump, err = ctx.EventPump()
	if err != nil {
		return nil, fail("event pump", err)
	}

	tk.bg = color.RGBA{0, 0, 0, cfg.Theme.BackgroundAlpha}

	fonts, err := ttf.Init()
	if err != nil {
		return nil, fail("text subsystem", err)
	}
	tk.sess.push("text subsystem", noErr(fonts.Quit))

	tk.font, err = fonts.LoadFont(cfg.Font.Path, cfg.Font.Size)
	if err != nil {
		return nil, fail("font", err)
	}
	tk.sess.push("font", tk.font.Close)

	tk.textures = tk.canvas.TextureCreator()

	tk.canvas.SetDrawColor(tk.bg)
	tk.canvas.Clear()
	if err := tk.canvas.Present(); err != nil {
		return nil, fail("present", err)
	}

	slog.Debug("toolkit: initialized", "driver", drv.Name(),
		"size", fmt.Sprintf("%dx%d", cfg.Window.Width, cfg.Window.Height), "font", tk.font.Name())
	return tk, nil
}

// Tick drains the pending input, runs one redraw pass and reports
// whether the toolkit is still running. A quit request or the Escape key
// stops it; the frame is still drawn. On error the returned flag is the
// run state after input handling.
func (tk *Toolkit) Tick() (bool, error) {
	if tk.closed {
		return false, backendError("toolkit is closed")
	}
	for _, ev := range tk.pump.Poll() {
		tk.handle(ev)
	}
	return tk.run, tk.redraw()
}

func (tk *Toolkit) handle(ev backend.Event) {
	switch ev.Kind {
	case backend.EventQuit:
		tk.stop(ev)
	case backend.EventKeyDown:
		if k, ok := ev.KeyOf(); ok && k.Code == backend.KeyEscape {
			tk.stop(ev)
		}
	}
}

func (tk *Toolkit) stop(ev backend.Event) {
	if tk.run {
		slog.Debug("toolkit: stopping", "event", ev)
	}
	tk.run = false
}

func (tk *Toolkit) redraw() error {
	tk.canvas.SetDrawColor(tk.bg)
	tk.canvas.Clear()
	for _, it := range tk.items {
		if err := it.Draw(); err != nil {
			return FromBackend(err)
		}
	}
	if tk.tabPos < len(tk.tabs) {
		if err := tk.tabs[tk.tabPos].Draw(); err != nil {
			return FromBackend(err)
		}
	}
	return FromBackend(tk.canvas.Present())
}

// AddTab appends an empty tab. Names need not be unique.
func (tk *Toolkit) AddTab(name string) {
	tk.tabs = append(tk.tabs, &Tab{name: name})
}

// AddItem appends a top-level drawable. Items are drawn before the
// active tab, in the order added.
func (tk *Toolkit) AddItem(d Drawable) {
	tk.items = append(tk.items, d)
}

// AddButton creates a button and appends it to the active tab.
func (tk *Toolkit) AddButton(name string, x, y int32) (*Button, error) {
	if tk.tabPos >= len(tk.tabs) {
		return nil, &Error{Kind: KindNoTabs}
	}
	b, err := NewButton(tk, name, x, y)
	if err != nil {
		return nil, err
	}
	t := tk.tabs[tk.tabPos]
	t.items = append(t.items, b)
	return b, nil
}

// SetAlpha sets the alpha of the black background used from the next
// redraw on.
func (tk *Toolkit) SetAlpha(alpha uint8) {
	tk.bg = color.RGBA{0, 0, 0, alpha}
}

// Background returns the current background color.
func (tk *Toolkit) Background() color.RGBA { return tk.bg }

// Tabs returns the tabs in creation order.
func (tk *Toolkit) Tabs() []*Tab { return append([]*Tab(nil), tk.tabs...) }

// ActiveTab returns the index of the tab that is drawn.
func (tk *Toolkit) ActiveTab() int { return tk.tabPos }

// Items returns the top-level drawables in draw order.
func (tk *Toolkit) Items() []Drawable { return append([]Drawable(nil), tk.items...) }

// Running reports whether no quit request has been seen.
func (tk *Toolkit) Running() bool { return tk.run }

func (tk *Toolkit) Config() *config.Config { return tk.cfg }

func (tk *Toolkit) renderText(text string) (backend.Texture, error) {
	if tk.closed {
		return nil, backendError("toolkit is closed")
	}
	surface, err := tk.font.Render(text).Blended(textColor)
	if err != nil {
		return nil, FromBackend(err)
	}
	tex, err := tk.textures.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, FromBackend(err)
	}
	return tex, nil
}

// Close destroys button textures and then releases the font, the text
// subsystem, the canvas, the window, video and the backend context, in
// that order. Calling Close again does nothing.
func (tk *Toolkit) Close() error {
	if tk.closed {
		return nil
	}
	tk.closed = true
	tk.run = false
	for _, b := range tk.buttons {
		b.release()
	}
	tk.buttons = nil
	return tk.sess.release()
}

func (tk *Toolkit) String() string {
	var b strings.Builder
	b.WriteString("Toolkit{tabs: [")
	for i, t := range tk.tabs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	fmt.Fprintf(&b, "], tabPos: %d, items: %d, run: %t, bg: %v}", tk.tabPos, len(tk.items), tk.run, tk.bg)
	return b.String()
}
