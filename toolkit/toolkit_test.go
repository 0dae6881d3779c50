package toolkit

import (
	"bytes"
	"image/color"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-tabkit/backend"
	"github.com/elizafairlady/go-tabkit/backend/headless"
	"github.com/elizafairlady/go-tabkit/config"
	"github.com/elizafairlady/go-tabkit/logx"
	"github.com/elizafairlady/go-tabkit/ttf"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Font.Path = ttf.Builtin
	cfg.Backend.Driver = headless.Name
	return cfg
}

func open(t *testing.T) (*Toolkit, *headless.Driver) {
	t.Helper()
	drv := headless.New()
	tk, err := New(testConfig(), drv)
	require.NoError(t, err)
	t.Cleanup(func() { tk.Close() })
	return tk, drv
}

// recorder is a drawable that records its calls.
type recorder struct {
	name  string
	err   error
	calls *[]string
}

func (p *recorder) Draw() error {
	*p.calls = append(*p.calls, p.name)
	return p.err
}

const window = `create window "tabkit window" 480x320`

func TestInitialState(t *testing.T) {
	tk, drv := open(t)

	assert.Empty(t, tk.Tabs())
	assert.Empty(t, tk.Items())
	assert.True(t, tk.Running())
	assert.Equal(t, 0, tk.ActiveTab())
	assert.Equal(t, color.RGBA{0, 0, 0, 100}, tk.Background())
	assert.True(t, ttf.WasInit())

	c := drv.Canvas()
	require.NotNil(t, c)
	assert.Equal(t, 1, c.Frames())
	assert.Equal(t, []color.RGBA{{0, 0, 0, 100}}, c.Clears())
	assert.Equal(t, []string{
		"init context", "start video", window, "create canvas", "create event pump",
	}, drv.Journal())
}

func TestTickKeepsRunning(t *testing.T) {
	tk, drv := open(t)

	running, err := tk.Tick()
	require.NoError(t, err)
	assert.True(t, running)

	drv.Push(
		backend.Event{Kind: backend.EventMouse, Data: backend.Mouse{X: 3, Y: 4, Buttons: 1}},
		backend.Event{Kind: backend.EventKeyUp, Data: backend.Key{Code: backend.KeyEscape}},
		backend.Event{Kind: backend.EventResize, Data: backend.Resize{Width: 10, Height: 10}},
		backend.KeyDown(backend.KeyOther, 'q'),
		backend.KeyDown(backend.KeyNone, 0),
		backend.Event{Kind: backend.EventUnknown},
	)
	running, err = tk.Tick()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, 3, drv.Canvas().Frames())
}

func TestTickStops(t *testing.T) {
	other := backend.KeyDown(backend.KeyReturn, '\n')
	tests := []struct {
		name   string
		events []backend.Event
	}{
		{"quit first", []backend.Event{backend.Quit(), other}},
		{"quit middle", []backend.Event{other, backend.Quit(), other}},
		{"quit last", []backend.Event{other, other, backend.Quit()}},
		{"escape first", []backend.Event{backend.KeyDown(backend.KeyEscape, 0x1b), other}},
		{"escape last", []backend.Event{other, backend.KeyDown(backend.KeyEscape, 0x1b)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, drv := open(t)
			drv.Push(tt.events...)
			running, err := tk.Tick()
			require.NoError(t, err)
			assert.False(t, running)
			assert.False(t, tk.Running())
			// the stopping tick still draws a frame
			assert.Equal(t, 2, drv.Canvas().Frames())

			running, err = tk.Tick()
			require.NoError(t, err)
			assert.False(t, running)
		})
	}
}

func TestSetAlpha(t *testing.T) {
	tk, drv := open(t)

	tk.SetAlpha(10)
	tk.SetAlpha(200)
	_, err := tk.Tick()
	require.NoError(t, err)

	clears := drv.Canvas().Clears()
	assert.Equal(t, color.RGBA{0, 0, 0, 200}, clears[len(clears)-1])
	assert.Equal(t, color.RGBA{0, 0, 0, 200}, tk.Background())

	tk.SetAlpha(0)
	_, err = tk.Tick()
	require.NoError(t, err)
	clears = drv.Canvas().Clears()
	assert.Equal(t, color.RGBA{0, 0, 0, 0}, clears[len(clears)-1])
}

func TestAddTab(t *testing.T) {
	tk, _ := open(t)

	tk.AddTab("X")
	tk.AddTab("Y")
	tk.AddTab("X")

	tabs := tk.Tabs()
	require.Len(t, tabs, 3)
	assert.Equal(t, "X", tabs[0].Name())
	assert.Equal(t, "Y", tabs[1].Name())
	assert.Equal(t, "X", tabs[tk.ActiveTab()].Name())
}

func TestEmptyRedraw(t *testing.T) {
	tk, drv := open(t)

	_, err := tk.Tick()
	require.NoError(t, err)
	assert.Equal(t, 2, drv.Canvas().Frames())
	assert.Len(t, drv.Canvas().Clears(), 2)
}

func TestRedrawAbortsOnFirstFailure(t *testing.T) {
	tk, drv := open(t)

	var calls []string
	broken := &recorder{name: "b", err: backend.Errorf("b broke"), calls: &calls}
	tk.AddItem(&recorder{name: "a", calls: &calls})
	tk.AddItem(broken)
	tk.AddItem(&recorder{name: "c", calls: &calls})

	running, err := tk.Tick()
	assert.True(t, running)
	assert.Equal(t, &Error{Kind: KindBackend, Msg: "b broke"}, err)
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Equal(t, 1, drv.Canvas().Frames(), "failed frame is not presented")

	// the next tick starts from a clean frame
	broken.err = nil
	calls = nil
	_, err = tk.Tick()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, calls)
	assert.Equal(t, 2, drv.Canvas().Frames())
}

func TestRedrawPassesToolkitErrors(t *testing.T) {
	tk, _ := open(t)

	var calls []string
	tk.AddItem(&recorder{name: "a", err: &Error{Kind: KindInvalidText}, calls: &calls})
	_, err := tk.Tick()
	assert.ErrorIs(t, err, ErrInvalidText)
}

func TestPresentFailure(t *testing.T) {
	tk, drv := open(t)

	drv.Fail(headless.StepPresent, backend.Errorf("flush failed"))
	_, err := tk.Tick()
	assert.Equal(t, &Error{Kind: KindBackend, Msg: "flush failed"}, err)

	drv.Heal(headless.StepPresent)
	_, err = tk.Tick()
	require.NoError(t, err)
}

func TestInitFailureReleasesInReverse(t *testing.T) {
	tests := []struct {
		step    headless.Step
		err     error
		want    *Error
		journal []string
	}{
		{
			headless.StepInit, backend.Errorf("no display"),
			&Error{Kind: KindBackend, Msg: "no display"},
			nil,
		},
		{
			headless.StepVideo, backend.Errorf("no video"),
			&Error{Kind: KindBackend, Msg: "no video"},
			[]string{"init context", "quit context"},
		},
		{
			headless.StepWindow, &backend.WindowBuildError{Kind: backend.WindowBackend, Msg: "no screen"},
			&Error{Kind: KindBackend, Msg: "no screen"},
			[]string{"init context", "start video", "quit video", "quit context"},
		},
		{
			headless.StepCanvas, backend.Failed(backend.Errorf("no renderer")),
			&Error{Kind: KindBackend, Msg: "no renderer"},
			[]string{"init context", "start video", window, "destroy window", "quit video", "quit context"},
		},
		{
			headless.StepEventPump, backend.Errorf("no input"),
			&Error{Kind: KindBackend, Msg: "no input"},
			[]string{"init context", "start video", window, "create canvas",
				"destroy canvas", "destroy window", "quit video", "quit context"},
		},
		{
			headless.StepPresent, backend.Errorf("flush failed"),
			&Error{Kind: KindBackend, Msg: "flush failed"},
			[]string{"init context", "start video", window, "create canvas", "create event pump",
				"destroy canvas", "destroy window", "quit video", "quit context"},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			drv := headless.New()
			drv.Fail(tt.step, tt.err)

			tk, err := New(testConfig(), drv)
			assert.Nil(t, tk)
			assert.Equal(t, tt.want, err)
			assert.Equal(t, tt.journal, drv.Journal())
			assert.False(t, ttf.WasInit(), "text subsystem must be startable again")
		})
	}
}

func TestInitFontFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Font.Path = filepath.Join(t.TempDir(), "missing.ttf")
	drv := headless.New()

	_, err := New(cfg, drv)
	assert.ErrorIs(t, err, ErrBackend)
	assert.False(t, ttf.WasInit())
	journal := drv.Journal()
	assert.Equal(t, "quit context", journal[len(journal)-1])
}

func TestInitTextAlreadyInitialized(t *testing.T) {
	fonts, err := ttf.Init()
	require.NoError(t, err)
	defer fonts.Quit()

	drv := headless.New()
	_, err = New(testConfig(), drv)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, "text subsystem already initialized", Message(err))
	assert.Equal(t, "quit context", drv.Journal()[len(drv.Journal())-1])
}

func TestInitWindowTooWide(t *testing.T) {
	cfg := testConfig()
	cfg.Window.Width = 1 << 31

	_, err := New(cfg, headless.New())
	assert.Equal(t, "backend error: window width (2147483648) must be less than or equal to 2147483647", Message(err))
}

func TestNewUsesRegisteredDriver(t *testing.T) {
	tk, err := New(testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, tk.Close())

	cfg := testConfig()
	cfg.Backend.Driver = "nonesuch"
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, ErrBackend)
}

func TestAddButtonNoTabs(t *testing.T) {
	tk, drv := open(t)

	b, err := tk.AddButton("OK", 0, 0)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrNoTabs)
	assert.Equal(t, "no tabs have been created", err.Error())
	assert.Zero(t, drv.LiveTextures())
}

func TestAddButtonDrawnByRedraw(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(logx.NewHandler(&buf, slog.LevelDebug)))
	defer slog.SetDefault(prev)

	tk, drv := open(t)
	tk.AddTab("main")
	b, err := tk.AddButton("OK", 10, 20)
	require.NoError(t, err)

	assert.Equal(t, "OK", b.Name())
	assert.Equal(t, int32(10), b.X())
	assert.Equal(t, int32(20), b.Y())
	assert.Positive(t, b.W())
	assert.Positive(t, b.H())
	assert.Equal(t, ButtonNormal, b.Kind())
	assert.Equal(t, []*Button{b}, tk.Tabs()[0].Buttons())
	assert.Equal(t, 1, drv.LiveTextures())

	_, err = tk.Tick()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "drawing button name=OK\n")
}

func TestNewButtonErrors(t *testing.T) {
	tk, drv := open(t)

	_, err := NewButton(tk, "a\x00b", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidText)

	_, err = NewButton(tk, "", 0, 0)
	assert.ErrorIs(t, err, ErrBackend)

	drv.Fail(headless.StepTexture, &backend.TextureValueError{Kind: backend.TextureWidthNotEven, Format: "YUY2"})
	_, err = NewButton(tk, "odd", 0, 0)
	assert.ErrorIs(t, err, ErrDimensionNotEven)

	drv.Fail(headless.StepTexture, &backend.TextureValueError{Kind: backend.TextureBackend, Msg: "out of memory"})
	_, err = NewButton(tk, "oom", 0, 0)
	assert.Equal(t, &Error{Kind: KindBackend, Msg: "out of memory"}, err)

	assert.Zero(t, drv.LiveTextures())
}

func TestClose(t *testing.T) {
	drv := headless.New()
	tk, err := New(testConfig(), drv)
	require.NoError(t, err)
	tk.AddTab("main")
	b, err := tk.AddButton("OK", 0, 0)
	require.NoError(t, err)

	require.NoError(t, tk.Close())
	assert.Zero(t, drv.LiveTextures())
	assert.False(t, ttf.WasInit())
	assert.False(t, tk.Running())
	assert.Equal(t, []string{
		"init context", "start video", window, "create canvas", "create event pump",
		"destroy texture", "destroy canvas", "destroy window", "quit video", "quit context",
	}, drv.Journal())

	n := len(drv.Journal())
	require.NoError(t, tk.Close())
	assert.Len(t, drv.Journal(), n)

	_, err = tk.Tick()
	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, b.Draw(), ErrBackend)
	_, err = tk.AddButton("late", 0, 0)
	assert.ErrorIs(t, err, ErrBackend)
}

func TestRun(t *testing.T) {
	tk, drv := open(t)
	drv.Push(backend.KeyDown(backend.KeyOther, 'x'), backend.Quit())
	require.NoError(t, tk.Run())
	assert.Equal(t, 2, drv.Canvas().Frames())
}

func TestRunPaced(t *testing.T) {
	cfg := testConfig()
	cfg.Window.VSync = false
	cfg.Window.FrameRate = 1000
	drv := headless.New()
	tk, err := New(cfg, drv)
	require.NoError(t, err)
	defer tk.Close()

	drv.Push(backend.KeyDown(backend.KeyEscape, 0x1b))
	require.NoError(t, tk.Run())
	assert.False(t, drv.Canvas().VSync())
}

func TestRunReturnsFrameError(t *testing.T) {
	tk, drv := open(t)
	drv.Fail(headless.StepPresent, backend.Errorf("flush failed"))
	assert.ErrorIs(t, tk.Run(), ErrBackend)
}

func TestString(t *testing.T) {
	tk, _ := open(t)
	tk.AddTab("main")
	assert.Equal(t,
		`Toolkit{tabs: [Tab{name: "main", items: 0, itemPos: 0}], tabPos: 0, items: 0, run: true, bg: {0 0 0 100}}`,
		tk.String())
}
