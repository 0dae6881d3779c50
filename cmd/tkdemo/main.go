// Command tkdemo opens a toolkit window with one tab per argument and a
// button for each, then runs until Escape or the window is closed.
//
// Usage:
//
//	tkdemo [-config file] [-driver name] [-frames n] [-frame-dir dir] [-alpha a] [-v|-vv|-q] [tab ...]
//
// With -frames, tkdemo draws at most n frames and exits. With the
// headless driver, -frame-dir writes every frame as a PNG.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/elizafairlady/go-tabkit/backend"
	"github.com/elizafairlady/go-tabkit/backend/headless"
	"github.com/elizafairlady/go-tabkit/config"
	"github.com/elizafairlady/go-tabkit/logx"
	"github.com/elizafairlady/go-tabkit/toolkit"
)

var (
	configPath = flag.String("config", "", "config file (default $XDG_CONFIG_HOME/tabkit/config.toml)")
	driverName = flag.String("driver", "", "graphics driver: "+fmt.Sprint(backend.Drivers()))
	frames     = flag.Int("frames", 0, "exit after `n` frames (0 runs until quit)")
	frameDir   = flag.String("frame-dir", "", "headless driver: write frames to `dir`")
	alpha      = flag.Int("alpha", -1, "background alpha 0-255")
	verbose    = flag.Bool("v", false, "log info messages")
	debug      = flag.Bool("vv", false, "log debug messages")
	quiet      = flag.Bool("q", false, "log errors only")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	setupLogging(cfg)
	for _, w := range cfg.Validate() {
		slog.Warn("tkdemo: config", "warning", w)
	}

	if *driverName != "" {
		cfg.Backend.Driver = *driverName
	}
	var drv backend.Driver
	if *frameDir != "" {
		if cfg.Backend.Driver != headless.Name {
			fatal(fmt.Errorf("-frame-dir needs the %s driver", headless.Name))
		}
		if err := os.MkdirAll(*frameDir, 0755); err != nil {
			fatal(err)
		}
		drv = headless.New(headless.WithFrameDir(*frameDir))
	}

	tk, err := toolkit.New(cfg, drv)
	if err != nil {
		fatal(err)
	}
	defer closeLogged(tk)

	if *alpha >= 0 {
		tk.SetAlpha(uint8(min(*alpha, 255)))
	}

	tabs := flag.Args()
	if len(tabs) == 0 {
		tabs = []string{"main"}
	}
	for _, name := range tabs {
		tk.AddTab(name)
	}
	// buttons go to the active tab, the first one
	for i, name := range tabs {
		if _, err := tk.AddButton(name, 10, 10+int32(i)*40); err != nil {
			closeLogged(tk)
			fatal(err)
		}
	}
	slog.Info("tkdemo: ready", "toolkit", tk)

	if err := loop(tk); err != nil {
		closeLogged(tk)
		fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFromPath(*configPath)
	}
	return config.Load()
}

func setupLogging(cfg *config.Config) {
	if *debug || *verbose || *quiet {
		logx.UserLevel = logx.LevelFromFlags(*debug, *verbose, *quiet)
	} else if l, err := logx.ParseLevel(cfg.Log.Level); err == nil {
		logx.UserLevel = l
	}
	logx.SetDefaultLogger()
}

func loop(tk *toolkit.Toolkit) error {
	if *frames <= 0 {
		return tk.Run()
	}
	for i := 0; i < *frames; i++ {
		running, err := tk.Tick()
		if err != nil {
			return err
		}
		if !running {
			break
		}
	}
	return nil
}

// closeLogged closes c and logs a failed release at warn.
func closeLogged(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("tkdemo: close", "err", err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "tkdemo:", err)
	os.Exit(1)
}
