package toolkit

import (
	"log/slog"
	"time"
)

// Run calls Tick until the toolkit stops or a frame fails. When the
// canvas does not wait for vsync, frames are paced at the configured
// frame rate.
func (tk *Toolkit) Run() error {
	var pace <-chan time.Time
	if tk.canvas != nil && !tk.canvas.VSync() && tk.cfg.Window.FrameRate > 0 {
		t := time.NewTicker(time.Second / time.Duration(tk.cfg.Window.FrameRate))
		defer t.Stop()
		pace = t.C
	}
	for frame := 0; ; frame++ {
		running, err := tk.Tick()
		if err != nil {
			slog.Warn("toolkit: frame failed", "frame", frame, "err", err)
			return err
		}
		if !running {
			return nil
		}
		if pace != nil {
			<-pace
		}
	}
}
