package toolkit

import (
	"errors"
	"fmt"
	"log/slog"
)

type resource struct {
	name    string
	release func() error
}

// session holds the graphics resources acquired during initialization.
// They are released in reverse order of acquisition.
type session struct {
	stack []resource
}

func (s *session) push(name string, release func() error) {
	slog.Debug("toolkit: acquired", "resource", name)
	s.stack = append(s.stack, resource{name, release})
}

// release unwinds the stack. Every resource is released even when an
// earlier one fails. Calling release again is a no-op.
func (s *session) release() error {
	var errs []error
	for i := len(s.stack) - 1; i >= 0; i-- {
		r := s.stack[i]
		slog.Debug("toolkit: releasing", "resource", r.name)
		if err := r.release(); err != nil {
			errs = append(errs, fmt.Errorf("toolkit: release %s: %w", r.name, err))
		}
	}
	s.stack = nil
	return errors.Join(errs...)
}

// noErr adapts a release func that cannot fail.
func noErr(f func()) func() error {
	return func() error {
		f()
		return nil
	}
}
