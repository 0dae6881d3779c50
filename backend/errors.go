package backend

import (
	"fmt"
	"math"
)

// MaxDimension is the largest width or height a driver accepts.
const MaxDimension = math.MaxInt32

// Error is a plain driver failure carrying only a message.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// Errorf formats a plain driver failure.
func Errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// WindowBuildErrorKind classifies a WindowBuildError.
type WindowBuildErrorKind int

const (
	WindowWidthOverflows WindowBuildErrorKind = iota
	WindowHeightOverflows
	WindowInvalidTitle
	WindowBackend
)

// WindowBuildError is returned by Video.CreateWindow.
type WindowBuildError struct {
	Kind  WindowBuildErrorKind
	Value uint32 // offending width or height
	Msg   string // WindowBackend only
}

func (e *WindowBuildError) Error() string {
	switch e.Kind {
	case WindowWidthOverflows:
		return fmt.Sprintf("window width (%d) must be less than or equal to %d", e.Value, MaxDimension)
	case WindowHeightOverflows:
		return fmt.Sprintf("window height (%d) must be less than or equal to %d", e.Value, MaxDimension)
	case WindowInvalidTitle:
		return "window title contains a NUL byte"
	}
	return e.Msg
}

// IntegerOrBackendError is returned by operations that validate an
// integer argument before calling into the driver. Exactly one of Name
// (an overflowing argument) or Err (a driver failure) is set.
type IntegerOrBackendError struct {
	Name  string
	Value uint64
	Err   *Error
}

// Overflow reports an integer argument out of range.
func Overflow(name string, value uint64) *IntegerOrBackendError {
	return &IntegerOrBackendError{Name: name, Value: value}
}

// Failed wraps a driver failure.
func Failed(err *Error) *IntegerOrBackendError {
	return &IntegerOrBackendError{Err: err}
}

// Overflows reports whether the failure is an integer overflow.
func (e *IntegerOrBackendError) Overflows() bool { return e.Err == nil }

func (e *IntegerOrBackendError) Error() string {
	if e.Overflows() {
		return fmt.Sprintf("integer overflow: %s (%d)", e.Name, e.Value)
	}
	return e.Err.Msg
}

// TextureValueErrorKind classifies a TextureValueError.
type TextureValueErrorKind int

const (
	TextureWidthOverflows TextureValueErrorKind = iota
	TextureHeightOverflows
	TextureWidthNotEven
	TextureBackend
)

// TextureValueError is returned by TextureCreator.CreateTextureFromSurface.
type TextureValueError struct {
	Kind   TextureValueErrorKind
	Value  uint32 // offending width or height
	Format string // TextureWidthNotEven only
	Msg    string // TextureBackend only
}

func (e *TextureValueError) Error() string {
	switch e.Kind {
	case TextureWidthOverflows:
		return fmt.Sprintf("texture width (%d) must be less than or equal to %d", e.Value, MaxDimension)
	case TextureHeightOverflows:
		return fmt.Sprintf("texture height (%d) must be less than or equal to %d", e.Value, MaxDimension)
	case TextureWidthNotEven:
		return fmt.Sprintf("texture width must be multiple of two for pixel format %s (%d)", e.Format, e.Value)
	}
	return e.Msg
}

// CheckTextureSize validates texture dimensions for a pixel format.
// Packed YUV formats need an even width.
func CheckTextureSize(format string, width, height uint64) error {
	switch {
	case width > MaxDimension:
		return &TextureValueError{Kind: TextureWidthOverflows, Value: uint32(min(width, math.MaxUint32))}
	case height > MaxDimension:
		return &TextureValueError{Kind: TextureHeightOverflows, Value: uint32(min(height, math.MaxUint32))}
	case evenWidthFormat(format) && width%2 != 0:
		return &TextureValueError{Kind: TextureWidthNotEven, Value: uint32(width), Format: format}
	}
	return nil
}

func evenWidthFormat(format string) bool {
	switch format {
	case "YUY2", "UYVY", "YVYU", "YV12", "IYUV", "NV12", "NV21":
		return true
	}
	return false
}

// CheckWindow validates window parameters before a driver opens one.
func CheckWindow(title string, width, height uint32) error {
	switch {
	case width > MaxDimension:
		return &WindowBuildError{Kind: WindowWidthOverflows, Value: width}
	case height > MaxDimension:
		return &WindowBuildError{Kind: WindowHeightOverflows, Value: height}
	}
	for i := 0; i < len(title); i++ {
		if title[i] == 0 {
			return &WindowBuildError{Kind: WindowInvalidTitle}
		}
	}
	return nil
}
