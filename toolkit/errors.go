package toolkit

import (
	"errors"

	"github.com/elizafairlady/go-tabkit/backend"
	"github.com/elizafairlady/go-tabkit/ttf"
)

// Kind classifies an Error.
type Kind int

const (
	KindBackend            Kind = iota // driver failure with a message
	KindTextIO                         // font subsystem I/O fault
	KindIntegerOverflow                // a size or index does not fit
	KindAlreadyInitialized             // font subsystem already started
	KindDimensionNotEven               // width must be a multiple of two
	KindInvalidText                    // text the font cannot encode
	KindNoTabs                         // no tab to attach to
)

func (k Kind) String() string {
	switch k {
	case KindBackend:
		return "Backend"
	case KindTextIO:
		return "TextIO"
	case KindIntegerOverflow:
		return "IntegerOverflow"
	case KindAlreadyInitialized:
		return "AlreadyInitialized"
	case KindDimensionNotEven:
		return "DimensionNotEven"
	case KindInvalidText:
		return "InvalidText"
	case KindNoTabs:
		return "NoTabs"
	}
	return "Unknown"
}

// Error is the only error type toolkit operations return.
type Error struct {
	Kind Kind
	Msg  string // KindBackend
	Err  error  // KindTextIO
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBackend:
		return "backend error: " + e.Msg
	case KindTextIO:
		if e.Err == nil {
			return "text subsystem input/output error"
		}
		return "text subsystem input/output error: " + e.Err.Error()
	case KindIntegerOverflow:
		return "integer overflow"
	case KindAlreadyInitialized:
		return "text subsystem already initialized"
	case KindDimensionNotEven:
		return "input value not a multiple of two"
	case KindInvalidText:
		return "invalid input text"
	case KindNoTabs:
		return "no tabs have been created"
	}
	return "unknown toolkit error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind. A target with a message
// must also match the message; the sentinels below carry none.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// Sentinels for errors.Is.
var (
	ErrBackend            = &Error{Kind: KindBackend}
	ErrTextIO             = &Error{Kind: KindTextIO}
	ErrIntegerOverflow    = &Error{Kind: KindIntegerOverflow}
	ErrAlreadyInitialized = &Error{Kind: KindAlreadyInitialized}
	ErrDimensionNotEven   = &Error{Kind: KindDimensionNotEven}
	ErrInvalidText        = &Error{Kind: KindInvalidText}
	ErrNoTabs             = &Error{Kind: KindNoTabs}
)

func backendError(msg string) *Error {
	return &Error{Kind: KindBackend, Msg: msg}
}

// FromBackend maps an error raised by a driver or the font subsystem
// onto the toolkit taxonomy. A nil error stays nil and an *Error is
// returned unchanged. Errors of any other type become KindBackend.
func FromBackend(err error) error {
	if err == nil {
		return nil
	}
	return convert(err)
}

func convert(err error) *Error {
	var (
		te  *Error
		we  *backend.WindowBuildError
		ie  *backend.IntegerOrBackendError
		tve *backend.TextureValueError
		be  *backend.Error
		tie *ttf.InitError
		fe  *ttf.FontError
	)
	switch {
	case errors.As(err, &te):
		return te
	case errors.As(err, &we):
		return backendError(we.Error())
	case errors.As(err, &ie):
		if ie.Overflows() {
			return &Error{Kind: KindIntegerOverflow}
		}
		return backendError(ie.Err.Msg)
	case errors.As(err, &tve):
		switch tve.Kind {
		case backend.TextureWidthOverflows, backend.TextureHeightOverflows:
			return &Error{Kind: KindIntegerOverflow}
		case backend.TextureWidthNotEven:
			return &Error{Kind: KindDimensionNotEven}
		}
		return backendError(tve.Msg)
	case errors.As(err, &tie):
		if tie.Kind == ttf.InitAlreadyInitialized {
			return &Error{Kind: KindAlreadyInitialized}
		}
		return &Error{Kind: KindTextIO, Err: tie.Err}
	case errors.As(err, &fe):
		if fe.Kind == ttf.FontInvalidText {
			return &Error{Kind: KindInvalidText}
		}
		return backendError(fe.Msg)
	case errors.As(err, &be):
		return backendError(be.Msg)
	}
	return backendError(err.Error())
}

// Message returns the fixed sentence for err's kind, for callers that
// want text rather than a structured error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return convert(err).Error()
}
