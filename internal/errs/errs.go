// Package errs defines the error kinds raised by the timeline and tween engine.
//
// Every error returned by the core unwraps to exactly one of the sentinel kinds
// below, so callers can branch with errors.Is. Errors carry the actor, layer and
// frame they were raised for when that is known.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructural reports non-increasing keyframe indices, a duplicate
	// keyframe index or any other broken timeline invariant.
	ErrStructural = errors.New("structural invariant violated")

	// ErrMaskCycle is the structural error raised when a mask chain loops.
	ErrMaskCycle = fmt.Errorf("%w: cyclic mask chain", ErrStructural)

	// ErrIncompatibleTween reports figures that cannot be interpolated.
	ErrIncompatibleTween = errors.New("incompatible tween")

	// ErrMergeConflict reports two layers carrying external masks being merged.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrTimelineRange reports a request outside what the timeline can serve.
	ErrTimelineRange = errors.New("timeline range")

	// ErrExportPrecheck reports an animation that cannot be exported as is.
	ErrExportPrecheck = errors.New("export precheck failed")

	// ErrAmbiguousValue reports sub-figures that disagree on a common attribute.
	ErrAmbiguousValue = errors.New("ambiguous common value")
)

// Error is a located error of one of the kinds above.
type Error struct {
	Kind   error
	Msg    string
	Actor  string
	Layer  string
	Frame  int
	framed bool
}

// New returns an Error of the given kind.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// InActor records the actor the error was raised for.
func (e *Error) InActor(name string) *Error {
	e.Actor = name
	return e
}

// InLayer records the layer the error was raised for.
func (e *Error) InLayer(name string) *Error {
	e.Layer = name
	return e
}

// AtFrame records the frame index the error was raised for.
func (e *Error) AtFrame(frame int) *Error {
	e.Frame = frame
	e.framed = true
	return e
}

// HasFrame reports whether AtFrame was called.
func (e *Error) HasFrame() bool { return e.framed }

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	var loc []string
	if e.Layer != "" {
		loc = append(loc, "layer "+quote(e.Layer))
	}
	if e.Actor != "" {
		loc = append(loc, "actor "+quote(e.Actor))
	}
	if e.framed {
		loc = append(loc, fmt.Sprintf("frame %d", e.Frame))
	}
	if len(loc) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(loc, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func quote(s string) string { return "\"" + s + "\"" }

// Locate fills in missing location fields of err when it is an *Error.
// Other errors are returned unchanged.
func Locate(err error, layer, actor string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Layer == "" {
		e.Layer = layer
	}
	if e.Actor == "" {
		e.Actor = actor
	}
	return err
}
