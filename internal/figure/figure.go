// Package figure defines the contract every animatable figure satisfies, the
// typed attribute table the tween engine walks, the built-in tween methods and
// the composite figures (Camera, Frame, MultiFigure).
package figure

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/errs"
	"github.com/ivlev/scene2video/internal/transition"
)

// Forever is the delay of a keyframe that holds indefinitely.
const Forever = math.MaxInt

// Figure is the unit of visual content.
type Figure interface {
	Properties() *Props
	// Copy returns an independent deep copy.
	Copy() Figure
	// Fields returns the attribute table. The order and names are fixed per
	// type; pointers refer into the receiver.
	Fields() []Field
	Draw(cam *Camera, c canvas.Canvas) error
}

// Morpher is implemented by figures that need more than a field-by-field walk
// to tween, e.g. to reconcile node or sub-figure counts first.
type Morpher interface {
	Figure
	Morph(b Figure, t float64, rule Rule) (Figure, error)
}

// Composite is implemented by figures holding sub-figures.
type Composite interface {
	Figure
	Subfigures() []Figure
	SetSubfigures(figs []Figure)
}

// Pretweener is implemented by figures that normalize themselves before an
// animation starts playing.
type Pretweener interface {
	Pretween() error
}

// Props are the properties shared by every figure. Embed it.
type Props struct {
	Hidden bool
	// Static figures snap instead of interpolating.
	Static bool
	// Z orders figures within a layer; higher is drawn later.
	Z float64
	// Delay is the number of frames a keyfigure holds before tweening
	// toward the next keyframe starts. Forever holds indefinitely.
	Delay int
	// Method tweens this figure toward the next keyfigure. Nil means Linear.
	Method *Method
	// Transition remaps progress before Method sees it. Nil means the
	// configured default for keyfigures and the identity for sub-figures.
	Transition transition.Func
}

func (p *Props) Properties() *Props { return p }

// Visible reports whether the figure is drawn.
func (p *Props) Visible() bool { return !p.Hidden }

// MethodOf returns the tween method of f.
func MethodOf(f Figure) *Method {
	if m := f.Properties().Method; m != nil {
		return m
	}
	return Linear
}

// Kind tells the engine how to interpolate a field.
type Kind int

const (
	// Numeric fields are interpolated through the method's rule.
	Numeric Kind = iota
	// Dash fields hold dash patterns; they are reconciled before blending.
	Dash
	// Discrete fields are copied: A's value below t=1, B's value at t=1.
	Discrete
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Dash:
		return "dash"
	case Discrete:
		return "discrete"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field is one entry of an attribute table.
type Field struct {
	Name string
	Kind Kind
	Ptr  any
}

// Lookup finds the field called name.
func Lookup(f Figure, name string) (Field, bool) {
	for _, fd := range f.Fields() {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// Value returns the current value of a field.
func (fd Field) Value() any {
	return reflect.ValueOf(fd.Ptr).Elem().Interface()
}

// Set stores v into the field, converting numeric types where possible.
func (fd Field) Set(v any) error {
	dst := reflect.ValueOf(fd.Ptr).Elem()
	src := reflect.ValueOf(v)
	if !src.IsValid() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()) && isNumber(src.Kind()) && isNumber(dst.Kind()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("field %s: cannot assign %T to %s", fd.Name, v, dst.Type())
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// Get returns the attribute called name. Composites without a field of that
// name answer with the value shared by all of their sub-figures.
func Get(f Figure, name string) (any, error) {
	if fd, ok := Lookup(f, name); ok {
		return fd.Value(), nil
	}
	if c, ok := f.(interface{ CommonAttr(string) (any, error) }); ok {
		return c.CommonAttr(name)
	}
	return nil, fmt.Errorf("%T has no attribute %q", f, name)
}

// Set assigns the attribute called name. Composites without a field of that
// name assign it on every sub-figure that has it.
func Set(f Figure, name string, v any) error {
	if fd, ok := Lookup(f, name); ok {
		return fd.Set(v)
	}
	if c, ok := f.(interface{ SetCommonAttr(string, any) error }); ok {
		return c.SetCommonAttr(name, v)
	}
	return fmt.Errorf("%T has no attribute %q", f, name)
}

// Signature describes the structure of f: its type and attribute table.
// Keyfigures of one actor must share a signature.
func Signature(f Figure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%T{", f)
	for i, fd := range f.Fields() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%s", fd.Name, fd.Kind)
	}
	b.WriteByte('}')
	return b.String()
}

// Compatible checks that a and b can be tweened against each other.
func Compatible(a, b Figure) error {
	if a == nil || b == nil {
		return errs.New(errs.ErrIncompatibleTween, "nil figure")
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return errs.New(errs.ErrIncompatibleTween, "cannot tween %T into %T", a, b)
	}
	return nil
}
