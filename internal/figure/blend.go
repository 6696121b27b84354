package figure

import (
	"math"
	"math/cmplx"
	"reflect"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/errs"
)

// Blend sets every field of dst to the interpolation of the matching fields
// of a and b. dst, a and b must share a type; dst is usually a copy of a.
func Blend(dst, a, b Figure, t float64, rule Rule) error {
	df, af, bf := dst.Fields(), a.Fields(), b.Fields()
	if len(df) != len(af) || len(af) != len(bf) {
		return errs.New(errs.ErrIncompatibleTween, "%T: attribute tables differ", a)
	}
	for i := range df {
		if err := blendField(df[i], af[i], bf[i], t, rule); err != nil {
			return err
		}
	}
	return nil
}

func blendField(d, fa, fb Field, t float64, rule Rule) error {
	if d.Kind == Discrete {
		src := fa
		if t >= 1 {
			src = fb
		}
		assignCopy(reflect.ValueOf(d.Ptr).Elem(), reflect.ValueOf(src.Ptr).Elem())
		return nil
	}
	switch p := d.Ptr.(type) {
	case *float64:
		*p = lerp(*fa.Ptr.(*float64), *fb.Ptr.(*float64), t)
	case *int:
		*p = int(math.Round(lerp(float64(*fa.Ptr.(*int)), float64(*fb.Ptr.(*int)), t)))
	case *complex128:
		*p = blendComplex(*fa.Ptr.(*complex128), *fb.Ptr.(*complex128), t, rule)
	case *[]complex128:
		xa, xb := *fa.Ptr.(*[]complex128), *fb.Ptr.(*[]complex128)
		if len(xa) != len(xb) {
			return errs.New(errs.ErrIncompatibleTween, "%s: %d values against %d", d.Name, len(xa), len(xb))
		}
		out := make([]complex128, len(xa))
		for i := range out {
			out[i] = blendComplex(xa[i], xb[i], t, rule)
		}
		*p = out
	case *[]float64:
		xa, xb := *fa.Ptr.(*[]float64), *fb.Ptr.(*[]float64)
		if d.Kind == Dash {
			*p = canvas.LerpDash(xa, xb, t)
			return nil
		}
		if len(xa) != len(xb) {
			return errs.New(errs.ErrIncompatibleTween, "%s: %d values against %d", d.Name, len(xa), len(xb))
		}
		out := make([]float64, len(xa))
		for i := range out {
			out[i] = lerp(xa[i], xb[i], t)
		}
		*p = out
	case *[4]float64:
		xa, xb := *fa.Ptr.(*[4]float64), *fb.Ptr.(*[4]float64)
		for i := range p {
			p[i] = lerp(xa[i], xb[i], t)
		}
	case *mgl64.Vec3:
		*p = rule.Vec3(*fa.Ptr.(*mgl64.Vec3), *fb.Ptr.(*mgl64.Vec3), t)
	case *[]mgl64.Vec3:
		xa, xb := *fa.Ptr.(*[]mgl64.Vec3), *fb.Ptr.(*[]mgl64.Vec3)
		if len(xa) != len(xb) {
			return errs.New(errs.ErrIncompatibleTween, "%s: %d points against %d", d.Name, len(xa), len(xb))
		}
		out := make([]mgl64.Vec3, len(xa))
		for i := range out {
			out[i] = rule.Vec3(xa[i], xb[i], t)
		}
		*p = out
	case *mgl64.Mat3:
		*p = slerpMat(*fa.Ptr.(*mgl64.Mat3), *fb.Ptr.(*mgl64.Mat3), t)
	case *canvas.Color:
		*p = rule.Color(*fa.Ptr.(*canvas.Color), *fb.Ptr.(*canvas.Color), t)
	case *canvas.Paint:
		*p = canvas.LerpPaint(*fa.Ptr.(*canvas.Paint), *fb.Ptr.(*canvas.Paint), t, rule.Color)
	default:
		return blendField(Field{Name: d.Name, Kind: Discrete, Ptr: d.Ptr}, fa, fb, t, rule)
	}
	return nil
}

// lerp blends two scalars. An infinite value is a placeholder and snaps.
func lerp(a, b, t float64) float64 {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		if t >= 1 {
			return b
		}
		return a
	}
	return a*(1-t) + b*t
}

func blendComplex(a, b complex128, t float64, rule Rule) complex128 {
	if cmplx.IsInf(a) || cmplx.IsInf(b) {
		if t >= 1 {
			return b
		}
		return a
	}
	return rule.Complex(a, b, t)
}

// slerpMat blends two rotation matrices along the shortest arc.
func slerpMat(a, b mgl64.Mat3, t float64) mgl64.Mat3 {
	qa, qb := mgl64.Mat4ToQuat(a.Mat4()), mgl64.Mat4ToQuat(b.Mat4())
	if qa.Dot(qb) < 0 {
		qb = qb.Scale(-1)
	}
	return mgl64.QuatSlerp(qa, qb, t).Mat4().Mat3()
}

func assignCopy(dst, src reflect.Value) {
	if src.Kind() == reflect.Slice && !src.IsNil() {
		c := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		reflect.Copy(c, src)
		dst.Set(c)
		return
	}
	dst.Set(src)
}
