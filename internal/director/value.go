package director

import (
	"fmt"
	"reflect"

	"github.com/ivlev/scene2video/internal/canvas"
	"github.com/ivlev/scene2video/internal/figure"
)

var (
	colorType   = reflect.TypeOf(canvas.Color{})
	paintType   = reflect.TypeOf(canvas.Paint{})
	complexType = reflect.TypeOf(complex128(0))
)

// convert turns a decoded YAML value into a value of type t. Points are
// [x, y] lists, colors hex strings, paints a color or a gradient map.
func convert(v any, t reflect.Type) (reflect.Value, error) {
	switch t {
	case colorType:
		s, ok := v.(string)
		if !ok {
			return reflect.Value{}, fmt.Errorf("color: want a string, got %T", v)
		}
		c, err := canvas.ParseColor(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(c), nil
	case paintType:
		p, err := paint(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(p), nil
	}

	switch t.Kind() {
	case reflect.Complex64, reflect.Complex128:
		z, err := point(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(z).Convert(t), nil
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Int32:
		f, ok := number(v)
		if !ok {
			return reflect.Value{}, fmt.Errorf("want a number, got %T", v)
		}
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Bool, reflect.String:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Type() != t {
			return reflect.Value{}, fmt.Errorf("want %s, got %T", t, v)
		}
		return rv, nil
	case reflect.Slice, reflect.Array:
		items, ok := v.([]any)
		if !ok {
			return reflect.Value{}, fmt.Errorf("want a list, got %T", v)
		}
		var out reflect.Value
		if t.Kind() == reflect.Array {
			if len(items) != t.Len() {
				return reflect.Value{}, fmt.Errorf("want %d items, got %d", t.Len(), len(items))
			}
			out = reflect.New(t).Elem()
		} else {
			out = reflect.MakeSlice(t, len(items), len(items))
		}
		for i, it := range items {
			e, err := convert(it, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			out.Index(i).Set(e)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported attribute type %s", t)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func point(v any) (complex128, error) {
	if f, ok := number(v); ok {
		return complex(f, 0), nil
	}
	xy, ok := v.([]any)
	if !ok || len(xy) != 2 {
		return 0, fmt.Errorf("want [x, y], got %v", v)
	}
	x, okx := number(xy[0])
	y, oky := number(xy[1])
	if !okx || !oky {
		return 0, fmt.Errorf("want [x, y], got %v", v)
	}
	return complex(x, y), nil
}

func paint(v any) (canvas.Paint, error) {
	switch p := v.(type) {
	case string:
		c, err := canvas.ParseColor(p)
		if err != nil {
			return canvas.Paint{}, err
		}
		return canvas.Solid(c), nil
	case map[string]any:
		g := &canvas.Gradient{}
		var err error
		if g.Start, err = point(p["start"]); err != nil {
			return canvas.Paint{}, fmt.Errorf("gradient start: %w", err)
		}
		if g.End, err = point(p["end"]); err != nil {
			return canvas.Paint{}, fmt.Errorf("gradient end: %w", err)
		}
		stops, _ := p["stops"].([]any)
		if len(stops) == 0 {
			return canvas.Paint{}, fmt.Errorf("gradient without stops")
		}
		for i, s := range stops {
			m, _ := s.(map[string]any)
			off, ok := number(m["offset"])
			if !ok {
				return canvas.Paint{}, fmt.Errorf("stop %d: missing offset", i)
			}
			cs, _ := m["color"].(string)
			c, err := canvas.ParseColor(cs)
			if err != nil {
				return canvas.Paint{}, fmt.Errorf("stop %d: %w", i, err)
			}
			g.Stops = append(g.Stops, canvas.Stop{Offset: off, Color: c})
		}
		return canvas.Paint{Gradient: g}, nil
	}
	return canvas.Paint{}, fmt.Errorf("paint: want a color or a gradient, got %T", v)
}

// fieldType finds the type of attribute name on f or, for composites, on
// the first sub-figure that has it.
func fieldType(f figure.Figure, name string) (reflect.Type, bool) {
	if fd, ok := figure.Lookup(f, name); ok {
		return reflect.TypeOf(fd.Ptr).Elem(), true
	}
	if c, ok := f.(figure.Composite); ok {
		for _, sub := range c.Subfigures() {
			if t, ok := fieldType(sub, name); ok {
				return t, true
			}
		}
	}
	return nil, false
}

// assign sets the attributes in set on f. z, hidden and static address the
// shared properties.
func assign(f figure.Figure, set map[string]any) error {
	for name, v := range set {
		if err := assignOne(f, name, v); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}

func assignOne(f figure.Figure, name string, v any) error {
	props := f.Properties()
	switch name {
	case "z":
		z, ok := number(v)
		if !ok {
			return fmt.Errorf("want a number, got %T", v)
		}
		props.Z = z
		return nil
	case "hidden", "static":
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("want a bool, got %T", v)
		}
		if name == "hidden" {
			props.Hidden = b
		} else {
			props.Static = b
		}
		return nil
	}
	t, ok := fieldType(f, name)
	if !ok {
		return fmt.Errorf("%T has no attribute %q", f, name)
	}
	rv, err := convert(v, t)
	if err != nil {
		return err
	}
	return figure.Set(f, name, rv.Interface())
}
