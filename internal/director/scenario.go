package director

// Scenario is a YAML animation document. Frame indices are local to the
// layer; times in seconds are converted at the scenario frame rate.
type Scenario struct {
	Version    string  `yaml:"version"`
	FPS        int     `yaml:"fps,omitempty"`
	Width      int     `yaml:"width,omitempty"`
	Height     int     `yaml:"height,omitempty"`
	Background string  `yaml:"background,omitempty"`
	Transition string  `yaml:"transition,omitempty"`
	Layers     []Layer `yaml:"layers"`
	// Masks are built like layers but only drawn through the layers that
	// name them.
	Masks  []Layer `yaml:"masks,omitempty"`
	Delays []Delay `yaml:"delays,omitempty"`
}

// Layer describes one layer and its actors.
type Layer struct {
	Name    string   `yaml:"name"`
	Offset  int      `yaml:"offset,omitempty"`
	Start   *int     `yaml:"start,omitempty"`
	End     *int     `yaml:"end,omitempty"`
	Mask    string   `yaml:"mask,omitempty"`
	Hidden  bool     `yaml:"hidden,omitempty"`
	Camera  []Key    `yaml:"camera,omitempty"`
	Tour    *Tour    `yaml:"tour,omitempty"`
	Effects []Effect `yaml:"effects,omitempty"` // applied to the camera
	Actors  []Actor  `yaml:"actors"`
}

// Actor is a shape plus the keyframes that change it.
type Actor struct {
	Name    string   `yaml:"name"`
	Hidden  bool     `yaml:"hidden,omitempty"`
	Shape   Shape    `yaml:"shape"`
	Keys    []Key    `yaml:"keys,omitempty"`
	Effects []Effect `yaml:"effects,omitempty"`
}

// Point is an [x, y] pair.
type Point [2]float64

func (p Point) complex() complex128 { return complex(p[0], p[1]) }

// Shape is the first keyfigure of an actor. Each type reads its own fields.
type Shape struct {
	Type    string     `yaml:"type"`
	Nodes   []Point    `yaml:"nodes,omitempty"`
	Closed  bool       `yaml:"closed,omitempty"`
	A       Point      `yaml:"a,omitempty"`
	B       Point      `yaml:"b,omitempty"`
	Pos     Point      `yaml:"pos,omitempty"`
	Pos3    [3]float64 `yaml:"pos3,omitempty"`
	Radius  float64    `yaml:"radius,omitempty"`
	Sides   int        `yaml:"sides,omitempty"`
	Phase   float64    `yaml:"phase,omitempty"`
	Text    string     `yaml:"text,omitempty"`
	Size    float64    `yaml:"size,omitempty"`
	Content string     `yaml:"content,omitempty"`
	Module  float64    `yaml:"module,omitempty"`
	Source  string     `yaml:"source,omitempty"`
	Page    int        `yaml:"page,omitempty"`
	DPI     int        `yaml:"dpi,omitempty"`
	Width   float64    `yaml:"width,omitempty"`
	Z       float64    `yaml:"z,omitempty"`
	Static  bool       `yaml:"static,omitempty"`
	// Set assigns attributes after construction, like a key at frame 0.
	Set map[string]any `yaml:"set,omitempty"`
}

// Key pins attribute values at a frame. Attributes not named keep the value
// of the preceding keyframe.
type Key struct {
	Frame      int            `yaml:"frame"`
	Time       *float64       `yaml:"time,omitempty"`
	Set        map[string]any `yaml:"set,omitempty"`
	Transition string         `yaml:"transition,omitempty"`
	Method     string         `yaml:"method,omitempty"`
	Angle      float64        `yaml:"angle,omitempty"`
	Delay      int            `yaml:"delay,omitempty"`
	Forever    bool           `yaml:"forever,omitempty"`
}

// Effect applies a named effect over [At, At+Duration).
type Effect struct {
	Type     string  `yaml:"type"`
	At       int     `yaml:"at"`
	Duration int     `yaml:"duration"`
	Delta    Point   `yaml:"delta,omitempty"`
	Angle    float64 `yaml:"angle,omitempty"`
	Mode     string  `yaml:"mode,omitempty"`
	Peak     float64 `yaml:"peak,omitempty"`
	Outro    int     `yaml:"outro,omitempty"`
	Seed     int64   `yaml:"seed,omitempty"`
	Lag      int     `yaml:"lag,omitempty"`
	Inner    string  `yaml:"inner,omitempty"`
}

// Delay holds a global frame.
type Delay struct {
	Frame   int     `yaml:"frame"`
	Frames  int     `yaml:"frames,omitempty"`
	Seconds float64 `yaml:"seconds,omitempty"`
	Forever bool    `yaml:"forever,omitempty"`
}

// Tour points the layer camera at the regions an analyzer finds in one of
// the layer's pictures.
type Tour struct {
	Picture  string `yaml:"picture"` // actor name
	Detector string `yaml:"detector,omitempty"`
	// MaxRegions keeps the densest regions; 0 keeps all.
	MaxRegions int     `yaml:"max_regions,omitempty"`
	At         int     `yaml:"at,omitempty"`
	Duration   float64 `yaml:"duration"` // seconds
}

// Keyframe is one stop of a camera tour.
type Keyframe struct {
	Time  float64   `yaml:"time"`  // Time offset in seconds
	Focus string    `yaml:"focus"` // Description of focus region
	Rect  Rectangle `yaml:"rect"`  // Target rectangle
	Zoom  float64   `yaml:"zoom"`  // Zoom level (1.0 = no zoom)
}

// Rectangle is a world-space box; X, Y is the lower-left corner.
type Rectangle struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

func (r Rectangle) center() complex128 {
	return complex(r.X+r.W/2, r.Y+r.H/2)
}
