// Package object defines the processed hit-object sequence consumed by the
// difficulty skills.
//
// Objects live in a contiguous arena owned by a Sequence. Lookback is
// index-based: Previous(n) resolves to the n-th prior element of the same
// arena, or nil when the object is too close to the start.
package object

import "math"

// Kind classifies the shape behind a processed object.
type Kind uint8

const (
	KindCircle Kind = iota
	KindSlider
	KindSpinner
)

// String returns the document name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSlider:
		return "slider"
	case KindSpinner:
		return "spinner"
	default:
		return "unknown"
	}
}

// Vector2 is a playfield position in osu!pixels.
type Vector2 struct {
	X float64
	Y float64
}

// Add returns v+o.
func (v Vector2) Add(o Vector2) Vector2 { return Vector2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v-o.
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v*s.
func (v Vector2) Scale(s float64) Vector2 { return Vector2{X: v.X * s, Y: v.Y * s} }

// Length returns the euclidean norm.
func (v Vector2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Rotate returns v rotated counter-clockwise by theta radians.
func (v Vector2) Rotate(theta float64) Vector2 {
	sin, cos := math.Sincos(theta)
	return Vector2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// BaseObject carries the shape metadata of the underlying hit object.
type BaseObject struct {
	Kind     Kind
	Radius   float64
	Position Vector2

	// StartAngle and EndAngle are the path directions at the head and tail
	// of a slider. Zero for other kinds.
	StartAngle float64
	EndAngle   float64

	// Duration is the slider or spinner length in milliseconds.
	Duration float64
}

// Object is one processed element of a Sequence.
type Object struct {
	Index int

	StartTime  float64
	DeltaTime  float64
	StrainTime float64
	GapTime    float64

	JumpDistance    float64
	RawJumpDistance float64

	// Angle is the signed turn angle in radians at this object: 0 keeps
	// going straight, ±π reverses. Nil for the first two objects.
	Angle *float64

	Flow     float64
	BaseFlow float64
	Preempt  float64

	LastTwoStrainTime float64

	Base BaseObject

	seq *Sequence
}

// AngleOf returns a pointer suitable for Object.Angle.
func AngleOf(radians float64) *float64 {
	return &radians
}

// Previous returns the n-th prior object (n=0 is the immediate predecessor)
// or nil when Index <= n.
func (o *Object) Previous(n int) *Object {
	if o.seq == nil || n < 0 || o.Index <= n {
		return nil
	}
	return &o.seq.objects[o.Index-n-1]
}

// IsCircle reports whether the underlying object is a point target.
func (o *Object) IsCircle() bool { return o.Base.Kind == KindCircle }

// IsSlider reports whether the underlying object is a sliding path.
func (o *Object) IsSlider() bool { return o.Base.Kind == KindSlider }

// IsSpinner reports whether the underlying object is a hold spinner.
func (o *Object) IsSpinner() bool { return o.Base.Kind == KindSpinner }

// Sequence is the read-only arena of processed objects.
type Sequence struct {
	objects []Object
}

// NewSequence copies objs into a new arena in order. Index is reassigned
// from the position and LastTwoStrainTime is derived when left zero.
func NewSequence(objs []Object) *Sequence {
	s := &Sequence{objects: make([]Object, len(objs))}
	copy(s.objects, objs)

	for i := range s.objects {
		o := &s.objects[i]
		o.Index = i
		o.seq = s
		if o.LastTwoStrainTime != 0 {
			continue
		}
		if i == 0 {
			o.LastTwoStrainTime = 2 * o.StrainTime
		} else {
			o.LastTwoStrainTime = o.StrainTime + s.objects[i-1].StrainTime
		}
	}
	return s
}

// Len returns the number of objects.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.objects)
}

// At returns the object at index i. It panics when i is out of range.
func (s *Sequence) At(i int) *Object {
	return &s.objects[i]
}

// Each calls fn for every object in index order.
func (s *Sequence) Each(fn func(o *Object)) {
	if s == nil {
		return
	}
	for i := range s.objects {
		fn(&s.objects[i])
	}
}

// Objects returns a copy of the arena without lookback links.
func (s *Sequence) Objects() []Object {
	if s == nil {
		return nil
	}
	out := make([]Object, len(s.objects))
	copy(out, s.objects)
	for i := range out {
		out[i].seq = nil
	}
	return out
}

// Counts returns the number of circles, sliders and spinners.
func (s *Sequence) Counts() (circles, sliders, spinners int) {
	s.Each(func(o *Object) {
		switch o.Base.Kind {
		case KindCircle:
			circles++
		case KindSlider:
			sliders++
		case KindSpinner:
			spinners++
		}
	})
	return circles, sliders, spinners
}
