package autorec

import (
	"sort"
)

type (
	// Curve is an ordered set of keyframes with an interpolation rule between
	// consecutive points. The recording engine only ever talks to a curve
	// through this interface; the storage and interpolation are up to the
	// implementation.
	Curve interface {
		// AddPoint inserts a keyframe. Points with equal times keep their
		// insertion order, so two points at the same time form a jump.
		AddPoint(time, value float64, shape Shape)
		// RemovePointsInRegion removes all points with time in [Start, End].
		RemovePointsInRegion(r Range)
		// ValueAt returns the interpolated value at time. If the curve has
		// no points, fallback is returned.
		ValueAt(time, fallback float64) float64
		// Simplify removes points in r that do not change the reconstructed
		// value at any original keyframe time by more than valueTolerance.
		Simplify(r Range, timeTolerance, valueTolerance float64)
		// Length returns the time of the last point, or 0 for empty curves.
		Length() float64
		NumPoints() int
		PointTime(i int) float64
		PointValue(i int) float64
	}

	// Shape tells how the curve interpolates from a point to the next one.
	Shape int

	// Point is a single keyframe of a PointCurve.
	Point struct {
		Time  float64 `yaml:"time" json:"time"`
		Value float64 `yaml:"value" json:"value"`
		Shape Shape   `yaml:"shape,omitempty" json:"shape,omitempty"`
	}

	// PointCurve is the in-memory Curve used by the engine's tests and
	// commands. The zero value is an empty curve. PointCurve is not safe for
	// concurrent use; the owning Parameter serializes access.
	PointCurve struct {
		Points []Point
	}
)

const (
	Linear Shape = iota // interpolate linearly to the next point
	Step                // hold the value until the next point
)

func (s Shape) String() string {
	switch s {
	case Linear:
		return "linear"
	case Step:
		return "step"
	}
	return "unknown"
}

func (c *PointCurve) AddPoint(time, value float64, shape Shape) {
	// insert after all points with time <= t, so that equal-time points keep
	// their insertion order
	i := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].Time > time })
	c.Points = append(c.Points, Point{})
	copy(c.Points[i+1:], c.Points[i:])
	c.Points[i] = Point{Time: time, Value: value, Shape: shape}
}

func (c *PointCurve) RemovePointsInRegion(r Range) {
	if r.End < r.Start {
		return
	}
	start := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].Time >= r.Start })
	end := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].Time > r.End })
	if start >= end {
		return
	}
	c.Points = append(c.Points[:start], c.Points[end:]...)
}

func (c *PointCurve) ValueAt(time, fallback float64) float64 {
	if len(c.Points) == 0 {
		return fallback
	}
	// index of the first point strictly after time
	i := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].Time > time })
	if i == 0 {
		return c.Points[0].Value
	}
	if i == len(c.Points) {
		return c.Points[i-1].Value
	}
	return interpolate(c.Points[i-1], c.Points[i], time)
}

func (c *PointCurve) Length() float64 {
	if len(c.Points) == 0 {
		return 0
	}
	return c.Points[len(c.Points)-1].Time
}

func (c *PointCurve) NumPoints() int { return len(c.Points) }

func (c *PointCurve) PointTime(i int) float64 {
	if i < 0 || i >= len(c.Points) {
		return 0
	}
	return c.Points[i].Time
}

func (c *PointCurve) PointValue(i int) float64 {
	if i < 0 || i >= len(c.Points) {
		return 0
	}
	return c.Points[i].Value
}

// Copy returns a deep copy of the curve.
func (c *PointCurve) Copy() *PointCurve {
	points := make([]Point, len(c.Points))
	copy(points, c.Points)
	return &PointCurve{Points: points}
}

// CopyCurve copies the keyframes of any Curve into a new PointCurve. Shapes
// are not part of the Curve interface, so all points of the copy are
// Linear.
func CopyCurve(c Curve) *PointCurve {
	if pc, ok := c.(*PointCurve); ok {
		return pc.Copy()
	}
	n := c.NumPoints()
	ret := &PointCurve{Points: make([]Point, n)}
	for i := 0; i < n; i++ {
		ret.Points[i] = Point{Time: c.PointTime(i), Value: c.PointValue(i)}
	}
	return ret
}

func interpolate(a, b Point, time float64) float64 {
	if a.Shape == Step || b.Time <= a.Time {
		return a.Value
	}
	alpha := (time - a.Time) / (b.Time - a.Time)
	return a.Value + (b.Value-a.Value)*alpha
}
