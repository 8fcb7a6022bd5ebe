package autorec

import (
	"math"
	"sort"

	"github.com/viterin/vek"
)

// Simplify removes keyframes in r that can be reconstructed from their
// neighbours within valueTolerance. The first and last point in r are always
// kept, as are jumps (points closer than timeTolerance to a neighbour) and
// points adjacent to Step segments. After simplification, the curve value at
// the time of every original keyframe differs from the original value by at
// most valueTolerance.
func (c *PointCurve) Simplify(r Range, timeTolerance, valueTolerance float64) {
	lo := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].Time >= r.Start })
	hi := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].Time > r.End })
	if hi-lo < 3 {
		return
	}
	window := c.Points[lo:hi]
	keep := make([]bool, len(window))
	var s simplifier
	prev := 0
	for i := range window {
		if i == 0 || i == len(window)-1 || pinned(window, i, timeTolerance) {
			keep[i] = true
			if i > prev+1 {
				s.reduce(window, keep, prev, i, valueTolerance)
			}
			prev = i
		}
	}
	ret := c.Points[:lo]
	for i, p := range window {
		if keep[i] {
			ret = append(ret, p)
		}
	}
	c.Points = append(ret, c.Points[hi:]...)
}

func pinned(points []Point, i int, timeTolerance float64) bool {
	p := points[i]
	if p.Shape == Step {
		return true
	}
	if i > 0 && (points[i-1].Shape == Step || p.Time-points[i-1].Time <= timeTolerance) {
		return true
	}
	if i < len(points)-1 && points[i+1].Time-p.Time <= timeTolerance {
		return true
	}
	return false
}

// simplifier holds the scratch buffers of the Douglas-Peucker reduction so
// they can be reused between segments.
type simplifier struct {
	values []float64
	line   []float64
	stack  [][2]int
}

// reduce marks the points between first and last (exclusive) that need to be
// kept so that linear interpolation between kept points stays within
// tolerance of every dropped point.
func (s *simplifier) reduce(points []Point, keep []bool, first, last int, tolerance float64) {
	s.stack = append(s.stack[:0], [2]int{first, last})
	for len(s.stack) > 0 {
		seg := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		a, b := seg[0], seg[1]
		if b-a < 2 {
			continue
		}
		interior := points[a+1 : b]
		s.values = s.values[:0]
		s.line = s.line[:0]
		for _, p := range interior {
			s.values = append(s.values, p.Value)
			s.line = append(s.line, interpolate(points[a], points[b], p.Time))
		}
		vek.Sub_Inplace(s.values, s.line)
		vek.Abs_Inplace(s.values)
		idx := vek.ArgMax(s.values)
		if s.values[idx] <= tolerance || math.IsNaN(s.values[idx]) {
			continue
		}
		split := a + 1 + idx
		keep[split] = true
		s.stack = append(s.stack, [2]int{a, split}, [2]int{split, b})
	}
}
