package autorec_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/autorec"
)

func points(pts ...float64) *autorec.PointCurve {
	c := &autorec.PointCurve{}
	for i := 0; i+1 < len(pts); i += 2 {
		c.AddPoint(pts[i], pts[i+1], autorec.Linear)
	}
	return c
}

func TestAddPointKeepsInsertionOrderOnEqualTimes(t *testing.T) {
	c := points(1, 0.5, 0, 0.1)
	c.AddPoint(1, 0.9, autorec.Linear)
	require.Equal(t, 3, c.NumPoints())
	assert.Equal(t, []float64{0, 1, 1}, []float64{c.PointTime(0), c.PointTime(1), c.PointTime(2)})
	assert.Equal(t, 0.5, c.PointValue(1))
	assert.Equal(t, 0.9, c.PointValue(2))
}

func TestValueAt(t *testing.T) {
	c := points(0, 0, 1, 1, 1, 0.5, 2, 0.5)
	tests := []struct {
		time, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 0.5}, // the later of two equal-time points wins
		{1.5, 0.5},
		{10, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, c.ValueAt(tt.time, -1), 1e-12, "time %v", tt.time)
	}
	assert.Equal(t, 0.7, (&autorec.PointCurve{}).ValueAt(3, 0.7))
}

func TestValueAtStep(t *testing.T) {
	c := &autorec.PointCurve{}
	c.AddPoint(0, 0.2, autorec.Step)
	c.AddPoint(1, 0.8, autorec.Linear)
	assert.Equal(t, 0.2, c.ValueAt(0.99, 0))
	assert.Equal(t, 0.8, c.ValueAt(1, 0))
}

func TestRemovePointsInRegionIsInclusive(t *testing.T) {
	c := points(0, 0, 1, 1, 2, 2, 3, 3)
	c.RemovePointsInRegion(autorec.Range{Start: 1, End: 2})
	require.Equal(t, 2, c.NumPoints())
	assert.Equal(t, 0.0, c.PointTime(0))
	assert.Equal(t, 3.0, c.PointTime(1))
	c.RemovePointsInRegion(autorec.Range{Start: 5, End: 4})
	assert.Equal(t, 2, c.NumPoints())
}

func TestLengthAndOutOfBounds(t *testing.T) {
	c := &autorec.PointCurve{}
	assert.Equal(t, 0.0, c.Length())
	c = points(0.5, 1, 2.5, 0)
	assert.Equal(t, 2.5, c.Length())
	assert.Equal(t, 0.0, c.PointTime(-1))
	assert.Equal(t, 0.0, c.PointValue(7))
}

func TestCopyIsDeep(t *testing.T) {
	c := points(0, 0, 1, 1)
	d := c.Copy()
	c.AddPoint(0.5, 9, autorec.Linear)
	assert.Equal(t, 2, d.NumPoints())
	e := autorec.CopyCurve(c)
	assert.Equal(t, c.Points, e.Points)
}

func TestSimplifyRemovesCollinearPoints(t *testing.T) {
	c := &autorec.PointCurve{}
	for i := 0; i <= 100; i++ {
		c.AddPoint(float64(i)*0.01, float64(i)*0.01, autorec.Linear)
	}
	c.Simplify(autorec.Range{Start: 0, End: 2}, 0.001, 1e-9)
	require.Equal(t, 2, c.NumPoints())
	assert.Equal(t, 0.0, c.PointTime(0))
	assert.InDelta(t, 1.0, c.PointTime(1), 1e-12)
}

func TestSimplifyKeepsJumps(t *testing.T) {
	c := points(0, 0, 1, 0, 1, 1, 2, 1)
	c.Simplify(autorec.Range{Start: 0, End: 2}, 0, 0.01)
	assert.Equal(t, 4, c.NumPoints())
	assert.Equal(t, 0.0, c.ValueAt(0.999, 0))
	assert.Equal(t, 1.0, c.ValueAt(1, 0))
}

func TestSimplifyOnlyTouchesRange(t *testing.T) {
	c := points(0, 0, 0.5, 0.5, 1, 1, 1.5, 1.5, 2, 2)
	c.Simplify(autorec.Range{Start: 1, End: 2}, 0, 0.01)
	assert.Equal(t, []float64{0, 0.5, 1, 2}, times(c))
}

func times(c *autorec.PointCurve) []float64 {
	ret := make([]float64, c.NumPoints())
	for i := range ret {
		ret[i] = c.PointTime(i)
	}
	return ret
}

func FuzzSimplify(f *testing.F) {
	f.Add([]byte{10, 200, 30, 40, 0, 0, 255, 7, 8, 9, 100, 100}, uint8(10))
	f.Add([]byte{1, 1, 1, 1, 1, 1, 1, 1}, uint8(0))
	f.Fuzz(func(t *testing.T, data []byte, tolByte uint8) {
		// every pair of bytes is a (time step, value) point; a zero time step
		// makes a jump
		c := &autorec.PointCurve{}
		tm := 0.0
		for i := 0; i+1 < len(data); i += 2 {
			tm += float64(data[i]%4) * 0.01
			shape := autorec.Linear
			if data[i]%16 == 15 {
				shape = autorec.Step
			}
			c.AddPoint(tm, float64(data[i+1])/255, shape)
		}
		orig := c.Copy()
		tol := float64(tolByte) / 1000
		c.Simplify(autorec.Range{Start: 0, End: tm}, 0.001, tol)
		if c.NumPoints() > orig.NumPoints() {
			t.Fatalf("simplify added points: %d > %d", c.NumPoints(), orig.NumPoints())
		}
		for i, p := range orig.Points {
			// at jumps the value just after the jump is what is heard
			if i+1 < len(orig.Points) && orig.Points[i+1].Time == p.Time {
				continue
			}
			want := orig.ValueAt(p.Time, 0)
			got := c.ValueAt(p.Time, 0)
			if math.Abs(want-got) > tol+1e-9 {
				t.Fatalf("value at %v changed from %v to %v, tolerance %v", p.Time, want, got, tol)
			}
		}
	})
}
