package recorder

import (
	"math"

	"github.com/vsariola/autorec"
)

// finalize commits the rest of the session to the curve: the remaining
// buffer, the hold to the end of the curve when toEnd is set, the glide back
// to the previous automation and the simplification of the recorded ranges.
func (m *Manager) finalize(s *session, toEnd bool) {
	snap := autorec.TakeSnapshot(m.transport)
	m.strategy.commit(m, s, snap)
	if toEnd {
		m.holdToEnd(s)
	}
	if s.glide > 0 {
		m.applyGlide(s)
	}
	if m.settings.SimplifyAfterRecording {
		m.simplify(s)
	}
}

// holdToEnd extends the last recorded value to the end of the curve.
func (m *Manager) holdToEnd(s *session) {
	var length float64
	s.param.EditCurve(func(c autorec.Curve) { length = c.Length() })
	L := s.lastFlushed.Time
	end := math.Max(L, length+autorec.MinTick)
	if end <= L {
		return
	}
	v := s.lastFlushed.Value
	m.writeSection(s, autorec.Range{Start: L, End: end}, []autorec.Change{{Time: end, Value: v}})
	s.lastFlushed = autorec.Change{Time: end, Value: v}
}

// applyGlide replaces whatever was written in the glide window after the
// last flushed point with a single point holding the value the curve had
// there before the recording, so playback ramps back into the old
// automation instead of jumping.
func (m *Manager) applyGlide(s *session) {
	t := s.lastFlushed.Time + s.glide
	v := s.param.SnapToState(s.original.ValueAt(t, s.originalValue))
	if s.param.IsDeleted() {
		return
	}
	L := s.lastFlushed.Time
	last := s.param.SnapToState(s.lastFlushed.Value)
	s.param.EditCurve(func(c autorec.Curve) {
		c.RemovePointsInRegion(autorec.Range{Start: L + autorec.Epsilon, End: t})
		if !hasPoint(c, L, last) {
			c.AddPoint(L, last, autorec.Linear)
		}
		if s.param.IsDiscrete() && v != last {
			c.AddPoint(t, last, autorec.Linear)
		}
		c.AddPoint(t, v, autorec.Linear)
	})
	s.covered.Add(autorec.Range{Start: s.lastFlushed.Time, End: t})
}

// hasPoint reports whether the last point of c at time t, within Epsilon,
// has value v.
func hasPoint(c autorec.Curve, t, v float64) bool {
	for i := c.NumPoints() - 1; i >= 0; i-- {
		pt := c.PointTime(i)
		if pt < t-autorec.Epsilon {
			return false
		}
		if pt <= t+autorec.Epsilon {
			return c.PointValue(i) == v
		}
	}
	return false
}

// simplify thins every covered range of the session.
func (m *Manager) simplify(s *session) {
	if s.param.IsDeleted() {
		return
	}
	lo, hi := s.param.ValueRange()
	valueTol := m.settings.SimplifyValueTolerance * (hi - lo)
	timeTol := m.settings.SimplifyTimeTolerance
	s.param.EditCurve(func(c autorec.Curve) {
		for _, r := range s.covered {
			c.Simplify(r.Expanded(autorec.Epsilon), timeTol, valueTol)
		}
	})
}
