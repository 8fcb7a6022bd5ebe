package recorder

import (
	"fmt"
	"math"

	"github.com/vsariola/autorec"
)

// flushSession drains the buffer of s into the curve, using the transport
// snapshot to decide where the recorded section ends and whether the
// transport has looped since the previous flush.
func (m *Manager) flushSession(s *session, snap autorec.TransportSnapshot) {
	tol := m.settings.LoopWrapTolerance
	L, T := s.lastFlushed.Time, snap.Position
	wrapped := T < L-tol || s.jump >= 0
	switch {
	case !wrapped:
		m.flushContiguous(s, math.Max(T, L))
	case snap.Looping():
		m.flushWrapped(s, T, snap.Loop)
	default:
		m.flushRelocated(s, T)
	}
}

// flushContiguous writes the buffer as one section over [L, T+G], holding the
// last value up to T+G.
func (m *Manager) flushContiguous(s *session, T float64) {
	L, G := s.lastFlushed.Time, s.glide
	if len(s.buffer) == 0 && s.anchored && T <= L {
		return // nothing moved
	}
	last := s.lastValue()
	changes := s.pending(s.buffer)
	changes = withTrailing(changes, T+G, last)
	m.writeSection(s, autorec.Range{Start: L, End: T + G}, changes)
	s.lastFlushed = autorec.Change{Time: T, Value: last}
	s.anchored = true
	s.drain()
}

// flushWrapped splits the buffer at the loop seam. The changes before the
// wrap are written up to the loop end, followed by two boundary points: the
// recorded value and the value the curve had past the loop end. The changes
// after the wrap are written from the loop start, continuing from the
// recorded value.
func (m *Manager) flushWrapped(s *session, T float64, loop autorec.Range) {
	L, G := s.lastFlushed.Time, s.glide
	split := len(s.buffer)
	if s.jump >= 0 {
		split = s.jump
	} else if len(s.buffer) > 0 && s.buffer[0].Time < L-m.settings.LoopWrapTolerance {
		split = 0
	}
	headEnd := T + G
	var tail, head []autorec.Change
	for _, c := range s.buffer[:split] {
		if c.Time >= L-m.settings.LoopWrapTolerance && c.Time < loop.End {
			tail = append(tail, c)
		}
	}
	for _, c := range s.buffer[split:] {
		if c.Time >= loop.Start && c.Time <= headEnd {
			head = append(head, c)
		}
	}
	tailFinal := s.lastFlushed.Value
	if len(tail) > 0 {
		tailFinal = tail[len(tail)-1].Value
	}
	if loop.End > L {
		tailChanges := append(s.pending(tail), autorec.Change{Time: loop.End, Value: tailFinal})
		if v, ok := s.loopEndValue(loop.End); ok {
			tailChanges = append(tailChanges, autorec.Change{Time: loop.End, Value: v})
		}
		m.writeSection(s, autorec.Range{Start: L, End: loop.End}, tailChanges)
	}
	headFinal := tailFinal
	if len(head) > 0 {
		headFinal = head[len(head)-1].Value
	}
	headChanges := make([]autorec.Change, 0, len(head)+2)
	headChanges = append(headChanges, autorec.Change{Time: loop.Start, Value: tailFinal})
	headChanges = append(headChanges, head...)
	headChanges = withTrailing(headChanges, headEnd, headFinal)
	m.writeSection(s, autorec.Range{Start: loop.Start, End: headEnd}, headChanges)
	s.lastFlushed = autorec.Change{Time: T, Value: headFinal}
	s.anchored = true
	s.drain()
}

// flushRelocated handles the position jumping backwards without a loop,
// i.e. the user moved the play head while recording. The changes before the
// jump end where they were recorded; recording continues from the new
// position.
func (m *Manager) flushRelocated(s *session, T float64) {
	L, G := s.lastFlushed.Time, s.glide
	split := len(s.buffer)
	if s.jump >= 0 {
		split = s.jump
	} else if len(s.buffer) > 0 && s.buffer[0].Time < L-m.settings.LoopWrapTolerance {
		split = 0
	}
	before := s.pending(s.buffer[:split])
	if len(before) > 0 {
		end := math.Max(L, before[len(before)-1].Time)
		m.writeSection(s, autorec.Range{Start: L, End: end}, before)
	}
	after := s.buffer[split:]
	last := s.lastValue()
	start := T
	if len(after) > 0 {
		start = math.Min(T, after[0].Time)
	}
	changes := withTrailing(append([]autorec.Change(nil), after...), T+G, last)
	m.writeSection(s, autorec.Range{Start: start, End: T + G}, changes)
	s.lastFlushed = autorec.Change{Time: T, Value: last}
	s.anchored = true
	s.drain()
}

// writeSection writes a section to the curve and records it as covered.
// Errors are not propagated: a section that cannot be written is dropped.
func (m *Manager) writeSection(s *session, r autorec.Range, changes []autorec.Change) {
	if err := flushSection(s.param, r, changes); err != nil {
		m.log.WithError(err).WithField("param", s.param.Name()).Debug("section not written")
		return
	}
	s.covered.Add(r)
}

// flushSection replaces the points of the curve in (r.Start, r.End] with
// one point per change, mapped through the parameter's legal values.
// Discrete parameters get each value transition written as two points at
// the same time, the old value followed by the new, so playback snaps
// instead of ramping.
func flushSection(p *autorec.Parameter, r autorec.Range, changes []autorec.Change) error {
	if p.IsDeleted() {
		return autorec.ErrParamDeleted
	}
	if len(changes) == 0 {
		return fmt.Errorf("%w: no changes for [%v, %v]", autorec.ErrEmptyRange, r.Start, r.End)
	}
	if r.End < r.Start {
		return fmt.Errorf("%w: [%v, %v]", autorec.ErrEmptyRange, r.Start, r.End)
	}
	discrete := p.IsDiscrete()
	p.EditCurve(func(c autorec.Curve) {
		c.RemovePointsInRegion(autorec.Range{Start: r.Start + autorec.Epsilon, End: r.End})
		prev := math.NaN()
		if discrete {
			// hold the value the curve has before the section until the
			// first change
			prev = p.SnapToState(c.ValueAt(changes[0].Time-autorec.Epsilon, changes[0].Value))
		}
		for i, ch := range changes {
			v := p.SnapToState(ch.Value)
			if i == 0 && hasPoint(c, ch.Time, v) {
				prev = v
				continue
			}
			if discrete && !math.IsNaN(prev) {
				if v == prev {
					if i < len(changes)-1 {
						continue
					}
				} else {
					c.AddPoint(ch.Time, prev, autorec.Linear)
				}
			}
			c.AddPoint(ch.Time, v, autorec.Linear)
			prev = v
		}
	})
	return nil
}

// withTrailing appends a point holding value at time end, unless the last
// change is already at or past end.
func withTrailing(changes []autorec.Change, end, value float64) []autorec.Change {
	if n := len(changes); n > 0 && changes[n-1].Time >= end-autorec.Epsilon {
		return changes
	}
	return append(changes, autorec.Change{Time: end, Value: value})
}
