package recorder

import (
	"math"

	"github.com/vsariola/autorec"
)

// strategy decides when buffered changes reach the curve. The incremental
// strategy drains the buffers on every flush tick; the whole-session
// strategy keeps everything buffered until punch-out.
type strategy interface {
	// tick is called by FlushAutomation for every open session.
	tick(m *Manager, s *session, snap autorec.TransportSnapshot)
	// commit writes whatever is still buffered, before finalizing.
	commit(m *Manager, s *session, snap autorec.TransportSnapshot)
	// mustFlushBeforeWrap tells if the buffer can only hold one loop wrap.
	mustFlushBeforeWrap() bool
}

func newStrategy(s autorec.Strategy) strategy {
	if s == autorec.WholeSession {
		return wholeSession{}
	}
	return incremental{}
}

type incremental struct{}

func (incremental) tick(m *Manager, s *session, snap autorec.TransportSnapshot) {
	m.flushSession(s, snap)
}

func (incremental) commit(m *Manager, s *session, snap autorec.TransportSnapshot) {
	m.flushSession(s, snap)
}

func (incremental) mustFlushBeforeWrap() bool { return true }

type wholeSession struct{}

func (wholeSession) tick(*Manager, *session, autorec.TransportSnapshot) {}

func (wholeSession) mustFlushBeforeWrap() bool { return false }

// commit splits the buffer into runs of non-decreasing time and writes each
// run as its own section. The last run is held until the current position.
func (wholeSession) commit(m *Manager, s *session, snap autorec.TransportSnapshot) {
	tol := m.settings.LoopWrapTolerance
	changes := s.pending(s.buffer)
	var runs [][]autorec.Change
	start := 0
	for i := 1; i < len(changes); i++ {
		if changes[i].Time < changes[i-1].Time-tol {
			runs = append(runs, changes[start:i])
			start = i
		}
	}
	runs = append(runs, changes[start:])
	last := s.lastValue()
	T := snap.Position
	for i, run := range runs {
		if len(run) == 0 {
			continue
		}
		r := autorec.Range{Start: run[0].Time, End: run[len(run)-1].Time}
		if i == 0 && s.anchored {
			r.Start = s.lastFlushed.Time
		}
		if i == len(runs)-1 && T >= r.Start {
			r.End = math.Max(r.End, T+s.glide)
			run = withTrailing(append([]autorec.Change(nil), run...), T+s.glide, last)
		}
		m.writeSection(s, r, run)
	}
	if T < s.lastTime() && len(changes) > 0 {
		T = changes[len(changes)-1].Time
	}
	s.lastFlushed = autorec.Change{Time: T, Value: last}
	s.anchored = true
	s.drain()
}
