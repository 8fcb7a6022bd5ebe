package recorder

import (
	"time"

	"github.com/vsariola/autorec"
)

// session is the bookkeeping of one parameter being recorded. It is only
// accessed while holding the Manager lock.
type session struct {
	param *autorec.Parameter

	// buffer holds the changes received since the last flush, in receipt
	// order. Times are non-decreasing except for at most one backward jump,
	// at index jump.
	buffer []autorec.Change
	jump   int // index of the first change after the wrap, or -1

	lastFlushed autorec.Change
	anchored    bool // a section has been written since punch-in or relocation

	glide          float64
	covered        autorec.RangeSet
	originalValue  float64
	loopEnd        float64 // loop end at punch-in, if looping
	loopCached     bool
	valueAtLoopEnd float64
	hasLoopEnd     bool // the curve reached loopEnd before the recording
	modeAtOpen     autorec.Mode
	trigger        autorec.Trigger
	opened         time.Time

	// original is a copy of the curve as it was at punch-in, used to sample
	// the automation the recording replaced.
	original *autorec.PointCurve

	timer    *time.Timer
	timerGen uint64
	closed   bool
}

func newSession(p *autorec.Parameter, originalValue float64, trigger autorec.Trigger, snap autorec.TransportSnapshot, glide float64) *session {
	s := &session{
		param:         p,
		jump:          -1,
		lastFlushed:   autorec.Change{Time: snap.Position, Value: originalValue},
		glide:         glide,
		originalValue: originalValue,
		modeAtOpen:    p.Mode(),
		trigger:       trigger,
		opened:        time.Now(),
	}
	p.EditCurve(func(c autorec.Curve) {
		s.original = autorec.CopyCurve(c)
	})
	if snap.Looping() {
		s.valueAtLoopEnd, s.hasLoopEnd = s.automationPast(snap.Loop.End)
		s.loopEnd, s.loopCached = snap.Loop.End, true
	}
	return s
}

// automationPast returns the value the curve had just past t before the
// recording, and whether the curve reached t at all. A curve ending before
// t has nothing there to return to.
func (s *session) automationPast(t float64) (float64, bool) {
	if s.original.NumPoints() == 0 || s.original.Length() < t {
		return 0, false
	}
	return s.original.ValueAt(t+autorec.Epsilon, s.originalValue), true
}

// loopEndValue returns the automation past the loop end, from the value
// cached at punch-in when the loop has not moved since.
func (s *session) loopEndValue(end float64) (float64, bool) {
	if s.loopCached && s.loopEnd == end {
		return s.valueAtLoopEnd, s.hasLoopEnd
	}
	return s.automationPast(end)
}

// lastTime returns the time of the latest change seen by the session, either
// buffered or flushed.
func (s *session) lastTime() float64 {
	if len(s.buffer) > 0 {
		return s.buffer[len(s.buffer)-1].Time
	}
	return s.lastFlushed.Time
}

// lastValue returns the most recent value of the session.
func (s *session) lastValue() float64 {
	if len(s.buffer) > 0 {
		return s.buffer[len(s.buffer)-1].Value
	}
	return s.lastFlushed.Value
}

// wouldWrapTwice reports whether appending c would introduce a second
// backward jump to the buffer.
func (s *session) wouldWrapTwice(c autorec.Change, tolerance float64) bool {
	return s.jump >= 0 && c.Time < s.lastTime()-tolerance
}

// append adds c to the buffer, recording the position of a backward jump.
func (s *session) append(c autorec.Change, tolerance float64) {
	if s.jump < 0 && c.Time < s.lastTime()-tolerance {
		s.jump = len(s.buffer)
	}
	s.buffer = append(s.buffer, c)
}

// drain empties the buffer, keeping its capacity.
func (s *session) drain() {
	s.buffer = s.buffer[:0]
	s.jump = -1
}

// pending returns the buffered changes prefixed with the last flushed
// change: the punch-in anchor on the first flush, afterwards the value held
// since the previous flush, which the new section would otherwise erase.
func (s *session) pending(changes []autorec.Change) []autorec.Change {
	ret := make([]autorec.Change, 0, len(changes)+1)
	ret = append(ret, s.lastFlushed)
	return append(ret, changes...)
}

// stopTimer cancels the inactivity timer; a timer that already fired will
// see the new generation and do nothing.
func (s *session) stopTimer() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *session) close() {
	s.stopTimer()
	s.closed = true
	s.buffer = nil
}
