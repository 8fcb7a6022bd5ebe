package recorder

import (
	"time"
)

// armTimerLocked (re)starts the inactivity timer of s. Value-triggered
// sessions have no explicit gesture end, so one is synthesized after
// GestureTimeout without changes.
func (m *Manager) armTimerLocked(s *session) {
	timeout := m.settings.GestureTimeout
	if timeout <= 0 {
		return
	}
	s.stopTimer()
	gen := s.timerGen
	s.timer = time.AfterFunc(timeout, func() { m.gestureTimeout(s, gen) })
}

// gestureTimeout fires on the timer goroutine. The session may have been
// closed, replaced or re-armed in the meantime; in all those cases the
// callback does nothing.
func (m *Manager) gestureTimeout(s *session, gen uint64) {
	var d deferred
	m.mu.Lock()
	cur, ok := m.sessions[s.param.ID()]
	if ok && cur == s && !s.closed && s.timerGen == gen {
		s.timer = nil
		m.log.WithField("param", s.param.Name()).Debug("gesture timed out")
		m.gestureEndLocked(s.param, &d)
	}
	m.mu.Unlock()
	d.run()
}
