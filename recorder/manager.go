package recorder

import (
	"bytes"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vsariola/autorec"
)

type (
	// Manager coordinates the recording sessions of all parameters. It
	// listens to the transport (stopping playback punches out everything)
	// and to the parameters registered with Register (value changes punch
	// in and record, gesture ends punch out depending on the mode).
	//
	// The session table is guarded by a mutex. The methods can be called
	// from any goroutine, though the intended caller is a single control
	// loop.
	Manager struct {
		transport autorec.Transport
		settings  autorec.Settings
		log       logrus.FieldLogger
		strategy  strategy

		mu        sync.Mutex
		sessions  map[uuid.UUID]*session
		params    map[uuid.UUID]*autorec.Parameter
		scheduler *FlushScheduler
		listeners []Listener
	}

	// Listener is notified when a parameter starts or stops recording.
	Listener interface {
		RecordingStatusChanged(p *autorec.Parameter, recording bool)
	}

	// Option configures a Manager.
	Option func(*Manager)

	// deferred collects the notifications that have to be delivered after
	// the manager lock is released, as the receivers may call back into the
	// manager.
	deferred []func()
)

// WithSettings sets the engine settings. Invalid settings are replaced by
// the defaults, with a warning.
func WithSettings(s autorec.Settings) Option {
	return func(m *Manager) {
		m.settings = s
	}
}

// WithLogger sets the logger; by default the logrus standard logger is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a Manager reading time from transport and subscribes
// it to the transport's playback notifications.
func NewManager(transport autorec.Transport, opts ...Option) *Manager {
	m := &Manager{
		transport: transport,
		settings:  autorec.DefaultSettings(),
		log:       logrus.StandardLogger(),
		sessions:  make(map[uuid.UUID]*session),
		params:    make(map[uuid.UUID]*autorec.Parameter),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.settings.Validate(); err != nil {
		m.log.WithError(err).Warn("invalid recorder settings, using defaults")
		m.settings = autorec.DefaultSettings()
	}
	m.strategy = newStrategy(m.settings.Strategy)
	transport.AddListener(m)
	return m
}

// Settings returns the settings the manager runs with.
func (m *Manager) Settings() autorec.Settings { return m.settings }

// Register makes the manager follow the value changes, gestures and mode
// changes of p.
func (m *Manager) Register(p *autorec.Parameter) {
	m.mu.Lock()
	m.params[p.ID()] = p
	m.mu.Unlock()
	p.AddListener(m)
}

// Unregister stops following p, dropping its session without finalizing.
func (m *Manager) Unregister(p *autorec.Parameter) {
	p.RemoveListener(m)
	var d deferred
	m.mu.Lock()
	delete(m.params, p.ID())
	m.dropSessionLocked(p, &d)
	m.mu.Unlock()
	d.run()
}

func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// PostFirstChange opens a recording session for p (punch-in), unless p is
// in read mode, already recording, deleted, or the transport is not
// playing. originalValue is the value p had before the change; it anchors
// the recorded section. Nothing is returned: use IsParameterRecording to see
// if a session was opened.
func (m *Manager) PostFirstChange(p *autorec.Parameter, originalValue float64, trigger autorec.Trigger) {
	var d deferred
	m.mu.Lock()
	m.postFirstChangeLocked(p, originalValue, trigger, &d)
	m.mu.Unlock()
	d.run()
}

func (m *Manager) postFirstChangeLocked(p *autorec.Parameter, originalValue float64, trigger autorec.Trigger, d *deferred) {
	mode := p.Mode()
	if !mode.Records() {
		p.ResetRecordingStatus()
		return
	}
	if p.IsDeleted() || !m.transport.IsPlaying() {
		return
	}
	if _, ok := m.sessions[p.ID()]; ok {
		return
	}
	if mode == autorec.Touch || mode == autorec.Latch {
		p.SetBypassed(false)
	}
	snap := autorec.TakeSnapshot(m.transport)
	s := newSession(p, originalValue, trigger, snap, m.settings.GlideLength)
	m.sessions[p.ID()] = s
	p.SetRecordingStatus(true)
	if trigger == autorec.ValueTrigger {
		m.armTimerLocked(s)
	}
	if m.scheduler == nil && m.settings.FlushInterval > 0 {
		m.scheduler = StartFlushScheduler(m.settings.FlushInterval, m.FlushAutomation)
	}
	m.log.WithFields(logrus.Fields{
		"param": p.Name(),
		"mode":  mode,
		"time":  snap.Position,
	}).Debug("punch in")
	m.notifyLocked(p, true, d)
}

// PostChange records value at time for p, if p has an open session.
func (m *Manager) PostChange(p *autorec.Parameter, time, value float64) {
	var d deferred
	m.mu.Lock()
	m.postChangeLocked(p, autorec.Change{Time: time, Value: value}, &d)
	m.mu.Unlock()
	d.run()
}

func (m *Manager) postChangeLocked(p *autorec.Parameter, c autorec.Change, d *deferred) {
	s, ok := m.sessions[p.ID()]
	if !ok {
		return
	}
	if p.Mode() == autorec.Read {
		// read is absorbing: the change is dropped and the session ended
		p.ResetRecordingStatus()
		m.punchOutLocked(p, false, d)
		return
	}
	tol := m.settings.LoopWrapTolerance
	if m.strategy.mustFlushBeforeWrap() && s.wouldWrapTwice(c, tol) {
		// the transport looped twice since the last flush; commit what we
		// have, ending at the latest buffered time, before taking more
		snap := autorec.TakeSnapshot(m.transport)
		snap.Position = s.lastTime()
		m.flushSession(s, snap)
	}
	s.append(c, tol)
	if s.trigger == autorec.ValueTrigger {
		m.armTimerLocked(s)
	}
}

// PunchOut finalizes and closes the session of p. With toEnd, the last value
// is held until the end of the curve. Calling PunchOut on a parameter
// without a session does nothing.
func (m *Manager) PunchOut(p *autorec.Parameter, toEnd bool) {
	var d deferred
	m.mu.Lock()
	m.punchOutLocked(p, toEnd, &d)
	m.mu.Unlock()
	d.run()
}

func (m *Manager) punchOutLocked(p *autorec.Parameter, toEnd bool, d *deferred) bool {
	s, ok := m.sessions[p.ID()]
	if !ok {
		m.log.WithField("param", p.Name()).WithError(autorec.ErrNoSession).Debug("punch out ignored")
		return false
	}
	if !p.IsDeleted() {
		m.finalize(s, toEnd)
	}
	m.closeSessionLocked(s, d)
	m.log.WithFields(logrus.Fields{
		"param":  p.Name(),
		"ranges": len(s.covered),
		"length": time.Since(s.opened),
	}).Debug("punch out")
	return true
}

// PunchOutAll punches out every open session.
func (m *Manager) PunchOutAll(toEnd bool) {
	var d deferred
	m.mu.Lock()
	for _, s := range m.sortedSessionsLocked() {
		m.punchOutLocked(s.param, toEnd, &d)
	}
	m.mu.Unlock()
	d.run()
}

// FlushAutomation drains the buffers of all open sessions into their
// curves. It is called periodically by the FlushScheduler.
func (m *Manager) FlushAutomation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) == 0 {
		return
	}
	snap := autorec.TakeSnapshot(m.transport)
	for _, s := range m.sortedSessionsLocked() {
		if s.param.IsDeleted() {
			continue
		}
		m.strategy.tick(m, s, snap)
	}
}

// Relocate prepares the open sessions for the play head moving to pos: what
// was recorded so far is flushed and glides back to the previous
// automation, and recording continues from pos with the last recorded value
// as its anchor. Call it before moving the transport.
func (m *Manager) Relocate(pos float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) == 0 {
		return
	}
	snap := autorec.TakeSnapshot(m.transport)
	for _, s := range m.sortedSessionsLocked() {
		if s.param.IsDeleted() {
			continue
		}
		m.strategy.commit(m, s, snap)
		if s.glide > 0 {
			m.applyGlide(s)
		}
		s.lastFlushed = autorec.Change{Time: pos, Value: s.lastFlushed.Value}
		s.anchored = false
	}
}

// ParameterChangeGestureEnd reacts to the user letting go of the control of
// p: touch punches out, write punches out and switches to latch, read and
// latch do nothing.
func (m *Manager) ParameterChangeGestureEnd(p *autorec.Parameter) {
	var d deferred
	m.mu.Lock()
	m.gestureEndLocked(p, &d)
	m.mu.Unlock()
	d.run()
}

func (m *Manager) gestureEndLocked(p *autorec.Parameter, d *deferred) {
	switch ResolveGestureEnd(p.Mode()) {
	case PunchOut:
		m.punchOutLocked(p, false, d)
	case PunchOutThenLatch:
		if m.punchOutLocked(p, false, d) {
			*d = append(*d, func() { p.SetMode(autorec.Latch) })
		}
	}
}

// IsRecording returns true if any parameter is being recorded.
func (m *Manager) IsRecording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions) > 0
}

// IsParameterRecording returns true if p has an open session.
func (m *Manager) IsParameterRecording(p *autorec.Parameter) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[p.ID()]
	return ok
}

// Close punches out all sessions and stops the flush scheduler, waiting at
// most timeout for it to exit.
func (m *Manager) Close(timeout time.Duration) {
	m.PunchOutAll(false)
	m.mu.Lock()
	sched := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()
	if sched == nil {
		return
	}
	sched.Stop()
	select {
	case <-sched.Finished():
	case <-time.After(timeout):
		m.log.Warn("flush scheduler did not finish in time")
	}
}

// PlaybackStateChanged implements autorec.TransportListener. Stopping
// punches out every session and clears the table even if punch-out was
// already done; starting punches in all write-mode parameters.
func (m *Manager) PlaybackStateChanged(playing bool) {
	if !playing {
		m.PunchOutAll(false)
		var d deferred
		m.mu.Lock()
		for _, s := range m.sortedSessionsLocked() {
			m.closeSessionLocked(s, &d)
		}
		m.mu.Unlock()
		d.run()
		return
	}
	var d deferred
	m.mu.Lock()
	for _, p := range m.sortedParamsLocked() {
		if p.Mode() == autorec.Write {
			m.postFirstChangeLocked(p, p.CurrentBaseValue(), autorec.GestureTrigger, &d)
		}
	}
	m.mu.Unlock()
	d.run()
}

// CurrentValueChanged implements autorec.ParameterListener: the first change
// punches in, every change is recorded at the current transport position.
func (m *Manager) CurrentValueChanged(p *autorec.Parameter, old, new float64, trigger autorec.Trigger) {
	if !m.transport.IsPlaying() {
		return
	}
	var d deferred
	m.mu.Lock()
	if _, ok := m.sessions[p.ID()]; !ok {
		m.postFirstChangeLocked(p, old, trigger, &d)
	}
	m.postChangeLocked(p, autorec.Change{Time: m.transport.Position(), Value: new}, &d)
	m.mu.Unlock()
	d.run()
}

// GestureEnded implements autorec.ParameterListener.
func (m *Manager) GestureEnded(p *autorec.Parameter) {
	m.ParameterChangeGestureEnd(p)
}

// ModeChanged implements autorec.ParameterListener.
func (m *Manager) ModeChanged(p *autorec.Parameter, old, new autorec.Mode) {
	var d deferred
	m.mu.Lock()
	_, recording := m.sessions[p.ID()]
	switch ResolveModeChange(old, new, m.transport.IsPlaying(), recording) {
	case PunchIn:
		m.postFirstChangeLocked(p, p.CurrentBaseValue(), autorec.GestureTrigger, &d)
	case PunchOut:
		m.punchOutLocked(p, false, &d)
		p.ResetRecordingStatus()
	}
	m.mu.Unlock()
	d.run()
	m.log.WithFields(logrus.Fields{"param": p.Name(), "from": old, "to": new}).Debug("mode changed")
}

// ParameterDeleted implements autorec.ParameterListener: the session is
// dropped without finalizing. What was flushed stays in the curve, the
// buffer is lost.
func (m *Manager) ParameterDeleted(p *autorec.Parameter) {
	var d deferred
	m.mu.Lock()
	delete(m.params, p.ID())
	m.dropSessionLocked(p, &d)
	m.mu.Unlock()
	d.run()
}

func (m *Manager) dropSessionLocked(p *autorec.Parameter, d *deferred) {
	if s, ok := m.sessions[p.ID()]; ok {
		m.log.WithField("param", p.Name()).WithError(autorec.ErrParamDeleted).Debug("session dropped")
		m.closeSessionLocked(s, d)
	}
}

func (m *Manager) closeSessionLocked(s *session, d *deferred) {
	if cur, ok := m.sessions[s.param.ID()]; ok && cur == s {
		delete(m.sessions, s.param.ID())
	}
	s.close()
	s.param.ResetRecordingStatus()
	m.notifyLocked(s.param, false, d)
	if len(m.sessions) == 0 && m.scheduler != nil {
		m.scheduler.Stop()
		m.scheduler = nil
	}
}

func (m *Manager) notifyLocked(p *autorec.Parameter, recording bool, d *deferred) {
	for _, l := range m.listeners {
		*d = append(*d, func() { l.RecordingStatusChanged(p, recording) })
	}
}

// sortedSessionsLocked returns the open sessions ordered by parameter name,
// so that flushes and punch-outs happen in a deterministic order.
func (m *Manager) sortedSessionsLocked() []*session {
	ret := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		ret = append(ret, s)
	}
	slices.SortFunc(ret, func(a, b *session) int { return compareParams(a.param, b.param) })
	return ret
}

func (m *Manager) sortedParamsLocked() []*autorec.Parameter {
	ret := make([]*autorec.Parameter, 0, len(m.params))
	for _, p := range m.params {
		ret = append(ret, p)
	}
	slices.SortFunc(ret, compareParams)
	return ret
}

func compareParams(a, b *autorec.Parameter) int {
	if a.Name() != b.Name() {
		if a.Name() < b.Name() {
			return -1
		}
		return 1
	}
	ia, ib := a.ID(), b.ID()
	return bytes.Compare(ia[:], ib[:])
}

func (d deferred) run() {
	for _, f := range d {
		f()
	}
}
