package autorec

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type (
	// Parameter is an automatable control of the engine: a fader, a knob or
	// a switch. It owns its automation curve; the recording engine is given
	// mutating access to the curve only while a recording session is open,
	// through EditCurve.
	Parameter struct {
		id        uuid.UUID
		name      string
		valueMin  float64
		valueMax  float64
		numStates int

		recording atomic.Bool
		deleted   atomic.Bool

		mu        sync.Mutex // guards the fields below
		curve     Curve
		value     float64
		mode      Mode
		bypassed  bool
		listeners []ParameterListener
	}

	// ParameterConfig describes a parameter to be created with NewParameter.
	// States > 1 makes the parameter discrete, with States legal values
	// spread evenly over [Min, Max].
	ParameterConfig struct {
		Name   string  `yaml:"name"`
		Min    float64 `yaml:"min"`
		Max    float64 `yaml:"max"`
		States int     `yaml:"states,omitempty"`
		Value  float64 `yaml:"value"`
		Mode   Mode    `yaml:"mode"`
	}

	// ParameterListener receives the notifications of a Parameter. The
	// methods are called synchronously on the goroutine that caused the
	// change, after the parameter has released its own lock.
	ParameterListener interface {
		CurrentValueChanged(p *Parameter, old, new float64, trigger Trigger)
		GestureEnded(p *Parameter)
		ModeChanged(p *Parameter, old, new Mode)
		ParameterDeleted(p *Parameter)
	}

	// Trigger tells what caused a value change. Gesture changes come from
	// controls that report when the user lets go (mouse, touch faders, OSC
	// surfaces with touch messages); Value changes come from sources that
	// only send values (MIDI CC knobs), for which the end of the gesture has
	// to be guessed from inactivity.
	Trigger int
)

const (
	GestureTrigger Trigger = iota
	ValueTrigger
)

func (t Trigger) String() string {
	if t == ValueTrigger {
		return "value"
	}
	return "gesture"
}

// NewParameter creates a parameter with an empty PointCurve.
func NewParameter(cfg ParameterConfig) (*Parameter, error) {
	if !(cfg.Min < cfg.Max) {
		return nil, fmt.Errorf("parameter %q: %w", cfg.Name, ErrInvalidRange)
	}
	p := &Parameter{
		id:        uuid.New(),
		name:      cfg.Name,
		valueMin:  cfg.Min,
		valueMax:  cfg.Max,
		numStates: cfg.States,
		curve:     &PointCurve{},
		mode:      cfg.Mode,
	}
	if p.numStates == 1 {
		p.numStates = 0
	}
	p.value = p.SnapToState(cfg.Value)
	return p, nil
}

func (p *Parameter) ID() uuid.UUID { return p.id }
func (p *Parameter) Name() string  { return p.name }

func (p *Parameter) String() string { return p.name }

// ValueRange returns the inclusive range of legal values.
func (p *Parameter) ValueRange() (min, max float64) { return p.valueMin, p.valueMax }

// IsDiscrete returns true if the parameter only has a finite set of legal
// values.
func (p *Parameter) IsDiscrete() bool { return p.numStates > 1 }

// NumStates returns the number of legal values of a discrete parameter, or 0
// for continuous parameters.
func (p *Parameter) NumStates() int { return p.numStates }

// SnapToState maps v to the nearest legal value: clamped to the value range
// and, for discrete parameters, rounded to the nearest state.
func (p *Parameter) SnapToState(v float64) float64 {
	if math.IsNaN(v) {
		v = p.valueMin
	}
	v = math.Max(p.valueMin, math.Min(p.valueMax, v))
	if p.numStates > 1 {
		step := (p.valueMax - p.valueMin) / float64(p.numStates-1)
		v = p.valueMin + math.Round((v-p.valueMin)/step)*step
	}
	return v
}

// Curve returns the automation curve of the parameter. Callers other than
// the owner should use EditCurve or ValueAt to synchronize with playback.
func (p *Parameter) Curve() Curve {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.curve
}

// SetCurve replaces the automation curve.
func (p *Parameter) SetCurve(c Curve) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.curve = c
}

// EditCurve calls f with the curve while holding the parameter lock.
func (p *Parameter) EditCurve(f func(c Curve)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f(p.curve)
}

// CurrentBaseValue returns the value of the parameter when no automation is
// applied, i.e. the last value set with SetValue.
func (p *Parameter) CurrentBaseValue() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// ValueAt returns the value the parameter has at the given transport time:
// the curve value, or the base value if the curve is empty or bypassed.
func (p *Parameter) ValueAt(time float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bypassed || p.curve == nil {
		return p.value
	}
	return p.curve.ValueAt(time, p.value)
}

func (p *Parameter) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// SetMode changes the automation mode and notifies the listeners if it
// changed.
func (p *Parameter) SetMode(m Mode) {
	p.mu.Lock()
	old := p.mode
	p.mode = m
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()
	if old == m {
		return
	}
	for _, l := range listeners {
		l.ModeChanged(p, old, m)
	}
}

func (p *Parameter) IsBypassed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bypassed
}

// SetBypassed toggles whether the automation curve is ignored in playback.
func (p *Parameter) SetBypassed(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bypassed = v
}

// IsRecording returns the recording-status flag, set by the recording
// engine while a session is open for this parameter.
func (p *Parameter) IsRecording() bool { return p.recording.Load() }

func (p *Parameter) SetRecordingStatus(v bool) { p.recording.Store(v) }
func (p *Parameter) ResetRecordingStatus()     { p.recording.Store(false) }

// IsDeleted returns true after Delete has been called.
func (p *Parameter) IsDeleted() bool { return p.deleted.Load() }

// SetValue sets the base value of the parameter, as a result of the user
// moving a control. The value is snapped to a legal value. Listeners are
// notified even if the value did not change, as the engine needs to see
// every touch of the control.
func (p *Parameter) SetValue(v float64, trigger Trigger) {
	if p.deleted.Load() {
		return
	}
	v = p.SnapToState(v)
	p.mu.Lock()
	old := p.value
	p.value = v
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()
	for _, l := range listeners {
		l.CurrentValueChanged(p, old, v, trigger)
	}
}

// EndGesture tells the listeners that the user let go of the control.
func (p *Parameter) EndGesture() {
	if p.deleted.Load() {
		return
	}
	for _, l := range p.copyListeners() {
		l.GestureEnded(p)
	}
}

// Delete marks the parameter removed from the engine and notifies the
// listeners. Calling Delete more than once has no effect.
func (p *Parameter) Delete() {
	if p.deleted.Swap(true) {
		return
	}
	p.recording.Store(false)
	for _, l := range p.copyListeners() {
		l.ParameterDeleted(p)
	}
}

func (p *Parameter) AddListener(l ParameterListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slices.Contains(p.listeners, l) {
		return
	}
	p.listeners = append(p.listeners, l)
}

func (p *Parameter) RemoveListener(l ParameterListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = slices.DeleteFunc(p.listeners, func(e ParameterListener) bool { return e == l })
}

func (p *Parameter) copyListeners() []ParameterListener {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.listeners)
}
