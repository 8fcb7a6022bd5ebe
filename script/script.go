// Package script replays a scripted performance, written in YAML, through
// the recording engine. It drives a manual transport, so the result does not
// depend on wall clock time.
package script

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/vsariola/autorec"
	"github.com/vsariola/autorec/recorder"
	"gopkg.in/yaml.v3"
)

type (
	// Script is a set of parameters and a list of events applied to them.
	Script struct {
		Settings   *autorec.Settings `yaml:"settings,omitempty"`
		Loop       *autorec.Range    `yaml:"loop,omitempty"`
		Parameters []Parameter       `yaml:"parameters"`
		Events     []Event           `yaml:"events"`
	}

	// Parameter is a parameter with optional pre-existing automation.
	Parameter struct {
		autorec.ParameterConfig `yaml:",inline"`
		Curve                   []autorec.Point `yaml:"curve,omitempty"`
	}

	// Event happens at transport position At, if given; moving At backwards
	// while looping is how a loop wrap is scripted. An event can carry
	// several actions, which are applied in the order of the fields below.
	Event struct {
		At      *float64       `yaml:"at,omitempty"`
		Loop    *autorec.Range `yaml:"loop,omitempty"`
		Play    *bool          `yaml:"play,omitempty"`
		Param   string         `yaml:"param,omitempty"`
		Mode    *autorec.Mode  `yaml:"mode,omitempty"`
		Value   *float64       `yaml:"value,omitempty"`
		Trigger string         `yaml:"trigger,omitempty"`
		Release bool           `yaml:"release,omitempty"`
		Delete  bool           `yaml:"delete,omitempty"`
		Flush   bool           `yaml:"flush,omitempty"`
		Locate  *float64       `yaml:"locate,omitempty"`
	}

	// Runner owns the engine a script is replayed through.
	Runner struct {
		Transport *autorec.ManualTransport
		Manager   *recorder.Manager
		Params    []*autorec.Parameter

		byName map[string]*autorec.Parameter
		log    logrus.FieldLogger
	}
)

var ErrUnknownParam = errors.New("unknown parameter")

// Load decodes a script.
func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("could not decode script: %w", err)
	}
	return &s, nil
}

// NewRunner creates the parameters of s and a manager recording them.
// settings is used unless the script has settings of its own. The flush
// scheduler and the gesture timeout are disabled, as the script is replayed
// faster than real time; use flush events instead.
func NewRunner(s *Script, settings autorec.Settings, log logrus.FieldLogger) (*Runner, error) {
	if s.Settings != nil {
		settings = *s.Settings
	}
	settings.FlushInterval = 0
	settings.GestureTimeout = 0
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		Transport: &autorec.ManualTransport{},
		byName:    make(map[string]*autorec.Parameter),
		log:       log,
	}
	if s.Loop != nil {
		r.Transport.SetLoop(*s.Loop)
	}
	r.Manager = recorder.NewManager(r.Transport, recorder.WithSettings(settings), recorder.WithLogger(log))
	for _, cfg := range s.Parameters {
		if _, ok := r.byName[cfg.Name]; ok {
			return nil, fmt.Errorf("parameter %q defined twice", cfg.Name)
		}
		p, err := autorec.NewParameter(cfg.ParameterConfig)
		if err != nil {
			return nil, err
		}
		if len(cfg.Curve) > 0 {
			c := &autorec.PointCurve{}
			for _, pt := range cfg.Curve {
				c.AddPoint(pt.Time, pt.Value, pt.Shape)
			}
			p.SetCurve(c)
		}
		r.byName[cfg.Name] = p
		r.Params = append(r.Params, p)
		r.Manager.Register(p)
	}
	return r, nil
}

// Lookup finds a parameter by name.
func (r *Runner) Lookup(name string) (*autorec.Parameter, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Run applies the events in order and finally stops the transport, which
// punches out every open session.
func (r *Runner) Run(events []Event) error {
	for i, e := range events {
		if err := r.apply(e); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	r.Transport.SetPlaying(false)
	r.Manager.Close(0)
	return nil
}

func (r *Runner) apply(e Event) error {
	var p *autorec.Parameter
	if e.Param != "" {
		var ok bool
		if p, ok = r.byName[e.Param]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownParam, e.Param)
		}
	}
	needParam := func(what string) error {
		if p == nil {
			return fmt.Errorf("%s needs a param", what)
		}
		return nil
	}
	if e.At != nil {
		r.Transport.SetPosition(*e.At)
	}
	if e.Loop != nil {
		r.Transport.SetLoop(*e.Loop)
	}
	if e.Play != nil {
		r.Transport.SetPlaying(*e.Play)
	}
	if e.Locate != nil {
		r.Manager.Relocate(*e.Locate)
		r.Transport.SetPosition(*e.Locate)
	}
	if e.Mode != nil {
		if err := needParam("mode"); err != nil {
			return err
		}
		p.SetMode(*e.Mode)
	}
	if e.Value != nil {
		if err := needParam("value"); err != nil {
			return err
		}
		trigger := autorec.GestureTrigger
		switch e.Trigger {
		case "", "gesture":
		case "value":
			trigger = autorec.ValueTrigger
		default:
			return fmt.Errorf("unknown trigger %q", e.Trigger)
		}
		p.SetValue(*e.Value, trigger)
	}
	if e.Release {
		if err := needParam("release"); err != nil {
			return err
		}
		p.EndGesture()
	}
	if e.Delete {
		if err := needParam("delete"); err != nil {
			return err
		}
		p.Delete()
	}
	if e.Flush {
		r.Manager.FlushAutomation()
	}
	r.log.WithField("at", r.Transport.Position()).Debug("script event applied")
	return nil
}
