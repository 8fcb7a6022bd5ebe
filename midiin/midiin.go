// Package midiin maps MIDI control change messages to parameter value
// changes.
//
// MIDI knobs send values but no touch or release, so every mapped change is
// posted with autorec.ValueTrigger and the end of the gesture is left to the
// recorder's inactivity timer.
package midiin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vsariola/autorec"
	"github.com/vsariola/autorec/recorder"
	"gitlab.com/gomidi/midi/v2"
)

type (
	// Mapping binds one controller number on one MIDI channel to a
	// parameter, by name.
	Mapping struct {
		Channel    uint8  `yaml:"channel"`
		Controller uint8  `yaml:"controller"`
		Param      string `yaml:"param"`
	}

	// Router turns incoming control changes into recorder.ValueMsgs sent to
	// a broker. HandleMessage has the signature expected by midi.ListenTo.
	Router struct {
		broker *recorder.Broker
		log    logrus.FieldLogger

		mu     sync.Mutex
		routes map[key]*autorec.Parameter
	}

	key struct {
		channel, controller uint8
	}
)

var ErrNoDriver = errors.New("no MIDI driver available")

func NewRouter(broker *recorder.Broker, log logrus.FieldLogger) *Router {
	return &Router{broker: broker, log: log, routes: make(map[key]*autorec.Parameter)}
}

// Bind adds the mappings, resolving the parameter names with lookup. All
// mappings are tried; the returned error joins the ones that failed.
func (r *Router) Bind(mappings []Mapping, lookup func(name string) (*autorec.Parameter, bool)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, m := range mappings {
		if m.Channel > 15 || m.Controller > 127 {
			errs = append(errs, fmt.Errorf("midi mapping for %q: channel %d controller %d out of range", m.Param, m.Channel, m.Controller))
			continue
		}
		p, ok := lookup(m.Param)
		if !ok {
			errs = append(errs, fmt.Errorf("midi mapping: unknown parameter %q", m.Param))
			continue
		}
		r.routes[key{m.Channel, m.Controller}] = p
	}
	return errors.Join(errs...)
}

// HandleMessage routes msg if it is a mapped control change; everything else
// is ignored.
func (r *Router) HandleMessage(msg midi.Message, timestampms int32) {
	var channel, controller, value uint8
	if !msg.GetControlChange(&channel, &controller, &value) {
		return
	}
	r.mu.Lock()
	p, ok := r.routes[key{channel, controller}]
	r.mu.Unlock()
	if !ok {
		return
	}
	lo, hi := p.ValueRange()
	v := lo + float64(value)/127*(hi-lo)
	if !recorder.TrySend(r.broker.ToRecorder, any(recorder.ValueMsg{Param: p, Value: v, Trigger: autorec.ValueTrigger})) {
		r.log.WithField("param", p.Name()).Warn("midi: recorder queue full, dropping change")
	}
}
