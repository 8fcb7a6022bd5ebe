package midiin_test

import (
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/autorec"
	"github.com/vsariola/autorec/midiin"
	"github.com/vsariola/autorec/recorder"
	"gitlab.com/gomidi/midi/v2"
)

func newRouter(t *testing.T) (*midiin.Router, *recorder.Broker, *autorec.Parameter) {
	logger, _ := logtest.NewNullLogger()
	b := recorder.NewBroker()
	r := midiin.NewRouter(b, logger)
	p, err := autorec.NewParameter(autorec.ParameterConfig{Name: "cutoff", Min: -1, Max: 1})
	require.NoError(t, err)
	lookup := func(name string) (*autorec.Parameter, bool) {
		if name == p.Name() {
			return p, true
		}
		return nil, false
	}
	require.NoError(t, r.Bind([]midiin.Mapping{{Channel: 2, Controller: 74, Param: "cutoff"}}, lookup))
	return r, b, p
}

func TestControlChangeIsScaledToRange(t *testing.T) {
	r, b, p := newRouter(t)
	r.HandleMessage(midi.ControlChange(2, 74, 127), 0)
	r.HandleMessage(midi.ControlChange(2, 74, 0), 0)
	require.Len(t, b.ToRecorder, 2)
	assert.Equal(t, recorder.ValueMsg{Param: p, Value: 1, Trigger: autorec.ValueTrigger}, <-b.ToRecorder)
	assert.Equal(t, recorder.ValueMsg{Param: p, Value: -1, Trigger: autorec.ValueTrigger}, <-b.ToRecorder)
}

func TestUnmappedMessagesAreIgnored(t *testing.T) {
	r, b, _ := newRouter(t)
	r.HandleMessage(midi.ControlChange(3, 74, 64), 0)
	r.HandleMessage(midi.ControlChange(2, 75, 64), 0)
	r.HandleMessage(midi.NoteOn(2, 60, 100), 0)
	assert.Empty(t, b.ToRecorder)
}

func TestBindJoinsErrors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	r := midiin.NewRouter(recorder.NewBroker(), logger)
	none := func(string) (*autorec.Parameter, bool) { return nil, false }
	err := r.Bind([]midiin.Mapping{
		{Channel: 16, Controller: 1, Param: "a"},
		{Channel: 0, Controller: 200, Param: "b"},
		{Channel: 0, Controller: 1, Param: "missing"},
	}, none)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)
	assert.Contains(t, err.Error(), `"b"`)
	assert.Contains(t, err.Error(), `unknown parameter "missing"`)
}
